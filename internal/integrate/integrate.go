// Package integrate implements the two-step NPT-MTK and NVT integration
// methods. Host code advances the thermostat and barostat state and
// derives per-step scaling coefficients; the per-particle propagation
// runs as data-parallel kernels through the compute backend.
package integrate

// Method is the two-half-step integration interface Simulation drives:
// StepOne before forces are recomputed, StepTwo after.
type Method interface {
	StepOne(timestep uint64)
	StepTwo(timestep uint64)
}
