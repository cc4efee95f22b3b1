package compute

import "github.com/wouterel/meshmd/internal/geometry"

// StepCoeffs carries the per-axis exponential and sinh(x)/x scaling
// factors for one NPT-MTK update. They are derived once per step on the
// host from the barostat strain rates and thermostat friction, so the
// kernels stay pure per-particle loops.
type StepCoeffs struct {
	ExpVFac  [3]float64
	SinhVFac [3]float64
	ExpRFac  [3]float64
	SinhRFac [3]float64
}

// Backend executes the per-particle integration kernels. Every method is
// data-parallel across particles or group members; implementations must
// produce identical numerical results on all paths.
type Backend interface {
	Name() string
	Available() bool

	// NPTStepOne advances velocities by a half step and positions by a
	// full step under the barostat/thermostat scaling factors.
	NPTStepOne(pos, vel, accel []geometry.Vec3, group []int, c StepCoeffs, dt float64)

	// NPTStepTwo recomputes accelerations from net force and advances
	// velocities by the remaining half step.
	NPTStepTwo(vel, accel, force []geometry.Vec3, mass []float64, group []int, c StepCoeffs, dt float64)

	// SumKineticEnergy2 returns the sum of m*|v|^2 over the group using a
	// two-pass block reduction with the given block size.
	SumKineticEnergy2(vel []geometry.Vec3, mass []float64, group []int, blockSize int) float64

	// RescaleVelocities applies a single scalar thermostat factor.
	RescaleVelocities(vel []geometry.Vec3, group []int, fac float64)

	// WrapParticles reduces every particle (not just the integrated
	// group) into the primary periodic image.
	WrapParticles(pos []geometry.Vec3, image []geometry.IVec3, box geometry.Box)

	Cleanup()
}

var activeBackend Backend

func init() {
	// Auto-select best available backend (CUDA if available, else CPU)
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

func AutoSelectBackend() Backend {
	cuda := NewCUDABackend()
	if cuda.Available() {
		return cuda
	}
	return NewCPUBackend()
}
