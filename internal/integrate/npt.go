package integrate

import (
	"math"

	"github.com/wouterel/meshmd/internal/compute"
	"github.com/wouterel/meshmd/internal/geometry"
	"github.com/wouterel/meshmd/internal/particle"
	"github.com/wouterel/meshmd/internal/variant"
)

// defaultBlockSize is the reduction block width used when none is set.
const defaultBlockSize = 64

// NPTMTK integrates the group under the Martyna-Tobias-Klein equations
// of motion: a Nose-Hoover thermostat friction xi coupled with a
// barostat strain rate nu per box dimension. Both persist across steps
// and advance once per half-step from the instantaneous temperature and
// pressure.
type NPTMTK struct {
	store   *particle.Store
	group   *particle.Group
	backend compute.Backend

	Dt   float64
	Tau  float64 // thermostat coupling time
	TauS float64 // barostat coupling time
	T    variant.Variant
	P    float64 // pressure set point

	Xi   float64
	Nu   [3]float64
	NDOF int

	BlockSize int
}

func NewNPTMTK(store *particle.Store, group *particle.Group, backend compute.Backend, dt float64, tTarget variant.Variant, tau, pTarget, tauS float64) *NPTMTK {
	return &NPTMTK{
		store:     store,
		group:     group,
		backend:   backend,
		Dt:        dt,
		Tau:       tau,
		TauS:      tauS,
		T:         tTarget,
		P:         pTarget,
		NDOF:      group.NDOF(),
		BlockSize: defaultBlockSize,
	}
}

// Temperature returns the instantaneous kinetic temperature of the
// group via the two-pass backend reduction.
func (n *NPTMTK) Temperature() float64 {
	sum := n.backend.SumKineticEnergy2(n.store.Velocities(), n.store.Masses(), n.group.Members(), n.BlockSize)
	return sum / float64(n.NDOF)
}

// pressure estimates the instantaneous isotropic pressure from the
// kinetic energy and the trace of the aggregate virial.
func (n *NPTMTK) pressure() float64 {
	ke2 := n.backend.SumKineticEnergy2(n.store.Velocities(), n.store.Masses(), n.group.Members(), n.BlockSize)

	virial := n.store.Virial()
	pitch := n.store.VirialPitch()
	w := 0.0
	for _, row := range [3]int{0, 3, 5} { // xx, yy, zz
		for i := 0; i < n.store.N(); i++ {
			w += virial[row*pitch+i]
		}
	}
	v := n.store.Box().Volume()
	return (ke2 + w) / (3 * v)
}

// advanceThermostat updates xi by a half step toward the target
// temperature from the variant.
func (n *NPTMTK) advanceThermostat(timestep uint64) {
	tTarget := n.T.Value(timestep)
	tInst := n.Temperature()
	n.Xi += n.Dt / 2 * (tInst/tTarget - 1) / (n.Tau * n.Tau)
}

// advanceBarostat updates the strain rates by a half step toward the
// pressure set point, including the MTK correction term that keeps the
// ensemble exact.
func (n *NPTMTK) advanceBarostat(timestep uint64) {
	tTarget := n.T.Value(timestep)
	w := (float64(n.NDOF) + 3) * tTarget * n.TauS * n.TauS
	p := n.pressure()
	v := n.store.Box().Volume()
	ke2 := n.backend.SumKineticEnergy2(n.store.Velocities(), n.store.Masses(), n.group.Members(), n.BlockSize)
	mtk := ke2 / float64(n.NDOF) / w

	dNu := n.Dt/2*v/w*(p-n.P) + n.Dt/2*mtk
	for k := 0; k < 3; k++ {
		n.Nu[k] += dNu
	}
}

// StepOne advances velocities by a half step and positions by a full
// step, then rescales the box under the barostat strain.
func (n *NPTMTK) StepOne(timestep uint64) {
	n.advanceThermostat(timestep)
	n.advanceBarostat(timestep)

	coeffs := buildCoeffs(n.Nu, n.Xi, n.Dt)
	n.backend.NPTStepOne(n.store.Positions(), n.store.Velocities(), n.store.Accelerations(), n.group.Members(), coeffs, n.Dt)

	// box deforms with the barostat strain over the full step
	box := n.store.Box()
	newBox := geometry.NewBox(
		box.Lx*math.Exp(n.Nu[0]*n.Dt),
		box.Ly*math.Exp(n.Nu[1]*n.Dt),
		box.Lz*math.Exp(n.Nu[2]*n.Dt),
	)
	n.store.SetBox(newBox)

	n.backend.WrapParticles(n.store.Positions(), n.store.Images(), newBox)
}

// StepTwo recomputes accelerations from the fresh net force and applies
// the remaining half-step velocity update, then advances the couple
// with the updated kinetic state.
func (n *NPTMTK) StepTwo(timestep uint64) {
	coeffs := buildCoeffs(n.Nu, n.Xi, n.Dt)
	n.backend.NPTStepTwo(n.store.Velocities(), n.store.Accelerations(), n.store.Forces(), n.store.Masses(), n.group.Members(), coeffs, n.Dt)

	n.advanceBarostat(timestep + 1)
	n.advanceThermostat(timestep + 1)
}

var _ Method = (*NPTMTK)(nil)
