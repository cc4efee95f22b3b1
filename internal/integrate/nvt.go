package integrate

import (
	"math"

	"github.com/wouterel/meshmd/internal/compute"
	"github.com/wouterel/meshmd/internal/particle"
	"github.com/wouterel/meshmd/internal/variant"
)

// NVT is the thermostat-only propagation path: the same two-step scheme
// with all barostat strain rates pinned at zero, plus an explicit
// single-factor velocity rescale kernel.
type NVT struct {
	store   *particle.Store
	group   *particle.Group
	backend compute.Backend

	Dt  float64
	Tau float64
	T   variant.Variant

	Xi   float64
	NDOF int

	BlockSize int
}

func NewNVT(store *particle.Store, group *particle.Group, backend compute.Backend, dt float64, tTarget variant.Variant, tau float64) *NVT {
	return &NVT{
		store:     store,
		group:     group,
		backend:   backend,
		Dt:        dt,
		Tau:       tau,
		T:         tTarget,
		NDOF:      group.NDOF(),
		BlockSize: defaultBlockSize,
	}
}

func (n *NVT) Temperature() float64 {
	sum := n.backend.SumKineticEnergy2(n.store.Velocities(), n.store.Masses(), n.group.Members(), n.BlockSize)
	return sum / float64(n.NDOF)
}

func (n *NVT) advanceThermostat(timestep uint64) {
	tTarget := n.T.Value(timestep)
	n.Xi += n.Dt / 2 * (n.Temperature()/tTarget - 1) / (n.Tau * n.Tau)
}

// Rescale applies the thermostat-only exponential velocity scaling,
// independent of any barostat state.
func (n *NVT) Rescale() {
	fac := math.Exp(-n.Dt / 2 * n.Xi)
	n.backend.RescaleVelocities(n.store.Velocities(), n.group.Members(), fac)
}

func (n *NVT) StepOne(timestep uint64) {
	n.advanceThermostat(timestep)

	coeffs := buildCoeffs([3]float64{}, n.Xi, n.Dt)
	n.backend.NPTStepOne(n.store.Positions(), n.store.Velocities(), n.store.Accelerations(), n.group.Members(), coeffs, n.Dt)
	n.backend.WrapParticles(n.store.Positions(), n.store.Images(), n.store.Box())
}

func (n *NVT) StepTwo(timestep uint64) {
	coeffs := buildCoeffs([3]float64{}, n.Xi, n.Dt)
	n.backend.NPTStepTwo(n.store.Velocities(), n.store.Accelerations(), n.store.Forces(), n.store.Masses(), n.group.Members(), coeffs, n.Dt)

	n.advanceThermostat(timestep + 1)
}

var _ Method = (*NVT)(nil)
