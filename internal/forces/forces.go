// Package forces implements the per-timestep force computes: the
// expanded Lennard-Jones pair potential and the Helfrich mesh bending
// force. Each compute owns its force, energy and virial buffers and
// fully overwrites them on every call; Simulation aggregates them into
// the particle store's net buffers.
package forces

import (
	"errors"

	"github.com/wouterel/meshmd/internal/geometry"
)

// ErrNotImplemented reports a query for metadata a potential does not
// define, such as shape specifications on an isotropic pair potential.
var ErrNotImplemented = errors.New("forces: not implemented")

// Compute is one force evaluator's per-timestep entry point.
type Compute interface {
	// ComputeForces overwrites the compute's buffers with the forces,
	// per-particle potential energies and virial for this timestep.
	ComputeForces(timestep uint64) error

	Forces() []geometry.Vec3
	Energies() []float64
	Virial() []float64
	VirialPitch() int
}

// buffer holds one compute's private output arrays. The virial uses the
// same 6-row pitched layout as the particle store.
type buffer struct {
	force  []geometry.Vec3
	energy []float64
	virial []float64
	pitch  int
}

func newBuffer(n, pitch int) *buffer {
	return &buffer{
		force:  make([]geometry.Vec3, n),
		energy: make([]float64, n),
		virial: make([]float64, 6*pitch),
		pitch:  pitch,
	}
}

// zero resets all output arrays. Called at the start of every
// ComputeForces so stale values never leak between steps.
func (b *buffer) zero() {
	for i := range b.force {
		b.force[i] = geometry.Vec3{}
		b.energy[i] = 0
	}
	for i := range b.virial {
		b.virial[i] = 0
	}
}

func (b *buffer) Forces() []geometry.Vec3 { return b.force }
func (b *buffer) Energies() []float64     { return b.energy }
func (b *buffer) Virial() []float64       { return b.virial }
func (b *buffer) VirialPitch() int        { return b.pitch }
