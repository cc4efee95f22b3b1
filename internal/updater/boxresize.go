// Package updater holds between-step state mutations, currently the
// box-resize trajectory interpolation.
package updater

import (
	"github.com/wouterel/meshmd/internal/compute"
	"github.com/wouterel/meshmd/internal/geometry"
	"github.com/wouterel/meshmd/internal/particle"
	"github.com/wouterel/meshmd/internal/variant"
)

// BoxResize interpolates the simulation box between two geometries over
// time. The variant supplies the mixing fraction per timestep; particle
// positions can optionally scale with the box edges.
type BoxResize struct {
	store   *particle.Store
	backend compute.Backend

	Box1           geometry.Box
	Box2           geometry.Box
	Variant        variant.Ramp
	ScaleParticles bool
}

func NewBoxResize(store *particle.Store, backend compute.Backend, box1, box2 geometry.Box, v variant.Ramp) *BoxResize {
	return &BoxResize{
		store:          store,
		backend:        backend,
		Box1:           box1,
		Box2:           box2,
		Variant:        v,
		ScaleParticles: true,
	}
}

// CurrentBox returns the interpolated box for a timestep.
func (u *BoxResize) CurrentBox(timestep uint64) geometry.Box {
	f := u.Variant.Fraction(timestep)
	return geometry.NewBox(
		u.Box1.Lx+(u.Box2.Lx-u.Box1.Lx)*f,
		u.Box1.Ly+(u.Box2.Ly-u.Box1.Ly)*f,
		u.Box1.Lz+(u.Box2.Lz-u.Box1.Lz)*f,
	)
}

// Update sets the interpolated box, optionally rescaling particle
// positions by the edge ratios, and wraps every particle back into the
// primary image. A box identical to the current one is a no-op.
func (u *BoxResize) Update(timestep uint64) {
	cur := u.store.Box()
	next := u.CurrentBox(timestep)
	if cur.Equivalent(next) {
		return
	}

	if u.ScaleParticles {
		sx := next.Lx / cur.Lx
		sy := next.Ly / cur.Ly
		sz := next.Lz / cur.Lz
		pos := u.store.Positions()
		for i := range pos {
			pos[i].X *= sx
			pos[i].Y *= sy
			pos[i].Z *= sz
		}
	}

	u.store.SetBox(next)
	u.backend.WrapParticles(u.store.Positions(), u.store.Images(), next)
}
