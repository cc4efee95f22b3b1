package forces

import (
	"fmt"
	"log"
	"math"

	"github.com/wouterel/meshmd/internal/geometry"
	"github.com/wouterel/meshmd/internal/mesh"
	"github.com/wouterel/meshmd/internal/particle"
)

// small floors near-degenerate sine values before inversion so nearly
// flat or folded triangles cannot blow up a cotangent.
const small = 0.001

// HelfrichBending computes the discrete Helfrich bending force on a
// triangle mesh. Each timestep runs two phases: computeSigma accumulates
// the per-vertex mixed-area scalar sigma and the vector first moment
// sigmaDash from every bond, then the force phase derives the bending
// force from their analytic gradients. Per-vertex bending energy is
// K/2 * |sigmaDash|^2 / sigma.
type HelfrichBending struct {
	*buffer

	store *particle.Store
	mesh  *mesh.Mesh
	k     []float64

	sigma     []float64
	sigmaDash []geometry.Vec3
}

func NewHelfrichBending(store *particle.Store, m *mesh.Mesh) *HelfrichBending {
	return &HelfrichBending{
		buffer:    newBuffer(store.NTotal(), store.VirialPitch()),
		store:     store,
		mesh:      m,
		k:         make([]float64, m.NTypes()),
		sigma:     make([]float64, store.NTotal()),
		sigmaDash: make([]geometry.Vec3, store.NTotal()),
	}
}

// SetParams sets the bending stiffness for a mesh bond type. A
// non-positive K is nonphysical but accepted, with a warning, so edge
// cases remain testable.
func (h *HelfrichBending) SetParams(typeName string, k float64) error {
	typ, err := h.mesh.TypeByName(typeName)
	if err != nil {
		return err
	}
	if k <= 0 {
		log.Printf("helfrich: specified K <= 0 for type %q", typeName)
	}
	h.k[typ] = k
	return nil
}

// Params returns the bending stiffness for a mesh bond type.
func (h *HelfrichBending) Params(typeName string) (float64, error) {
	typ, err := h.mesh.TypeByName(typeName)
	if err != nil {
		return 0, err
	}
	return h.k[typ], nil
}

// Sigma exposes the per-vertex mixed-area accumulator (valid after a
// ComputeForces or computeSigma call).
func (h *HelfrichBending) Sigma() []float64 { return h.sigma }

// SigmaDash exposes the per-vertex vector first-moment accumulator.
func (h *HelfrichBending) SigmaDash() []geometry.Vec3 { return h.sigmaDash }

// bondGeometry resolves one bond to particle indices and minimum-image
// displacement vectors. a,b are the bond endpoints; c,d the vertices
// opposite the bond in its two adjacent triangles.
type bondGeometry struct {
	idxA, idxB, idxC, idxD  int
	dab, dac, dad, dbc, dbd geometry.Vec3
}

func (h *HelfrichBending) bondGeometry(i int) (bondGeometry, error) {
	b := h.mesh.Bond(i)
	cTag, dTag := h.mesh.Opposite(i)
	maxTag := h.store.MaxTag()
	if b.A > maxTag || b.B > maxTag || cTag > maxTag || dTag > maxTag {
		return bondGeometry{}, fmt.Errorf("forces: bond %d references tag beyond %d", i, maxTag)
	}

	g := bondGeometry{
		idxA: h.store.RTag(b.A),
		idxB: h.store.RTag(b.B),
		idxC: h.store.RTag(cTag),
		idxD: h.store.RTag(dTag),
	}

	pos := h.store.Positions()
	box := h.store.Box()

	g.dab = box.MinImage(pos[g.idxB].Sub(pos[g.idxA]))
	g.dac = box.MinImage(pos[g.idxC].Sub(pos[g.idxA]))
	g.dad = box.MinImage(pos[g.idxD].Sub(pos[g.idxA]))
	g.dbc = box.MinImage(pos[g.idxC].Sub(pos[g.idxB]))
	g.dbd = box.MinImage(pos[g.idxD].Sub(pos[g.idxB]))
	return g, nil
}

// clampedInvSin converts a raw cosine into (clamped cosine, 1/sin) with
// the cosine clamped to [-1,1] and the sine floored at small.
func clampedInvSin(c float64) (float64, float64) {
	if c > 1.0 {
		c = 1.0
	}
	if c < -1.0 {
		c = -1.0
	}
	s := math.Sqrt(1.0 - c*c)
	if s < small {
		s = small
	}
	return c, 1.0 / s
}

// sigmaHat is the cotangent-weighted edge scalar: the average of the
// cotangents of the two angles opposite the bond.
func sigmaHat(g bondGeometry) float64 {
	nac := g.dac.Unit()
	nad := g.dad.Unit()
	nbc := g.dbc.Unit()
	nbd := g.dbd.Unit()

	cACCB, isACCB := clampedInvSin(nac.Dot(nbc))
	cADDB, isADDB := clampedInvSin(nad.Dot(nbd))

	cotACCB := cACCB * isACCB
	cotADDB := cADDB * isADDB
	return (cotACCB + cotADDB) / 2
}

// ComputeSigma runs phase one: reset and re-accumulate sigma and
// sigmaDash from every bond. Must complete before the force phase reads
// the accumulators.
func (h *HelfrichBending) ComputeSigma() error {
	for i := range h.sigma {
		h.sigma[i] = 0
		h.sigmaDash[i] = geometry.Vec3{}
	}

	for i := 0; i < h.mesh.NBonds(); i++ {
		g, err := h.bondGeometry(i)
		if err != nil {
			return err
		}

		sh := sigmaHat(g)

		// quarter mixed-area contribution, equal for both endpoints
		sa := sh * g.dab.NormSq() * 0.25
		h.sigma[g.idxA] += sa
		h.sigma[g.idxB] += sa

		// vector first moment, signed oppositely for a vs b
		h.sigmaDash[g.idxA] = h.sigmaDash[g.idxA].Add(g.dab.Scale(sh))
		h.sigmaDash[g.idxB] = h.sigmaDash[g.idxB].Sub(g.dab.Scale(sh))
	}
	return nil
}

// ComputeForces runs both phases. Ghost particles take part in the
// geometry but never receive force or virial write-back; their owning
// domain accumulates those contributions itself.
func (h *HelfrichBending) ComputeForces(timestep uint64) error {
	if err := h.ComputeSigma(); err != nil {
		return err
	}

	h.zero()

	nLocal := h.store.N()
	pitch := h.pitch

	for i := 0; i < h.mesh.NBonds(); i++ {
		g, err := h.bondGeometry(i)
		if err != nil {
			return err
		}
		k := h.k[h.mesh.Bond(i).Type]

		rab := g.dab.Norm()
		rsqac := g.dac.NormSq()
		rsqad := g.dad.NormSq()
		rsqbc := g.dbc.NormSq()
		rsqbd := g.dbd.NormSq()

		nab := g.dab.Scale(1 / rab)
		nac := g.dac.Scale(1 / math.Sqrt(rsqac))
		nad := g.dad.Scale(1 / math.Sqrt(rsqad))
		nbc := g.dbc.Scale(1 / math.Sqrt(rsqbc))
		nbd := g.dbd.Scale(1 / math.Sqrt(rsqbd))

		cACCB, isACCB := clampedInvSin(nac.Dot(nbc))
		cADDB, isADDB := clampedInvSin(nad.Dot(nbd))
		cABBC, isABBC := clampedInvSin(-nab.Dot(nbc))
		cABBD, isABBD := clampedInvSin(-nab.Dot(nbd))
		cBAAC, isBAAC := clampedInvSin(nab.Dot(nac))
		cBAAD, isBAAD := clampedInvSin(nab.Dot(nad))

		sh := (cACCB*isACCB + cADDB*isADDB) / 2

		// cosine derivatives with respect to the position of vertex a
		dcABBC := nbc.Scale(-1 / rab).Add(nab.Scale(cABBC / rab))
		dcABBD := nbd.Scale(-1 / rab).Add(nab.Scale(cABBD / rab))
		dcBAAC := nac.Scale(1 / rab).Sub(nab.Scale(cBAAC / rab))
		dcBAAD := nad.Scale(1 / rab).Sub(nab.Scale(cBAAD / rab))

		// gradients of the per-edge cotangent scalar
		dshAC := dcABBC.Scale(isABBC * isABBC * isABBC / 2)
		dshAD := dcABBD.Scale(isABBD * isABBD * isABBD / 2)
		dshBC := dcBAAC.Scale(isBAAC * isBAAC * isBAAC / 2)
		dshBD := dcBAAD.Scale(isBAAD * isBAAD * isBAAD / 2)

		// gradients of the mixed-area accumulators
		dsigmaA := dshAC.Scale(rsqac).Add(dshAD.Scale(rsqad)).Add(g.dab.Scale(2 * sh)).Scale(0.25)
		dsigmaB := dshBC.Scale(rsqbc).Add(dshBD.Scale(rsqbd)).Add(g.dab.Scale(2 * sh)).Scale(0.25)
		dsigmaC := dshAC.Scale(rsqac).Add(dshBC.Scale(rsqbc)).Scale(0.25)
		dsigmaD := dshAD.Scale(rsqad).Add(dshBD.Scale(rsqbd)).Scale(0.25)

		// scalar gradients of the vector accumulators along the bond
		dsigmaDashA := dshAC.Dot(g.dac) + dshAD.Dot(g.dad) + sh
		dsigmaDashB := dshBC.Dot(g.dbc) + dshBD.Dot(g.dbd) - sh
		dsigmaDashC := -dshAC.Dot(g.dac) - dshBC.Dot(g.dbc)
		dsigmaDashD := -dshAD.Dot(g.dad) - dshBD.Dot(g.dbd)

		term := func(dsdash float64, sdash geometry.Vec3, sigma float64, dsigma geometry.Vec3) geometry.Vec3 {
			return sdash.Scale(dsdash / sigma).Sub(dsigma.Scale(sdash.Dot(sdash) / (2 * sigma * sigma)))
		}

		sdA, sdB := h.sigmaDash[g.idxA], h.sigmaDash[g.idxB]
		sdC, sdD := h.sigmaDash[g.idxC], h.sigmaDash[g.idxD]
		sA, sB := h.sigma[g.idxA], h.sigma[g.idxB]
		sC, sD := h.sigma[g.idxC], h.sigma[g.idxD]

		// bending force applied at a; its negation at b. The c and d
		// energy gradients fold into the same vector.
		fa := term(dsigmaDashA, sdA, sA, dsigmaA).
			Add(term(dsigmaDashB, sdB, sB, dsigmaB)).
			Add(term(dsigmaDashC, sdC, sC, dsigmaC)).
			Add(term(dsigmaDashD, sdD, sD, dsigmaD)).
			Scale(k)

		bondVirial := [6]float64{
			0.5 * g.dab.X * fa.X,
			0.5 * g.dab.Y * fa.X,
			0.5 * g.dab.Z * fa.X,
			0.5 * g.dab.Y * fa.Y,
			0.5 * g.dab.Z * fa.Y,
			0.5 * g.dab.Z * fa.Z,
		}

		if g.idxA < nLocal {
			h.force[g.idxA] = h.force[g.idxA].Add(fa)
			h.energy[g.idxA] = k / 2 * sdA.Dot(sdA) / sA
			for row := 0; row < 6; row++ {
				h.virial[row*pitch+g.idxA] += bondVirial[row]
			}
		}
		if g.idxB < nLocal {
			h.force[g.idxB] = h.force[g.idxB].Sub(fa)
			h.energy[g.idxB] = k / 2 * sdB.Dot(sdB) / sB
			for row := 0; row < 6; row++ {
				h.virial[row*pitch+g.idxB] += bondVirial[row]
			}
		}
	}
	return nil
}

var _ Compute = (*HelfrichBending)(nil)
