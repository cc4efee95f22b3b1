package forces

import (
	"fmt"

	"github.com/wouterel/meshmd/internal/particle"
)

// PairPotential evaluates the expanded LJ potential over all local
// particle pairs with minimum-image displacements. Parameters are stored
// per type pair in a bounds-checked table keyed by type index.
type PairPotential struct {
	*buffer

	store       *particle.Store
	params      []LJParams
	rcutsq      []float64
	nTypes      int
	EnergyShift bool
}

func NewPairPotential(store *particle.Store) *PairPotential {
	nt := store.NTypes()
	return &PairPotential{
		buffer: newBuffer(store.NTotal(), store.VirialPitch()),
		store:  store,
		params: make([]LJParams, nt*nt),
		rcutsq: make([]float64, nt*nt),
		nTypes: nt,
	}
}

func (p *PairPotential) pairIndex(a, b int) int {
	return a*p.nTypes + b
}

// SetParams stores parameters and cutoff for a type pair, symmetrically.
func (p *PairPotential) SetParams(typeA, typeB string, params LJParams, rcut float64) error {
	a, err := p.store.TypeByName(typeA)
	if err != nil {
		return err
	}
	b, err := p.store.TypeByName(typeB)
	if err != nil {
		return err
	}
	p.params[p.pairIndex(a, b)] = params
	p.params[p.pairIndex(b, a)] = params
	p.rcutsq[p.pairIndex(a, b)] = rcut * rcut
	p.rcutsq[p.pairIndex(b, a)] = rcut * rcut
	return nil
}

// Params returns the stored parameters for a type pair.
func (p *PairPotential) Params(typeA, typeB string) (LJParams, error) {
	a, err := p.store.TypeByName(typeA)
	if err != nil {
		return LJParams{}, err
	}
	b, err := p.store.TypeByName(typeB)
	if err != nil {
		return LJParams{}, err
	}
	return p.params[p.pairIndex(a, b)], nil
}

// ComputeForces runs the all-pairs loop over local particles. Forces
// obey Newton's third law; energy is split evenly between the pair and
// the half pair virial is accumulated on both particles.
func (p *PairPotential) ComputeForces(timestep uint64) error {
	p.zero()

	pos := p.store.Positions()
	typ := p.store.Types()
	box := p.store.Box()
	n := p.store.N()
	pitch := p.pitch

	for i := 0; i < n; i++ {
		if typ[i] >= p.nTypes {
			return fmt.Errorf("forces: particle %d has type %d out of range", i, typ[i])
		}
		for j := i + 1; j < n; j++ {
			d := box.MinImage(pos[i].Sub(pos[j]))
			rsq := d.NormSq()

			idx := p.pairIndex(typ[i], typ[j])
			rcutsq := p.rcutsq[idx]
			if rcutsq == 0 || rsq >= rcutsq {
				continue
			}

			eval := NewExpandedLJ(rsq, rcutsq, p.params[idx])
			forceDivR, pairEng, ok := eval.EvalForceAndEnergy(p.EnergyShift)
			if !ok {
				continue
			}

			f := d.Scale(forceDivR)
			p.force[i] = p.force[i].Add(f)
			p.force[j] = p.force[j].Sub(f)
			p.energy[i] += pairEng / 2
			p.energy[j] += pairEng / 2

			pv := [6]float64{
				0.5 * d.X * f.X,
				0.5 * d.Y * f.X,
				0.5 * d.Z * f.X,
				0.5 * d.Y * f.Y,
				0.5 * d.Z * f.Y,
				0.5 * d.Z * f.Z,
			}
			for row := 0; row < 6; row++ {
				p.virial[row*pitch+i] += pv[row]
				p.virial[row*pitch+j] += pv[row]
			}
		}
	}
	return nil
}

var _ Compute = (*PairPotential)(nil)
