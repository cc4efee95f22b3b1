package forces

import "math"

// LJParams are the precomputed coefficients of the expanded
// Lennard-Jones potential for one type pair. They are derived once from
// (sigma, epsilon, delta) so the per-pair evaluation avoids repeated
// power computations.
type LJParams struct {
	Sigma6    float64
	EpsilonX4 float64
	Delta     float64
}

// NewLJParams derives the evaluator coefficients from the physical
// sigma, epsilon and radial shift delta.
func NewLJParams(sigma, epsilon, delta float64) LJParams {
	s2 := sigma * sigma
	return LJParams{
		Sigma6:    s2 * s2 * s2,
		EpsilonX4: 4.0 * epsilon,
		Delta:     delta,
	}
}

func (p LJParams) Sigma() float64   { return math.Pow(p.Sigma6, 1.0/6.0) }
func (p LJParams) Epsilon() float64 { return p.EpsilonX4 / 4.0 }

// ExpandedLJ evaluates the expanded Lennard-Jones potential
//
//	V(r) = 4*epsilon*[(sigma/(r-delta))^12 - (sigma/(r-delta))^6]
//
// for one particle pair. All powers of distance use the shifted
// separation r-delta, never the raw r. Because the shift alters the
// effective cutoff geometry, this potential cannot be combined with a
// smoothing mode that works directly in squared-distance terms (such as
// xplor shifting); see Name for the logging identifier.
type ExpandedLJ struct {
	rsq    float64
	rcutsq float64
	lj1    float64
	lj2    float64
	delta  float64
}

// NewExpandedLJ constructs the evaluator for a pair at squared
// separation rsq with squared cutoff rcutsq.
func NewExpandedLJ(rsq, rcutsq float64, p LJParams) ExpandedLJ {
	return ExpandedLJ{
		rsq:    rsq,
		rcutsq: rcutsq,
		lj1:    p.EpsilonX4 * p.Sigma6 * p.Sigma6,
		lj2:    p.EpsilonX4 * p.Sigma6,
		delta:  p.Delta,
	}
}

// EvalForceAndEnergy computes the pair force divided by r and the pair
// energy. It returns ok=false, leaving the outputs meaningless, when the
// pair is beyond the cutoff or the leading coefficient is zero. Cutoff
// testing is the caller's responsibility, but the shift makes the
// redundant r < rcut check here necessary for numerical safety.
//
// When energyShift is set the energy is offset so V is continuous at the
// cutoff. The offset is evaluated at the raw rcut, not rcut-delta; the
// shifted separation deliberately does not enter the cutoff energy.
func (e ExpandedLJ) EvalForceAndEnergy(energyShift bool) (forceDivR, pairEnergy float64, ok bool) {
	rinv := 1.0 / math.Sqrt(e.rsq)
	r := 1.0 / rinv
	rcutinv := 1.0 / math.Sqrt(e.rcutsq)
	rcut := 1.0 / rcutinv

	if r >= rcut || e.lj1 == 0 {
		return 0, 0, false
	}

	rmd := r - e.delta
	rmdinv := 1.0 / rmd
	rmd2inv := rmdinv * rmdinv
	rmd6inv := rmd2inv * rmd2inv * rmd2inv

	forceDivR = rinv * rmdinv * rmd6inv * (12.0*e.lj1*rmd6inv - 6.0*e.lj2)
	pairEnergy = rmd6inv * (e.lj1*rmd6inv - e.lj2)

	if energyShift {
		rcut2inv := rcutinv * rcutinv
		rcut6inv := rcut2inv * rcut2inv * rcut2inv
		pairEnergy -= rcut6inv * (e.lj1*rcut6inv - e.lj2)
	}
	return forceDivR, pairEnergy, true
}

// Name is the identifier energies are logged under.
func (ExpandedLJ) Name() string { return "expanded_lj" }

// ShapeSpec is unsupported for this potential.
func (ExpandedLJ) ShapeSpec() (string, error) {
	return "", ErrNotImplemented
}
