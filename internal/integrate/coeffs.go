package integrate

import (
	"math"

	"github.com/wouterel/meshmd/internal/compute"
)

// sinhCoeff are the Taylor coefficients of sinh(x)/x in powers of x^2.
// Six terms keep the factor numerically stable as x approaches zero,
// where direct evaluation would hit 0/0.
var sinhCoeff = [6]float64{
	1.0,
	1.0 / 6.0,
	1.0 / 120.0,
	1.0 / 5040.0,
	1.0 / 362880.0,
	1.0 / 39916800.0,
}

// sinhXOverX evaluates sinh(x)/x by its 6-term series.
func sinhXOverX(x float64) float64 {
	x2 := x * x
	term := 1.0
	sum := 0.0
	for i := 0; i < 6; i++ {
		sum += sinhCoeff[i] * term
		term *= x2
	}
	return sum
}

// buildCoeffs derives the per-axis Trotter-factorized scaling factors
// from the barostat strain rates nu and thermostat friction xi for a
// half-step of length dt.
func buildCoeffs(nu [3]float64, xi, dt float64) compute.StepCoeffs {
	var c compute.StepCoeffs
	for k := 0; k < 3; k++ {
		argV := -(dt / 4) * (nu[k] + xi)
		argR := (dt / 2) * nu[k]
		c.ExpVFac[k] = math.Exp(argV)
		c.SinhVFac[k] = sinhXOverX(argV)
		c.ExpRFac[k] = math.Exp(argR)
		c.SinhRFac[k] = sinhXOverX(argR)
	}
	return c
}
