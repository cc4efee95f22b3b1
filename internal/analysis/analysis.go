// Package analysis provides post-run observable analysis.
//
// The package includes tools for characterizing simulation output:
//
//   - [PowerSpectrum]: frequency content of a metric trace
//   - [Autocorrelation]: normalized autocorrelation of a trace
//   - [RadialDistribution]: pair correlation g(r) of a configuration
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/wouterel/meshmd/internal/particle"
)

// PowerSpectrum returns the magnitude of the real FFT of the trace,
// with the mean removed so the zero-frequency bin does not dominate.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// Autocorrelation returns the normalized autocorrelation of the trace
// for lags 0..maxLag. The zero-lag value is 1 unless the trace has no
// variance.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(data, nil)
	var variance float64
	for _, v := range data {
		variance += (v - mean) * (v - mean)
	}

	acf := make([]float64, maxLag+1)
	if variance == 0 {
		return acf
	}

	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < n; i++ {
			sum += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = sum / variance
	}
	return acf
}

// RadialDistribution computes the pair correlation g(r) of the local
// particles using minimum-image distances, binned up to rmax.
func RadialDistribution(store *particle.Store, rmax float64, bins int) (r, g []float64) {
	n := store.N()
	if n < 2 || bins < 1 || rmax <= 0 {
		return nil, nil
	}

	pos := store.Positions()
	box := store.Box()
	dr := rmax / float64(bins)

	counts := make([]float64, bins)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := box.MinImage(pos[i].Sub(pos[j]))
			dist := d.Norm()
			if dist >= rmax {
				continue
			}
			counts[int(dist/dr)] += 2
		}
	}

	density := float64(n) / box.Volume()
	r = make([]float64, bins)
	g = make([]float64, bins)
	for b := 0; b < bins; b++ {
		rLo := float64(b) * dr
		rHi := rLo + dr
		shell := 4.0 / 3.0 * math.Pi * (rHi*rHi*rHi - rLo*rLo*rLo)
		r[b] = rLo + dr/2
		g[b] = counts[b] / (float64(n) * density * shell)
	}
	return r, g
}
