package compute

import (
	"runtime"
	"sync"

	"github.com/wouterel/meshmd/internal/geometry"
)

// parallelThreshold is the group size below which kernels run serially;
// goroutine fan-out costs more than it saves for small groups.
const parallelThreshold = 256

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

// dispatch runs body(i) for i in [0,n), serially for small n and chunked
// across workers otherwise. The body must be independent per i so both
// paths produce identical results.
func (c *CPUBackend) dispatch(n int, body func(i int)) {
	if n < parallelThreshold || c.workers < 2 {
		for i := 0; i < n; i++ {
			body(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers

	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			start := worker * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}
			for i := start; i < end; i++ {
				body(i)
			}
		}(w)
	}

	wg.Wait()
}

// stepOneParticle is the kernel body shared by every execution path:
// half-step velocity update and full-step position update under the
// Trotter-factorized barostat/thermostat scaling.
func stepOneParticle(idx int, pos, vel, accel []geometry.Vec3, c StepCoeffs, dt float64) {
	v := [3]float64{vel[idx].X, vel[idx].Y, vel[idx].Z}
	r := [3]float64{pos[idx].X, pos[idx].Y, pos[idx].Z}
	a := [3]float64{accel[idx].X, accel[idx].Y, accel[idx].Z}

	for k := 0; k < 3; k++ {
		v[k] = v[k]*c.ExpVFac[k]*c.ExpVFac[k] + (dt/2)*a[k]*c.ExpVFac[k]*c.SinhVFac[k]
		r[k] = r[k]*c.ExpRFac[k]*c.ExpRFac[k] + v[k]*c.ExpRFac[k]*c.SinhRFac[k]*dt
	}

	vel[idx] = geometry.Vec3{X: v[0], Y: v[1], Z: v[2]}
	pos[idx] = geometry.Vec3{X: r[0], Y: r[1], Z: r[2]}
}

// stepTwoParticle recomputes the acceleration from the net force and
// applies the remaining half-step velocity update.
func stepTwoParticle(idx int, vel, accel, force []geometry.Vec3, mass []float64, c StepCoeffs, dt float64) {
	minv := 1.0 / mass[idx]
	a := force[idx].Scale(minv)
	accel[idx] = a

	av := [3]float64{a.X, a.Y, a.Z}
	v := [3]float64{vel[idx].X, vel[idx].Y, vel[idx].Z}
	for k := 0; k < 3; k++ {
		v[k] = v[k]*c.ExpVFac[k]*c.ExpVFac[k] + (dt/2)*av[k]*c.ExpVFac[k]*c.SinhVFac[k]
	}
	vel[idx] = geometry.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func (c *CPUBackend) NPTStepOne(pos, vel, accel []geometry.Vec3, group []int, coeffs StepCoeffs, dt float64) {
	c.dispatch(len(group), func(i int) {
		stepOneParticle(group[i], pos, vel, accel, coeffs, dt)
	})
}

func (c *CPUBackend) NPTStepTwo(vel, accel, force []geometry.Vec3, mass []float64, group []int, coeffs StepCoeffs, dt float64) {
	c.dispatch(len(group), func(i int) {
		stepTwoParticle(group[i], vel, accel, force, mass, coeffs, dt)
	})
}

// SumKineticEnergy2 is a two-pass block reduction. Pass one sums
// m*|v|^2 within each block through a binary-tree halving over a
// call-scoped scratch buffer; pass two sums the block partials. Blocks
// are independent, so they may run in parallel; the tree within a block
// is sequential, which stands in for the in-block barrier at each
// halving step.
func (c *CPUBackend) SumKineticEnergy2(vel []geometry.Vec3, mass []float64, group []int, blockSize int) float64 {
	n := len(group)
	if n == 0 {
		return 0
	}
	if blockSize < 1 {
		blockSize = 64
	}
	// the in-block tree needs a power-of-two width; pad with zeros
	width := 1
	for width < blockSize {
		width *= 2
	}
	nBlocks := (n + blockSize - 1) / blockSize
	partial := make([]float64, nBlocks)

	c.dispatch(nBlocks, func(b int) {
		scratch := make([]float64, width)
		base := b * blockSize
		for t := 0; t < blockSize; t++ {
			i := base + t
			if i < n {
				idx := group[i]
				scratch[t] = mass[idx] * vel[idx].NormSq()
			}
		}
		for offset := width / 2; offset > 0; offset /= 2 {
			for t := 0; t < offset; t++ {
				scratch[t] += scratch[t+offset]
			}
		}
		partial[b] = scratch[0]
	})

	// pass two
	sum := 0.0
	for _, p := range partial {
		sum += p
	}
	return sum
}

func (c *CPUBackend) RescaleVelocities(vel []geometry.Vec3, group []int, fac float64) {
	c.dispatch(len(group), func(i int) {
		idx := group[i]
		vel[idx] = vel[idx].Scale(fac)
	})
}

func (c *CPUBackend) WrapParticles(pos []geometry.Vec3, image []geometry.IVec3, box geometry.Box) {
	c.dispatch(len(pos), func(i int) {
		pos[i], image[i] = box.Wrap(pos[i], image[i])
	})
}
