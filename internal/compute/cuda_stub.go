//go:build !cuda

package compute

import "github.com/wouterel/meshmd/internal/geometry"

type CUDABackend struct{}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{}
}

func (c *CUDABackend) Name() string    { return "cuda (not available)" }
func (c *CUDABackend) Available() bool { return false }
func (c *CUDABackend) Cleanup()        {}

func (c *CUDABackend) NPTStepOne(pos, vel, accel []geometry.Vec3, group []int, coeffs StepCoeffs, dt float64) {
	NewCPUBackend().NPTStepOne(pos, vel, accel, group, coeffs, dt)
}

func (c *CUDABackend) NPTStepTwo(vel, accel, force []geometry.Vec3, mass []float64, group []int, coeffs StepCoeffs, dt float64) {
	NewCPUBackend().NPTStepTwo(vel, accel, force, mass, group, coeffs, dt)
}

func (c *CUDABackend) SumKineticEnergy2(vel []geometry.Vec3, mass []float64, group []int, blockSize int) float64 {
	return NewCPUBackend().SumKineticEnergy2(vel, mass, group, blockSize)
}

func (c *CUDABackend) RescaleVelocities(vel []geometry.Vec3, group []int, fac float64) {
	NewCPUBackend().RescaleVelocities(vel, group, fac)
}

func (c *CUDABackend) WrapParticles(pos []geometry.Vec3, image []geometry.IVec3, box geometry.Box) {
	NewCPUBackend().WrapParticles(pos, image, box)
}
