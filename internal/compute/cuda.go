//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lkernels -lstdc++
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern void npt_step_one_gpu(float* pos, float* vel, float* accel, int* group, int n,
                             float* exp_v, float* sinh_v, float* exp_r, float* sinh_r, float dt);
extern void npt_step_two_gpu(float* vel, float* accel, float* force, float* mass, int* group, int n,
                             float* exp_v, float* sinh_v, float dt);
extern float kinetic_energy2_gpu(float* vel, float* mass, int* group, int n, int block_size);
extern void rescale_gpu(float* vel, int* group, int n, float fac);
extern void wrap_gpu(float* pos, int* image, int n, float lx, float ly, float lz);
*/
import "C"

import (
	"unsafe"

	"github.com/wouterel/meshmd/internal/geometry"
)

type CUDABackend struct {
	available  bool
	deviceName string
}

func NewCUDABackend() *CUDABackend {
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
	}
	return &CUDABackend{
		available:  count > 0,
		deviceName: name,
	}
}

func (c *CUDABackend) Name() string {
	if c.available {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDABackend) Available() bool { return c.available }
func (c *CUDABackend) Cleanup()        {}

func vecsToF32(vs []geometry.Vec3) []float32 {
	out := make([]float32, 3*len(vs))
	for i, v := range vs {
		out[3*i] = float32(v.X)
		out[3*i+1] = float32(v.Y)
		out[3*i+2] = float32(v.Z)
	}
	return out
}

func f32ToVecs(in []float32, vs []geometry.Vec3) {
	for i := range vs {
		vs[i] = geometry.Vec3{
			X: float64(in[3*i]),
			Y: float64(in[3*i+1]),
			Z: float64(in[3*i+2]),
		}
	}
}

func groupToC(group []int) []C.int {
	out := make([]C.int, len(group))
	for i, g := range group {
		out[i] = C.int(g)
	}
	return out
}

func coeffsToF32(c [3]float64) []float32 {
	return []float32{float32(c[0]), float32(c[1]), float32(c[2])}
}

func (c *CUDABackend) NPTStepOne(pos, vel, accel []geometry.Vec3, group []int, coeffs StepCoeffs, dt float64) {
	if !c.available || len(group) == 0 {
		NewCPUBackend().NPTStepOne(pos, vel, accel, group, coeffs, dt)
		return
	}

	posF := vecsToF32(pos)
	velF := vecsToF32(vel)
	accF := vecsToF32(accel)
	grp := groupToC(group)
	ev := coeffsToF32(coeffs.ExpVFac)
	sv := coeffsToF32(coeffs.SinhVFac)
	er := coeffsToF32(coeffs.ExpRFac)
	sr := coeffsToF32(coeffs.SinhRFac)

	C.npt_step_one_gpu(
		(*C.float)(unsafe.Pointer(&posF[0])),
		(*C.float)(unsafe.Pointer(&velF[0])),
		(*C.float)(unsafe.Pointer(&accF[0])),
		(*C.int)(unsafe.Pointer(&grp[0])),
		C.int(len(group)),
		(*C.float)(unsafe.Pointer(&ev[0])),
		(*C.float)(unsafe.Pointer(&sv[0])),
		(*C.float)(unsafe.Pointer(&er[0])),
		(*C.float)(unsafe.Pointer(&sr[0])),
		C.float(dt),
	)

	f32ToVecs(posF, pos)
	f32ToVecs(velF, vel)
}

func (c *CUDABackend) NPTStepTwo(vel, accel, force []geometry.Vec3, mass []float64, group []int, coeffs StepCoeffs, dt float64) {
	if !c.available || len(group) == 0 {
		NewCPUBackend().NPTStepTwo(vel, accel, force, mass, group, coeffs, dt)
		return
	}

	velF := vecsToF32(vel)
	accF := vecsToF32(accel)
	frcF := vecsToF32(force)
	massF := make([]float32, len(mass))
	for i, m := range mass {
		massF[i] = float32(m)
	}
	grp := groupToC(group)
	ev := coeffsToF32(coeffs.ExpVFac)
	sv := coeffsToF32(coeffs.SinhVFac)

	C.npt_step_two_gpu(
		(*C.float)(unsafe.Pointer(&velF[0])),
		(*C.float)(unsafe.Pointer(&accF[0])),
		(*C.float)(unsafe.Pointer(&frcF[0])),
		(*C.float)(unsafe.Pointer(&massF[0])),
		(*C.int)(unsafe.Pointer(&grp[0])),
		C.int(len(group)),
		(*C.float)(unsafe.Pointer(&ev[0])),
		(*C.float)(unsafe.Pointer(&sv[0])),
		C.float(dt),
	)

	f32ToVecs(velF, vel)
	f32ToVecs(accF, accel)
}

func (c *CUDABackend) SumKineticEnergy2(vel []geometry.Vec3, mass []float64, group []int, blockSize int) float64 {
	if !c.available || len(group) == 0 {
		return NewCPUBackend().SumKineticEnergy2(vel, mass, group, blockSize)
	}

	velF := vecsToF32(vel)
	massF := make([]float32, len(mass))
	for i, m := range mass {
		massF[i] = float32(m)
	}
	grp := groupToC(group)

	sum := C.kinetic_energy2_gpu(
		(*C.float)(unsafe.Pointer(&velF[0])),
		(*C.float)(unsafe.Pointer(&massF[0])),
		(*C.int)(unsafe.Pointer(&grp[0])),
		C.int(len(group)),
		C.int(blockSize),
	)
	return float64(sum)
}

func (c *CUDABackend) RescaleVelocities(vel []geometry.Vec3, group []int, fac float64) {
	if !c.available || len(group) == 0 {
		NewCPUBackend().RescaleVelocities(vel, group, fac)
		return
	}

	velF := vecsToF32(vel)
	grp := groupToC(group)

	C.rescale_gpu(
		(*C.float)(unsafe.Pointer(&velF[0])),
		(*C.int)(unsafe.Pointer(&grp[0])),
		C.int(len(group)),
		C.float(fac),
	)

	f32ToVecs(velF, vel)
}

func (c *CUDABackend) WrapParticles(pos []geometry.Vec3, image []geometry.IVec3, box geometry.Box) {
	if !c.available || len(pos) == 0 {
		NewCPUBackend().WrapParticles(pos, image, box)
		return
	}

	posF := vecsToF32(pos)
	img := make([]C.int, 3*len(image))
	for i, v := range image {
		img[3*i] = C.int(v.X)
		img[3*i+1] = C.int(v.Y)
		img[3*i+2] = C.int(v.Z)
	}

	C.wrap_gpu(
		(*C.float)(unsafe.Pointer(&posF[0])),
		(*C.int)(unsafe.Pointer(&img[0])),
		C.int(len(pos)),
		C.float(box.Lx), C.float(box.Ly), C.float(box.Lz),
	)

	f32ToVecs(posF, pos)
	for i := range image {
		image[i] = geometry.IVec3{
			X: int(img[3*i]),
			Y: int(img[3*i+1]),
			Z: int(img[3*i+2]),
		}
	}
}
