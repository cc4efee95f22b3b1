// Package compute provides hardware-accelerated execution backends for
// the per-particle integration kernels.
//
// The package automatically selects the best available backend:
//
//   - CUDA: GPU kernels for the NPT-MTK update and reductions
//   - CPU: fallback with identical numerics, parallel over worker chunks
//
// Both paths run the same per-particle loop bodies, so serial, chunked
// and device execution produce the same results:
//
//	backend := compute.GetBackend()
//	backend.NPTStepOne(pos, vel, accel, group, coeffs, dt)
//
// Build with CUDA support:
//
//	go build -tags cuda ./...
package compute
