package geometry

import "math"

// Vec3 is a point or displacement in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// IVec3 holds per-axis periodic image counts.
type IVec3 struct {
	X, Y, Z int
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vec3) NormSq() float64 {
	return v.Dot(v)
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.NormSq())
}

// Unit returns v scaled to unit length. The caller must ensure v is nonzero.
func (v Vec3) Unit() Vec3 {
	return v.Scale(1.0 / v.Norm())
}

func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
