package geometry

import "math"

// Box is an orthorhombic periodic simulation box centered on the origin.
// The primary image spans [-L/2, L/2) along each axis.
type Box struct {
	Lx, Ly, Lz float64
}

func NewBox(lx, ly, lz float64) Box {
	return Box{Lx: lx, Ly: ly, Lz: lz}
}

// NewCubicBox returns a box with equal edge lengths.
func NewCubicBox(l float64) Box {
	return Box{Lx: l, Ly: l, Lz: l}
}

func (b Box) Volume() float64 {
	return b.Lx * b.Ly * b.Lz
}

// L returns the edge length along axis k (0=x, 1=y, 2=z).
func (b Box) L(k int) float64 {
	switch k {
	case 0:
		return b.Lx
	case 1:
		return b.Ly
	default:
		return b.Lz
	}
}

// MinImage reduces a displacement vector to its minimum image under
// periodic boundary conditions.
func (b Box) MinImage(d Vec3) Vec3 {
	d.X -= b.Lx * math.Round(d.X/b.Lx)
	d.Y -= b.Ly * math.Round(d.Y/b.Ly)
	d.Z -= b.Lz * math.Round(d.Z/b.Lz)
	return d
}

// Wrap shifts a position into the primary image and returns the updated
// position together with the accumulated image counts. Positions already
// inside the primary image pass through unchanged.
func (b Box) Wrap(p Vec3, img IVec3) (Vec3, IVec3) {
	nx := math.Floor(p.X/b.Lx + 0.5)
	ny := math.Floor(p.Y/b.Ly + 0.5)
	nz := math.Floor(p.Z/b.Lz + 0.5)
	p.X -= nx * b.Lx
	p.Y -= ny * b.Ly
	p.Z -= nz * b.Lz
	img.X += int(nx)
	img.Y += int(ny)
	img.Z += int(nz)
	return p, img
}

// Equivalent reports whether two boxes have essentially identical edges.
func (b Box) Equivalent(other Box) bool {
	const tol = 1e-12
	return math.Abs(b.Lx-other.Lx) < tol &&
		math.Abs(b.Ly-other.Ly) < tol &&
		math.Abs(b.Lz-other.Lz) < tol
}
