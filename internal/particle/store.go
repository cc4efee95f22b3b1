package particle

import (
	"errors"
	"fmt"

	"github.com/wouterel/meshmd/internal/geometry"
)

// ErrUnknownType reports a type-name lookup that matched nothing.
var ErrUnknownType = errors.New("unknown type")

// virialPitchAlign pads the virial row pitch so rows stay independently
// addressable when the particle count changes by a few ghosts.
const virialPitchAlign = 16

// Store owns the per-particle state arrays for one simulation domain.
// The first N entries are local particles; the following NGhosts entries
// are read-only copies owned by neighboring domains. Force and virial
// buffers are aggregate: force computes sum into them once per step after
// Simulation zeroes them.
type Store struct {
	box geometry.Box

	n       int
	nGhosts int

	pos   []geometry.Vec3
	typ   []int
	vel   []geometry.Vec3
	mass  []float64
	accel []geometry.Vec3
	image []geometry.IVec3

	force  []geometry.Vec3
	energy []float64
	virial []float64
	pitch  int

	tag  []int // index -> tag
	rtag []int // tag -> index

	typeNames []string
}

// NewStore allocates state for n local particles of type 0 with unit mass.
func NewStore(n int, box geometry.Box, typeNames []string) *Store {
	if len(typeNames) == 0 {
		typeNames = []string{"A"}
	}
	s := &Store{
		box:       box,
		n:         n,
		pos:       make([]geometry.Vec3, n),
		typ:       make([]int, n),
		vel:       make([]geometry.Vec3, n),
		mass:      make([]float64, n),
		accel:     make([]geometry.Vec3, n),
		image:     make([]geometry.IVec3, n),
		tag:       make([]int, n),
		rtag:      make([]int, n),
		typeNames: typeNames,
	}
	for i := 0; i < n; i++ {
		s.mass[i] = 1.0
		s.tag[i] = i
		s.rtag[i] = i
	}
	s.allocForceBuffers()
	return s
}

func (s *Store) allocForceBuffers() {
	total := s.n + s.nGhosts
	s.pitch = (total + virialPitchAlign - 1) / virialPitchAlign * virialPitchAlign
	if s.pitch == 0 {
		s.pitch = virialPitchAlign
	}
	s.force = make([]geometry.Vec3, total)
	s.energy = make([]float64, total)
	s.virial = make([]float64, 6*s.pitch)
}

// AddGhosts extends the arrays with nGhosts read-only remote particles.
func (s *Store) AddGhosts(nGhosts int) {
	s.nGhosts = nGhosts
	grow := func(n int) {
		s.pos = append(s.pos, make([]geometry.Vec3, n)...)
		s.typ = append(s.typ, make([]int, n)...)
		s.vel = append(s.vel, make([]geometry.Vec3, n)...)
		s.accel = append(s.accel, make([]geometry.Vec3, n)...)
		s.image = append(s.image, make([]geometry.IVec3, n)...)
		for i := 0; i < n; i++ {
			s.mass = append(s.mass, 1.0)
			t := len(s.tag)
			s.tag = append(s.tag, t)
			s.rtag = append(s.rtag, t)
		}
	}
	grow(nGhosts)
	s.allocForceBuffers()
}

func (s *Store) N() int       { return s.n }
func (s *Store) NGhosts() int { return s.nGhosts }
func (s *Store) NTotal() int  { return s.n + s.nGhosts }

// MaxTag returns the largest particle tag in use.
func (s *Store) MaxTag() int { return len(s.tag) - 1 }

// RTag resolves a particle tag to its local array index.
func (s *Store) RTag(tag int) int { return s.rtag[tag] }

func (s *Store) Box() geometry.Box     { return s.box }
func (s *Store) SetBox(b geometry.Box) { s.box = b }
func (s *Store) NTypes() int           { return len(s.typeNames) }
func (s *Store) TypeNames() []string   { return s.typeNames }

// TypeByName resolves a particle type name to its index.
func (s *Store) TypeByName(name string) (int, error) {
	for i, n := range s.typeNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("particle: %w %q", ErrUnknownType, name)
}

func (s *Store) Positions() []geometry.Vec3     { return s.pos }
func (s *Store) Types() []int                   { return s.typ }
func (s *Store) Velocities() []geometry.Vec3    { return s.vel }
func (s *Store) Masses() []float64              { return s.mass }
func (s *Store) Accelerations() []geometry.Vec3 { return s.accel }
func (s *Store) Images() []geometry.IVec3       { return s.image }

// Forces is the aggregate net-force buffer consumed by the integrator.
func (s *Store) Forces() []geometry.Vec3 { return s.force }

// Energies is the aggregate per-particle potential energy buffer.
func (s *Store) Energies() []float64 { return s.energy }

// Virial is the aggregate per-particle virial, stored as 6 rows
// (xx, xy, xz, yy, yz, zz) of VirialPitch entries each.
func (s *Store) Virial() []float64 { return s.virial }

func (s *Store) VirialPitch() int { return s.pitch }

// ZeroNetForce clears the aggregate force, energy and virial buffers.
// Simulation calls this once per step before any force compute runs.
func (s *Store) ZeroNetForce() {
	for i := range s.force {
		s.force[i] = geometry.Vec3{}
		s.energy[i] = 0
	}
	for i := range s.virial {
		s.virial[i] = 0
	}
}

// Valid reports whether all local positions and velocities are finite.
func (s *Store) Valid() bool {
	for i := 0; i < s.n; i++ {
		if !s.pos[i].IsFinite() || !s.vel[i].IsFinite() {
			return false
		}
	}
	return true
}
