package particle

import (
	"testing"

	"github.com/wouterel/meshmd/internal/geometry"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore(5, geometry.NewCubicBox(10), []string{"A", "B"})

	if s.N() != 5 {
		t.Fatalf("expected 5 particles, got %d", s.N())
	}
	if s.NTypes() != 2 {
		t.Errorf("expected 2 types, got %d", s.NTypes())
	}
	for i, m := range s.Masses() {
		if m != 1.0 {
			t.Errorf("particle %d: expected unit mass, got %f", i, m)
		}
	}
	for tag := 0; tag <= s.MaxTag(); tag++ {
		if s.RTag(tag) != tag {
			t.Errorf("tag %d: expected identity rtag, got %d", tag, s.RTag(tag))
		}
	}
}

func TestTypeByName(t *testing.T) {
	s := NewStore(1, geometry.NewCubicBox(10), []string{"A", "B"})

	idx, err := s.TypeByName("B")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}

	if _, err := s.TypeByName("C"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestZeroNetForce(t *testing.T) {
	s := NewStore(3, geometry.NewCubicBox(10), nil)

	s.Forces()[1] = geometry.Vec3{X: 1}
	s.Energies()[2] = 7
	s.Virial()[0] = 3

	s.ZeroNetForce()

	for i, f := range s.Forces() {
		if f != (geometry.Vec3{}) {
			t.Errorf("force %d not zeroed: %v", i, f)
		}
	}
	for i, e := range s.Energies() {
		if e != 0 {
			t.Errorf("energy %d not zeroed: %v", i, e)
		}
	}
	for i, v := range s.Virial() {
		if v != 0 {
			t.Errorf("virial %d not zeroed: %v", i, v)
		}
	}
}

func TestAddGhosts(t *testing.T) {
	s := NewStore(4, geometry.NewCubicBox(10), nil)
	s.AddGhosts(2)

	if s.NTotal() != 6 {
		t.Fatalf("expected 6 total, got %d", s.NTotal())
	}
	if len(s.Forces()) != 6 {
		t.Errorf("force buffer not resized: %d", len(s.Forces()))
	}
	if s.VirialPitch() < 6 {
		t.Errorf("virial pitch %d smaller than particle count", s.VirialPitch())
	}
	if len(s.Virial()) != 6*s.VirialPitch() {
		t.Errorf("virial buffer %d does not match 6 rows of pitch %d", len(s.Virial()), s.VirialPitch())
	}
}

func TestGroupNDOF(t *testing.T) {
	g := NewGroup([]int{0, 1, 2, 3})
	if g.NDOF() != 9 {
		t.Errorf("expected ndof 9, got %d", g.NDOF())
	}
}
