// Package mesh holds the static triangle-mesh topology used by the
// mesh force computes. Topology is read-only during force computation.
package mesh

import (
	"errors"
	"fmt"
)

// ErrUnknownType reports a bond type-name lookup that matched nothing.
var ErrUnknownType = errors.New("unknown type")

// Bond is an edge shared by exactly two triangles. A and B are vertex
// tags; Tri1 and Tri2 index into the triangle list.
type Bond struct {
	A, B       int
	Tri1, Tri2 int
	Type       int
}

// Triangle references its three vertices by tag.
type Triangle struct {
	V [3]int
}

// Mesh is a validated half-edge-like mesh: every bond carries its two
// adjacent triangles, and the vertex opposite each bond in either
// triangle is resolved once at construction time.
type Mesh struct {
	bonds     []Bond
	triangles []Triangle
	typeNames []string

	// opposite[i] holds the tags of the vertices opposite bond i in its
	// two adjacent triangles (c from Tri1, d from Tri2).
	opposite [][2]int
}

// New validates the topology and precomputes the bond opposite-vertex
// table. Each adjacent triangle must contain both bond endpoints plus
// one further vertex.
func New(bonds []Bond, triangles []Triangle, typeNames []string) (*Mesh, error) {
	if len(typeNames) == 0 {
		typeNames = []string{"mesh"}
	}
	m := &Mesh{
		bonds:     append([]Bond(nil), bonds...),
		triangles: append([]Triangle(nil), triangles...),
		typeNames: typeNames,
		opposite:  make([][2]int, len(bonds)),
	}
	for i, b := range m.bonds {
		if b.Type < 0 || b.Type >= len(typeNames) {
			return nil, fmt.Errorf("mesh: bond %d has invalid type %d", i, b.Type)
		}
		c, err := m.oppositeVertex(b, b.Tri1)
		if err != nil {
			return nil, fmt.Errorf("mesh: bond %d: %w", i, err)
		}
		d, err := m.oppositeVertex(b, b.Tri2)
		if err != nil {
			return nil, fmt.Errorf("mesh: bond %d: %w", i, err)
		}
		m.opposite[i] = [2]int{c, d}
	}
	return m, nil
}

// oppositeVertex finds the one vertex of triangle tri that is neither
// bond endpoint, checking that the triangle actually contains the edge.
func (m *Mesh) oppositeVertex(b Bond, tri int) (int, error) {
	if tri < 0 || tri >= len(m.triangles) {
		return 0, fmt.Errorf("triangle index %d out of range", tri)
	}
	t := m.triangles[tri]
	var hasA, hasB bool
	opp := -1
	for _, v := range t.V {
		switch v {
		case b.A:
			hasA = true
		case b.B:
			hasB = true
		default:
			opp = v
		}
	}
	if !hasA || !hasB {
		return 0, fmt.Errorf("triangle %d does not contain edge (%d,%d)", tri, b.A, b.B)
	}
	if opp < 0 {
		return 0, fmt.Errorf("triangle %d has no vertex opposite edge (%d,%d)", tri, b.A, b.B)
	}
	return opp, nil
}

func (m *Mesh) NBonds() int           { return len(m.bonds) }
func (m *Mesh) Bond(i int) Bond       { return m.bonds[i] }
func (m *Mesh) Bonds() []Bond         { return m.bonds }
func (m *Mesh) Triangles() []Triangle { return m.triangles }
func (m *Mesh) NTypes() int           { return len(m.typeNames) }

// Opposite returns the tags of the two vertices opposite bond i.
func (m *Mesh) Opposite(i int) (c, d int) {
	return m.opposite[i][0], m.opposite[i][1]
}

// TypeByName resolves a mesh bond type name to its index.
func (m *Mesh) TypeByName(name string) (int, error) {
	for i, n := range m.typeNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("mesh: %w %q", ErrUnknownType, name)
}
