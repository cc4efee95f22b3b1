package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/wouterel/meshmd/internal/geometry"
)

// FromTriangles derives the bond list of a closed mesh from its
// triangle list and validates it through New. Every edge must be shared
// by exactly two triangles.
func FromTriangles(triangles []Triangle, typeNames []string) (*Mesh, error) {
	type edge struct{ a, b int }
	adjacent := make(map[edge][]int)
	for ti, t := range triangles {
		for k := 0; k < 3; k++ {
			a, b := t.V[k], t.V[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			adjacent[edge{a, b}] = append(adjacent[edge{a, b}], ti)
		}
	}

	bonds := make([]Bond, 0, len(adjacent))
	for e, tris := range adjacent {
		if len(tris) != 2 {
			return nil, fmt.Errorf("mesh: edge (%d,%d) shared by %d triangles, want 2", e.a, e.b, len(tris))
		}
		bonds = append(bonds, Bond{A: e.a, B: e.b, Tri1: tris[0], Tri2: tris[1]})
	}
	// map order is random; keep the bond list deterministic
	sort.Slice(bonds, func(i, j int) bool {
		if bonds[i].A != bonds[j].A {
			return bonds[i].A < bonds[j].A
		}
		return bonds[i].B < bonds[j].B
	})

	return New(bonds, triangles, typeNames)
}

// Icosahedron returns the 12 vertices of a regular icosahedron with the
// given circumradius, centered on the origin, together with its 20
// faces. It is the smallest closed triangulation of a sphere with all
// vertices equivalent, which makes it the natural seed membrane.
func Icosahedron(radius float64) ([]geometry.Vec3, []Triangle) {
	phi := (1 + math.Sqrt(5)) / 2
	s := radius / math.Sqrt(1+phi*phi)

	vertices := []geometry.Vec3{
		{X: -s, Y: s * phi}, {X: s, Y: s * phi},
		{X: -s, Y: -s * phi}, {X: s, Y: -s * phi},
		{Y: -s, Z: s * phi}, {Y: s, Z: s * phi},
		{Y: -s, Z: -s * phi}, {Y: s, Z: -s * phi},
		{X: s * phi, Z: -s}, {X: s * phi, Z: s},
		{X: -s * phi, Z: -s}, {X: -s * phi, Z: s},
	}

	faces := []Triangle{
		{V: [3]int{0, 11, 5}}, {V: [3]int{0, 5, 1}}, {V: [3]int{0, 1, 7}},
		{V: [3]int{0, 7, 10}}, {V: [3]int{0, 10, 11}},
		{V: [3]int{1, 5, 9}}, {V: [3]int{5, 11, 4}}, {V: [3]int{11, 10, 2}},
		{V: [3]int{10, 7, 6}}, {V: [3]int{7, 1, 8}},
		{V: [3]int{3, 9, 4}}, {V: [3]int{3, 4, 2}}, {V: [3]int{3, 2, 6}},
		{V: [3]int{3, 6, 8}}, {V: [3]int{3, 8, 9}},
		{V: [3]int{4, 9, 5}}, {V: [3]int{2, 4, 11}}, {V: [3]int{6, 2, 10}},
		{V: [3]int{8, 6, 7}}, {V: [3]int{9, 8, 1}},
	}

	return vertices, faces
}
