package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcosahedronTopology(t *testing.T) {
	verts, faces := Icosahedron(1.0)
	require.Len(t, verts, 12)
	require.Len(t, faces, 20)

	m, err := FromTriangles(faces, []string{"membrane"})
	require.NoError(t, err)
	assert.Equal(t, 30, m.NBonds())

	// every vertex has degree 5, and all referenced tags are in range
	degree := make([]int, 12)
	for i := 0; i < m.NBonds(); i++ {
		b := m.Bond(i)
		require.GreaterOrEqual(t, b.A, 0)
		require.Less(t, b.B, 12)
		degree[b.A]++
		degree[b.B]++

		c, d := m.Opposite(i)
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 12)
		assert.GreaterOrEqual(t, d, 0)
		assert.Less(t, d, 12)
	}
	for v, deg := range degree {
		assert.Equalf(t, 5, deg, "vertex %d degree", v)
	}
}

func TestIcosahedronCircumradius(t *testing.T) {
	radius := 2.5
	verts, _ := Icosahedron(radius)

	edge := math.Inf(1)
	for i, v := range verts {
		assert.InDelta(t, radius, v.Norm(), 1e-12)
		for j := i + 1; j < len(verts); j++ {
			if d := v.Sub(verts[j]).Norm(); d < edge {
				edge = d
			}
		}
	}

	// nearest-neighbor distance of a regular icosahedron: R / sin(2π/5)
	want := radius / math.Sin(2*math.Pi/5)
	assert.InDelta(t, want, edge, 1e-12)
}

func TestFromTrianglesRejectsOpenMesh(t *testing.T) {
	// a single triangle leaves every edge with one adjacent face
	_, err := FromTriangles([]Triangle{{V: [3]int{0, 1, 2}}}, []string{"membrane"})
	assert.Error(t, err)
}

func TestFromTrianglesDeterministicBondOrder(t *testing.T) {
	_, faces := Icosahedron(1.0)

	first, err := FromTriangles(faces, []string{"membrane"})
	require.NoError(t, err)
	second, err := FromTriangles(faces, []string{"membrane"})
	require.NoError(t, err)

	assert.Equal(t, first.Bonds(), second.Bonds())
}
