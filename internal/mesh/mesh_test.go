package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOppositeVertices(t *testing.T) {
	// Two triangles sharing edge (0,1).
	tris := []Triangle{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{1, 0, 3}},
	}
	bonds := []Bond{{A: 0, B: 1, Tri1: 0, Tri2: 1}}

	m, err := New(bonds, tris, []string{"membrane"})
	require.NoError(t, err)

	c, d := m.Opposite(0)
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, d)
}

func TestNewRejectsBadTopology(t *testing.T) {
	tris := []Triangle{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{2, 3, 4}},
	}

	tests := []struct {
		name  string
		bonds []Bond
	}{
		{"triangle out of range", []Bond{{A: 0, B: 1, Tri1: 0, Tri2: 5}}},
		{"triangle missing endpoint", []Bond{{A: 0, B: 1, Tri1: 0, Tri2: 1}}},
		{"invalid bond type", []Bond{{A: 0, B: 1, Tri1: 0, Tri2: 0, Type: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.bonds, tris, []string{"membrane"})
			assert.Error(t, err)
		})
	}
}

func TestTypeByName(t *testing.T) {
	m, err := New(nil, nil, []string{"membrane", "scaffold"})
	require.NoError(t, err)

	idx, err := m.TypeByName("scaffold")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = m.TypeByName("nope")
	assert.Error(t, err)
}
