package particle

// Group is an ordered list of particle indices under integration control.
type Group struct {
	members []int
}

// All returns a group covering every local particle in the store.
func All(s *Store) *Group {
	m := make([]int, s.N())
	for i := range m {
		m[i] = i
	}
	return &Group{members: m}
}

// NewGroup wraps an explicit ordered member list.
func NewGroup(members []int) *Group {
	m := make([]int, len(members))
	copy(m, members)
	return &Group{members: m}
}

func (g *Group) Len() int       { return len(g.members) }
func (g *Group) Members() []int { return g.members }

// NDOF is the default degrees-of-freedom count for temperature
// estimation: three per member, minus three for the conserved total
// momentum of the group.
func (g *Group) NDOF() int {
	n := 3*len(g.members) - 3
	if n < 1 {
		n = 1
	}
	return n
}
