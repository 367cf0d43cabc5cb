package tree

import (
	"fmt"

	"community-backend/internal/models"
)

// MaxParents caps the number of entries in a member's parents list
const MaxParents = 2

// Graph indexes a tree's member list for O(1) lookup by member ID.
// It never owns the member slice; callers pass the tree's current state.
type Graph struct {
	members []models.Member
	index   map[string]*models.Member
}

// NewGraph builds a graph over the given member list
func NewGraph(members []models.Member) *Graph {
	g := &Graph{
		members: members,
		index:   make(map[string]*models.Member, len(members)),
	}
	for i := range members {
		g.index[members[i].ID] = &members[i]
	}
	return g
}

// Lookup returns the member with the given ID, or nil
func (g *Graph) Lookup(id string) *models.Member {
	return g.index[id]
}

// Members returns the underlying member list in insertion order
func (g *Graph) Members() []models.Member {
	return g.members
}

// Len returns the number of members in the graph
func (g *Graph) Len() int {
	return len(g.members)
}

// Self returns the member carrying the self relation tag, or nil
func (g *Graph) Self() *models.Member {
	for i := range g.members {
		if g.members[i].Relation == models.RelationSelf {
			return &g.members[i]
		}
	}
	return nil
}

// HasAncestorPath reports whether ancestorID reaches descendantID by
// repeatedly following children edges. Used to reject parent/child edges
// that would close a cycle: linking P as a parent of C is invalid when P is
// already a descendant of C, i.e. HasAncestorPath(P, C) is true.
//
// The traversal tracks visited nodes so it terminates even on a corrupt
// graph that already contains a cycle.
func (g *Graph) HasAncestorPath(descendantID, ancestorID string) bool {
	if descendantID == ancestorID {
		return true
	}
	visited := make(map[string]bool, len(g.members))
	stack := []string{ancestorID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		m := g.index[id]
		if m == nil {
			continue
		}
		for _, childID := range m.Children {
			if childID == descendantID {
				return true
			}
			if !visited[childID] {
				stack = append(stack, childID)
			}
		}
	}
	return false
}

// CheckInvariants verifies the structural invariants of the member list:
// edge symmetry for spouse and siblings, parent/child duality, no
// self-references, the parent cap, acyclicity of the parent/child subgraph,
// and a single self node. Returns the first violation found.
func CheckInvariants(members []models.Member) error {
	g := NewGraph(members)

	selfCount := 0
	for i := range members {
		m := &members[i]
		if m.Relation == models.RelationSelf {
			selfCount++
		}

		if len(m.Parents) > MaxParents {
			return fmt.Errorf("member %s has %d parents", m.ID, len(m.Parents))
		}

		if m.Spouse != "" {
			if m.Spouse == m.ID {
				return fmt.Errorf("member %s is its own spouse", m.ID)
			}
			sp := g.Lookup(m.Spouse)
			if sp == nil {
				return fmt.Errorf("member %s references missing spouse %s", m.ID, m.Spouse)
			}
			if sp.Spouse != m.ID {
				return fmt.Errorf("spouse edge %s -> %s is not reciprocated", m.ID, m.Spouse)
			}
		}

		for _, sibID := range m.Siblings {
			if sibID == m.ID {
				return fmt.Errorf("member %s is its own sibling", m.ID)
			}
			sib := g.Lookup(sibID)
			if sib == nil {
				return fmt.Errorf("member %s references missing sibling %s", m.ID, sibID)
			}
			if !contains(sib.Siblings, m.ID) {
				return fmt.Errorf("sibling edge %s -> %s is not reciprocated", m.ID, sibID)
			}
		}

		for _, childID := range m.Children {
			if childID == m.ID {
				return fmt.Errorf("member %s is its own child", m.ID)
			}
			child := g.Lookup(childID)
			if child == nil {
				return fmt.Errorf("member %s references missing child %s", m.ID, childID)
			}
			if !contains(child.Parents, m.ID) {
				return fmt.Errorf("child edge %s -> %s has no parent backlink", m.ID, childID)
			}
		}

		for _, parentID := range m.Parents {
			if parentID == m.ID {
				return fmt.Errorf("member %s is its own parent", m.ID)
			}
			parent := g.Lookup(parentID)
			if parent == nil {
				return fmt.Errorf("member %s references missing parent %s", m.ID, parentID)
			}
			if !contains(parent.Children, m.ID) {
				return fmt.Errorf("parent edge %s -> %s has no child backlink", m.ID, parentID)
			}
		}
	}

	if selfCount > 1 {
		return fmt.Errorf("tree has %d self members", selfCount)
	}

	for i := range members {
		if g.hasDescendantCycle(members[i].ID) {
			return fmt.Errorf("member %s is its own ancestor", members[i].ID)
		}
	}

	return nil
}

// hasDescendantCycle reports whether startID is reachable from itself over
// children edges
func (g *Graph) hasDescendantCycle(startID string) bool {
	m := g.index[startID]
	if m == nil {
		return false
	}
	for _, childID := range m.Children {
		if g.HasAncestorPath(startID, childID) {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
