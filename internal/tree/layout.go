package tree

import (
	"community-backend/internal/models"
)

// Pair is one rendering unit: a member and, when present, its partner.
// The partner is the member's spouse, or failing that a co-parent sharing
// a child (father and mother entered separately are paired for rendering
// even when no spouse edge was ever recorded).
type Pair struct {
	Member models.Member  `json:"member"`
	Spouse *models.Member `json:"spouse,omitempty"`
}

// Band is one horizontal generation layer, ordered left to right
type Band struct {
	Level int    `json:"level"` // 0 = topmost ancestor line found
	Pairs []Pair `json:"pairs"`
}

// Layout is the render-ready generational structure derived from a tree
type Layout struct {
	RootID    string `json:"root_id"`
	RootLevel int    `json:"root_level"` // index of the band holding the root
	Bands     []Band `json:"bands"`
}

// DeriveLayout walks the graph from rootID and produces generation bands
// from the eldest ascendant line down through all descendants. It is a pure
// read-side derivation and never mutates the graph.
//
// Ascent follows only parents[0] at each step (a single lineage line), so
// the result is deterministic for a fixed member list but does not fan out
// across both parents' ancestries. Storage keeps the full ancestor set;
// layout deliberately renders one line of it.
func DeriveLayout(g *Graph, rootID string) (*Layout, error) {
	root := g.Lookup(rootID)
	if root == nil {
		return nil, ErrMemberNotFound
	}

	top := ascend(g, root)

	layout := &Layout{RootID: rootID, RootLevel: -1}
	seen := make(map[string]bool, g.Len())
	generation := []string{top.ID}

	for len(generation) > 0 {
		// The band holding the root also carries the root's sibling group,
		// even when those siblings have no recorded parents.
		if containsID(generation, rootID) {
			generation = append(generation, root.Siblings...)
		}

		band := Band{Level: len(layout.Bands)}
		hasRoot := false
		var next []string

		for _, id := range generation {
			m := g.Lookup(id)
			if m == nil || seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			pair := Pair{Member: *m}
			if partner := findPartner(g, m, seen); partner != nil {
				seen[partner.ID] = true
				p := *partner
				pair.Spouse = &p
				next = appendUnseen(next, seen, p.Children)
			}
			if m.ID == rootID || (pair.Spouse != nil && pair.Spouse.ID == rootID) {
				hasRoot = true
			}
			band.Pairs = append(band.Pairs, pair)
			next = appendUnseen(next, seen, m.Children)
		}

		if len(band.Pairs) > 0 {
			if hasRoot {
				layout.RootLevel = band.Level
			}
			layout.Bands = append(layout.Bands, band)
		}
		generation = next
	}

	return layout, nil
}

// findPartner resolves the member m renders next to: its spouse, or the
// first not-yet-rendered co-parent found through m's children
func findPartner(g *Graph, m *models.Member, seen map[string]bool) *models.Member {
	if m.Spouse != "" {
		if sp := g.Lookup(m.Spouse); sp != nil && !seen[sp.ID] {
			return sp
		}
		return nil
	}
	for _, childID := range m.Children {
		child := g.Lookup(childID)
		if child == nil {
			continue
		}
		for _, parentID := range child.Parents {
			if parentID == m.ID || seen[parentID] {
				continue
			}
			if co := g.Lookup(parentID); co != nil {
				return co
			}
		}
	}
	return nil
}

// ascend climbs parents[0] from start until a member with no parents is
// reached, guarding against pre-existing cycles with a visited set
func ascend(g *Graph, start *models.Member) *models.Member {
	visited := map[string]bool{start.ID: true}
	top := start
	for len(top.Parents) > 0 {
		parent := g.Lookup(top.Parents[0])
		if parent == nil || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		top = parent
	}
	return top
}

func appendUnseen(ids []string, seen map[string]bool, add []string) []string {
	for _, id := range add {
		if !seen[id] && !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
