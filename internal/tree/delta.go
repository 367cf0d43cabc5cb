package tree

import (
	"community-backend/internal/models"
)

// Intent is one user-requested relation attachment: either a brand-new
// member (NewMember populated with scalars and a fresh ID, empty edges) or
// an existing member (SubjectID set) to be attached to the anchor.
type Intent struct {
	Relation  string
	AnchorID  string // required except for the first self node
	NewMember *models.Member
	SubjectID string // existing member to link instead of creating one
}

// EdgeField names one of a member's relationship edge lists
type EdgeField int

const (
	FieldParents EdgeField = iota
	FieldChildren
	FieldSiblings
	FieldSpouse
)

// EdgeOp adds a single reference to one member's edge list. Spouse ops set
// the scalar spouse field instead of appending.
type EdgeOp struct {
	MemberID string
	Field    EdgeField
	TargetID string
}

// Delta is the full set of changes implied by one intent. Nothing is
// mutated until Apply; a delta either applies entirely or not at all.
type Delta struct {
	NewMember  *models.Member // nil when attaching an existing member
	FamilyHead string         // non-empty when the tree's head changes
	Ops        []EdgeOp
}

// Engine computes edge deltas for relation attachments.
//
// LinkSpouseToNewParent controls the father/mother rule that also records
// the anchor's spouse as a child of the new parent. That treats a spouse as
// a full co-parent of the same lineage, which is the product's family-unit
// convention rather than a strict genealogical fact.
type Engine struct {
	LinkSpouseToNewParent bool
}

// NewEngine returns an engine with the default modeling rules
func NewEngine() *Engine {
	return &Engine{LinkSpouseToNewParent: true}
}

// ComputeDelta translates an intent into the full set of edge updates
// without touching the graph. All invariant checks (anchor existence,
// parent cap, cycle prevention, spouse exclusivity) happen here, before
// any state changes.
func (e *Engine) ComputeDelta(g *Graph, intent Intent) (*Delta, error) {
	if !models.ValidRelation(intent.Relation) {
		return nil, validationErrorf("unknown relation %q", intent.Relation)
	}

	subject, delta, err := e.resolveSubject(g, intent)
	if err != nil {
		return nil, err
	}

	if intent.Relation == models.RelationSelf {
		if g.Self() != nil {
			return nil, validationErrorf("tree already has a self member")
		}
		delta.FamilyHead = subject.ID
		return delta, nil
	}

	if intent.AnchorID == "" {
		return nil, validationErrorf("relation %q requires a related member", intent.Relation)
	}
	anchor := g.Lookup(intent.AnchorID)
	if anchor == nil {
		return nil, ErrMemberNotFound
	}
	if anchor.ID == subject.ID {
		return nil, validationErrorf("cannot relate a member to itself")
	}

	switch intent.Relation {
	case models.RelationSpouse:
		err = e.spouseDelta(g, anchor, subject, delta)
	case models.RelationFather, models.RelationMother:
		err = e.parentDelta(g, anchor, subject, delta)
	case models.RelationSon, models.RelationDaughter:
		err = e.childDelta(g, anchor, subject, delta)
	case models.RelationBrother, models.RelationSister:
		err = e.siblingDelta(g, anchor, subject, delta)
	case models.RelationGrandfather, models.RelationGrandmother:
		// Direct data entry: no automatic edge synthesis. Grandparents are
		// normally modeled by adding a father/mother to an existing parent.
	}
	if err != nil {
		return nil, err
	}
	return delta, nil
}

// resolveSubject returns the member the intent is about: the new member, or
// the existing member named by SubjectID.
func (e *Engine) resolveSubject(g *Graph, intent Intent) (*models.Member, *Delta, error) {
	if intent.SubjectID != "" {
		m := g.Lookup(intent.SubjectID)
		if m == nil {
			return nil, nil, ErrMemberNotFound
		}
		return m, &Delta{}, nil
	}
	if intent.NewMember == nil || intent.NewMember.ID == "" {
		return nil, nil, validationErrorf("new member is missing")
	}
	if g.Lookup(intent.NewMember.ID) != nil {
		return nil, nil, validationErrorf("member id %s already exists", intent.NewMember.ID)
	}
	return intent.NewMember, &Delta{NewMember: intent.NewMember}, nil
}

// spouseDelta links subject and anchor as spouses. The subject inherits the
// anchor's current children as a union (co-parent semantics): the anchor
// keeps its children, and each child gains the subject as a second parent.
func (e *Engine) spouseDelta(g *Graph, anchor, subject *models.Member, d *Delta) error {
	if anchor.Spouse != "" && anchor.Spouse != subject.ID {
		return validationErrorf("%s already has a spouse", anchor.Name)
	}
	if subject.Spouse != "" {
		return validationErrorf("%s already has a spouse", subject.Name)
	}

	d.add(subject.ID, FieldSpouse, anchor.ID)
	d.add(anchor.ID, FieldSpouse, subject.ID)

	for _, childID := range anchor.Children {
		if childID == subject.ID {
			return validationErrorf("%s cannot marry their own child", anchor.Name)
		}
		if err := e.checkParentEdge(g, d, subject, childID); err != nil {
			return err
		}
		d.add(subject.ID, FieldChildren, childID)
		d.add(childID, FieldParents, subject.ID)
	}
	return nil
}

// parentDelta attaches subject as a new parent of the anchor, closing the
// edge across the anchor's whole sibling set, and optionally across the
// anchor's spouse.
func (e *Engine) parentDelta(g *Graph, anchor, subject *models.Member, d *Delta) error {
	children := []string{anchor.ID}
	children = append(children, anchor.Siblings...)
	if e.LinkSpouseToNewParent && anchor.Spouse != "" {
		children = append(children, anchor.Spouse)
	}

	for _, childID := range children {
		if childID == subject.ID {
			return validationErrorf("%s cannot be their own parent", subject.Name)
		}
		if err := e.checkParentEdge(g, d, subject, childID); err != nil {
			return err
		}
		d.add(subject.ID, FieldChildren, childID)
		d.add(childID, FieldParents, subject.ID)
	}
	return nil
}

// childDelta attaches subject as a child of the anchor and, when the anchor
// has a spouse, of the spouse too: a new child joins the whole couple.
func (e *Engine) childDelta(g *Graph, anchor, subject *models.Member, d *Delta) error {
	parents := []string{anchor.ID}
	if anchor.Spouse != "" {
		parents = append(parents, anchor.Spouse)
	}

	for _, parentID := range parents {
		if parentID == subject.ID {
			return validationErrorf("%s cannot be their own child", subject.Name)
		}
		parent := g.Lookup(parentID)
		if parent == nil {
			return ErrMemberNotFound
		}
		if err := e.checkParentEdge(g, d, parent, subject.ID); err != nil {
			return err
		}
		d.add(subject.ID, FieldParents, parentID)
		d.add(parentID, FieldChildren, subject.ID)
	}
	return nil
}

// siblingDelta makes subject and anchor mutual siblings, closes the sibling
// set, and retroactively attaches subject to the anchor's parents.
func (e *Engine) siblingDelta(g *Graph, anchor, subject *models.Member, d *Delta) error {
	d.add(subject.ID, FieldSiblings, anchor.ID)
	d.add(anchor.ID, FieldSiblings, subject.ID)

	for _, sibID := range anchor.Siblings {
		if sibID == subject.ID {
			continue
		}
		d.add(subject.ID, FieldSiblings, sibID)
		d.add(sibID, FieldSiblings, subject.ID)
	}

	for _, parentID := range anchor.Parents {
		if parentID == subject.ID {
			return validationErrorf("%s cannot be a sibling of their own child", subject.Name)
		}
		parent := g.Lookup(parentID)
		if parent == nil {
			return ErrMemberNotFound
		}
		if err := e.checkParentEdge(g, d, parent, subject.ID); err != nil {
			return err
		}
		d.add(subject.ID, FieldParents, parentID)
		d.add(parentID, FieldChildren, subject.ID)
	}
	return nil
}

// checkParentEdge validates one proposed parent -> child edge: the child's
// parent list must stay within the cap, and the edge must not close a cycle.
// Counting includes parent edges already queued on the delta so multi-edge
// closures are validated as a whole.
func (e *Engine) checkParentEdge(g *Graph, d *Delta, parent *models.Member, childID string) error {
	child := g.Lookup(childID)
	existing := 0
	if child != nil {
		if contains(child.Parents, parent.ID) {
			return nil // already linked, no-op
		}
		existing = len(child.Parents)
		if g.HasAncestorPath(parent.ID, childID) {
			return validationErrorf("linking %s as a parent of %s would create a cycle", parent.Name, child.Name)
		}
	}

	pending := 0
	for _, op := range d.Ops {
		if op.MemberID == childID && op.Field == FieldParents {
			pending++
		}
	}
	if d.NewMember != nil && d.NewMember.ID == childID {
		existing = len(d.NewMember.Parents)
	}
	if existing+pending+1 > MaxParents {
		name := childID
		if child != nil {
			name = child.Name
		}
		return validationErrorf("%s already has %d parents", name, MaxParents)
	}
	return nil
}

// add queues an edge op, skipping exact duplicates
func (d *Delta) add(memberID string, field EdgeField, targetID string) {
	for _, op := range d.Ops {
		if op.MemberID == memberID && op.Field == field && op.TargetID == targetID {
			return
		}
	}
	d.Ops = append(d.Ops, EdgeOp{MemberID: memberID, Field: field, TargetID: targetID})
}

// Apply produces the updated member list: the new member appended in
// creation order, then every edge op applied. The input slice is never
// modified. Ops that are already satisfied are skipped, so Apply is
// idempotent over a delta.
func (d *Delta) Apply(members []models.Member) []models.Member {
	out := make([]models.Member, len(members), len(members)+1)
	for i := range members {
		out[i] = cloneMember(members[i])
	}
	if d.NewMember != nil {
		out = append(out, cloneMember(*d.NewMember))
	}

	index := make(map[string]*models.Member, len(out))
	for i := range out {
		index[out[i].ID] = &out[i]
	}

	for _, op := range d.Ops {
		m := index[op.MemberID]
		if m == nil {
			continue
		}
		switch op.Field {
		case FieldParents:
			if !contains(m.Parents, op.TargetID) {
				m.Parents = append(m.Parents, op.TargetID)
			}
		case FieldChildren:
			if !contains(m.Children, op.TargetID) {
				m.Children = append(m.Children, op.TargetID)
			}
		case FieldSiblings:
			if !contains(m.Siblings, op.TargetID) {
				m.Siblings = append(m.Siblings, op.TargetID)
			}
		case FieldSpouse:
			m.Spouse = op.TargetID
		}
	}
	return out
}

func cloneMember(m models.Member) models.Member {
	c := m
	c.Parents = append([]string(nil), m.Parents...)
	c.Children = append([]string(nil), m.Children...)
	c.Siblings = append([]string(nil), m.Siblings...)
	return c
}

// RemoveMember returns the member list with the given member excised and
// every edge referencing it removed from the remaining members
func RemoveMember(members []models.Member, memberID string) []models.Member {
	out := make([]models.Member, 0, len(members))
	for i := range members {
		if members[i].ID == memberID {
			continue
		}
		m := cloneMember(members[i])
		m.Parents = removeID(m.Parents, memberID)
		m.Children = removeID(m.Children, memberID)
		m.Siblings = removeID(m.Siblings, memberID)
		if m.Spouse == memberID {
			m.Spouse = ""
		}
		out = append(out, m)
	}
	return out
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
