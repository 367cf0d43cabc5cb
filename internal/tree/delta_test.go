package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-backend/internal/models"
)

func applyIntent(t *testing.T, members []models.Member, intent Intent) []models.Member {
	t.Helper()
	g := NewGraph(members)
	delta, err := NewEngine().ComputeDelta(g, intent)
	require.NoError(t, err)
	updated := delta.Apply(members)
	require.NoError(t, CheckInvariants(updated), "mutation must preserve invariants")
	return updated
}

func newMember(id, name, relation string) *models.Member {
	m := member(id, name, relation)
	return &m
}

func find(t *testing.T, members []models.Member, id string) *models.Member {
	t.Helper()
	for i := range members {
		if members[i].ID == id {
			return &members[i]
		}
	}
	t.Fatalf("member %s not in list", id)
	return nil
}

func TestAddFatherLinksAnchor(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})

	require.Len(t, updated, 2)
	assert.Equal(t, []string{"raj"}, find(t, updated, "asha").Parents)
	assert.Equal(t, []string{"asha"}, find(t, updated, "raj").Children)
}

func TestAddFatherCoversExistingSiblings(t *testing.T) {
	// Bina was added as Asha's sister before any parent existed
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSister,
		AnchorID:  "asha",
		NewMember: newMember("bina", "Bina", models.RelationSister),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})

	assert.Contains(t, find(t, updated, "asha").Parents, "raj")
	assert.Contains(t, find(t, updated, "bina").Parents, "raj")
	raj := find(t, updated, "raj")
	assert.Contains(t, raj.Children, "asha")
	assert.Contains(t, raj.Children, "bina")
}

func TestAddFatherAlsoCoversSpouseByDefault(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "asha",
		NewMember: newMember("ken", "Ken", models.RelationSpouse),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})

	assert.Contains(t, find(t, updated, "ken").Parents, "raj")
	assert.Contains(t, find(t, updated, "raj").Children, "ken")
}

func TestAddFatherSpouseRuleDisabled(t *testing.T) {
	asha := member("asha", "Asha", models.RelationSelf)
	ken := member("ken", "Ken", models.RelationSpouse)
	asha.Spouse = "ken"
	ken.Spouse = "asha"
	members := []models.Member{asha, ken}

	engine := &Engine{LinkSpouseToNewParent: false}
	delta, err := engine.ComputeDelta(NewGraph(members), Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})
	require.NoError(t, err)
	updated := delta.Apply(members)

	assert.Empty(t, find(t, updated, "ken").Parents)
	assert.Equal(t, []string{"asha"}, find(t, updated, "raj").Children)
}

func TestAddSpouseInheritsChildrenAsUnion(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationDaughter,
		AnchorID:  "asha",
		NewMember: newMember("c1", "Mira", models.RelationDaughter),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "asha",
		NewMember: newMember("ken", "Ken", models.RelationSpouse),
	})

	asha := find(t, updated, "asha")
	ken := find(t, updated, "ken")
	assert.Equal(t, "ken", asha.Spouse)
	assert.Equal(t, "asha", ken.Spouse)
	assert.Equal(t, []string{"c1"}, ken.Children, "spouse inherits children")
	assert.Equal(t, []string{"c1"}, asha.Children, "union, not a move")
	c1 := find(t, updated, "c1")
	assert.ElementsMatch(t, []string{"asha", "ken"}, c1.Parents)
}

func TestAddSpouseRejectedWhenAlreadyMarried(t *testing.T) {
	asha := member("asha", "Asha", models.RelationSelf)
	ken := member("ken", "Ken", models.RelationSpouse)
	asha.Spouse = "ken"
	ken.Spouse = "asha"
	members := []models.Member{asha, ken}

	_, err := NewEngine().ComputeDelta(NewGraph(members), Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "asha",
		NewMember: newMember("x", "X", models.RelationSpouse),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAddChildAttachesToBothSpouses(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "asha",
		NewMember: newMember("ken", "Ken", models.RelationSpouse),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationSon,
		AnchorID:  "asha",
		NewMember: newMember("rohan", "Rohan", models.RelationSon),
	})

	rohan := find(t, updated, "rohan")
	assert.ElementsMatch(t, []string{"asha", "ken"}, rohan.Parents)
	assert.Contains(t, find(t, updated, "asha").Children, "rohan")
	assert.Contains(t, find(t, updated, "ken").Children, "rohan")
}

func TestAddSiblingClosesSiblingSetAndInheritsParents(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSister,
		AnchorID:  "asha",
		NewMember: newMember("bina", "Bina", models.RelationSister),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationBrother,
		AnchorID:  "asha",
		NewMember: newMember("dev", "Dev", models.RelationBrother),
	})

	dev := find(t, updated, "dev")
	assert.ElementsMatch(t, []string{"asha", "bina"}, dev.Siblings, "closure over the full sibling set")
	assert.Contains(t, find(t, updated, "bina").Siblings, "dev")
	assert.Equal(t, []string{"raj"}, dev.Parents, "sibling inherits anchor's parents")
	assert.Contains(t, find(t, updated, "raj").Children, "dev")
}

func TestAddGrandparentSynthesizesNoEdges(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationGrandfather,
		AnchorID:  "asha",
		NewMember: newMember("gp", "Mohan", models.RelationGrandfather),
	})

	gp := find(t, updated, "gp")
	assert.Empty(t, gp.Parents)
	assert.Empty(t, gp.Children)
	assert.Empty(t, find(t, updated, "asha").Parents)
}

func TestSecondSelfRejected(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}

	_, err := NewEngine().ComputeDelta(NewGraph(members), Intent{
		Relation:  models.RelationSelf,
		NewMember: newMember("x", "X", models.RelationSelf),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFirstSelfSetsFamilyHead(t *testing.T) {
	delta, err := NewEngine().ComputeDelta(NewGraph(nil), Intent{
		Relation:  models.RelationSelf,
		NewMember: newMember("asha", "Asha", models.RelationSelf),
	})
	require.NoError(t, err)
	assert.Equal(t, "asha", delta.FamilyHead)
	assert.Empty(t, delta.Ops)
}

func TestUnknownRelationRejected(t *testing.T) {
	_, err := NewEngine().ComputeDelta(NewGraph(nil), Intent{
		Relation:  "cousin",
		NewMember: newMember("x", "X", "cousin"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAnchorNotFound(t *testing.T) {
	_, err := NewEngine().ComputeDelta(NewGraph(nil), Intent{
		Relation:  models.RelationFather,
		AnchorID:  "missing",
		NewMember: newMember("x", "X", models.RelationFather),
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestParentCapEnforced(t *testing.T) {
	asha := member("asha", "Asha", models.RelationSelf)
	p1 := member("p1", "Raj", models.RelationFather)
	p2 := member("p2", "Lata", models.RelationMother)
	asha.Parents = []string{"p1", "p2"}
	p1.Children = []string{"asha"}
	p2.Children = []string{"asha"}
	members := []models.Member{asha, p1, p2}

	_, err := NewEngine().ComputeDelta(NewGraph(members), Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("p3", "Extra", models.RelationFather),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCycleRejectedWhenLinkingDescendantAsParent(t *testing.T) {
	// Rohan is Asha's son; declaring him her father must fail closed
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSon,
		AnchorID:  "asha",
		NewMember: newMember("rohan", "Rohan", models.RelationSon),
	})

	g := NewGraph(members)
	_, err := NewEngine().ComputeDelta(g, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		SubjectID: "rohan",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "cycle")

	// graph unchanged
	require.NoError(t, CheckInvariants(members))
	assert.Empty(t, find(t, members, "rohan").Children)
}

func TestLinkExistingMemberAsSpouse(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationGrandfather,
		AnchorID:  "asha",
		NewMember: newMember("gp", "Mohan", models.RelationGrandfather),
	})
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationGrandmother,
		AnchorID:  "asha",
		NewMember: newMember("gm", "Kamla", models.RelationGrandmother),
	})

	updated := applyIntent(t, members, Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "gp",
		SubjectID: "gm",
	})

	assert.Equal(t, "gm", find(t, updated, "gp").Spouse)
	assert.Equal(t, "gp", find(t, updated, "gm").Spouse)
	assert.Len(t, updated, 3, "linking existing members adds no node")
}

func TestRemoveMemberExcisesAllEdges(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSpouse,
		AnchorID:  "asha",
		NewMember: newMember("ken", "Ken", models.RelationSpouse),
	})
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationSon,
		AnchorID:  "asha",
		NewMember: newMember("c1", "Rohan", models.RelationSon),
	})
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationDaughter,
		AnchorID:  "asha",
		NewMember: newMember("c2", "Mira", models.RelationDaughter),
	})

	updated := RemoveMember(members, "asha")

	require.Len(t, updated, 3)
	require.NoError(t, CheckInvariants(updated))
	assert.Empty(t, find(t, updated, "ken").Spouse, "spouse field cleared")
	assert.NotContains(t, find(t, updated, "c1").Parents, "asha")
	assert.NotContains(t, find(t, updated, "c2").Parents, "asha")
	for i := range updated {
		assert.NotContains(t, updated[i].Children, "asha")
		assert.NotContains(t, updated[i].Siblings, "asha")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	g := NewGraph(members)
	delta, err := NewEngine().ComputeDelta(g, Intent{
		Relation:  models.RelationFather,
		AnchorID:  "asha",
		NewMember: newMember("raj", "Raj", models.RelationFather),
	})
	require.NoError(t, err)

	_ = delta.Apply(members)

	assert.Empty(t, members[0].Parents, "input slice untouched")
	assert.Len(t, members, 1)
}
