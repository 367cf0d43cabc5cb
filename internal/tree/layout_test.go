package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-backend/internal/models"
)

// buildFamily assembles a three-generation family through the engine:
// grandfather gp -> father raj + mother lata -> asha (self) + sister bina,
// asha married to ken with children c1, c2.
func buildFamily(t *testing.T) []models.Member {
	t.Helper()
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	steps := []Intent{
		{Relation: models.RelationSister, AnchorID: "asha", NewMember: newMember("bina", "Bina", models.RelationSister)},
		{Relation: models.RelationFather, AnchorID: "asha", NewMember: newMember("raj", "Raj", models.RelationFather)},
		{Relation: models.RelationMother, AnchorID: "asha", NewMember: newMember("lata", "Lata", models.RelationMother)},
		{Relation: models.RelationSpouse, AnchorID: "asha", NewMember: newMember("ken", "Ken", models.RelationSpouse)},
		{Relation: models.RelationSon, AnchorID: "asha", NewMember: newMember("c1", "Rohan", models.RelationSon)},
		{Relation: models.RelationDaughter, AnchorID: "asha", NewMember: newMember("c2", "Mira", models.RelationDaughter)},
		{Relation: models.RelationFather, AnchorID: "raj", NewMember: newMember("gp", "Mohan", models.RelationGrandfather)},
	}
	for _, intent := range steps {
		members = applyIntent(t, members, intent)
	}
	return members
}

func pairIDs(band Band) []string {
	var ids []string
	for _, p := range band.Pairs {
		ids = append(ids, p.Member.ID)
	}
	return ids
}

func TestDeriveLayoutBandsTopToBottom(t *testing.T) {
	members := buildFamily(t)
	g := NewGraph(members)

	layout, err := DeriveLayout(g, "asha")
	require.NoError(t, err)

	// gp -> (raj,lata) -> (asha+ken, bina) -> (c1, c2)
	require.Len(t, layout.Bands, 4)
	assert.Equal(t, []string{"gp"}, pairIDs(layout.Bands[0]))
	assert.Equal(t, []string{"raj"}, pairIDs(layout.Bands[1]))
	require.NotNil(t, layout.Bands[1].Pairs[0].Spouse)
	assert.Equal(t, "lata", layout.Bands[1].Pairs[0].Spouse.ID)

	assert.Equal(t, 2, layout.RootLevel)
	selfBand := layout.Bands[2]
	assert.ElementsMatch(t, []string{"asha", "bina"}, pairIDs(selfBand))
	require.NotNil(t, selfBand.Pairs[0].Spouse)
	assert.Equal(t, "ken", selfBand.Pairs[0].Spouse.ID)

	assert.ElementsMatch(t, []string{"c1", "c2"}, pairIDs(layout.Bands[3]))
}

func TestDeriveLayoutDeterministic(t *testing.T) {
	members := buildFamily(t)
	g := NewGraph(members)

	first, err := DeriveLayout(g, "asha")
	require.NoError(t, err)
	second, err := DeriveLayout(g, "asha")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveLayoutSiblingsWithoutParents(t *testing.T) {
	// siblings recorded before any parent exists still share the root band
	members := []models.Member{member("asha", "Asha", models.RelationSelf)}
	members = applyIntent(t, members, Intent{
		Relation:  models.RelationBrother,
		AnchorID:  "asha",
		NewMember: newMember("dev", "Dev", models.RelationBrother),
	})

	layout, err := DeriveLayout(NewGraph(members), "asha")
	require.NoError(t, err)
	require.Len(t, layout.Bands, 1)
	assert.Equal(t, 0, layout.RootLevel)
	assert.ElementsMatch(t, []string{"asha", "dev"}, pairIDs(layout.Bands[0]))
}

func TestDeriveLayoutArbitraryRoot(t *testing.T) {
	members := buildFamily(t)
	layout, err := DeriveLayout(NewGraph(members), "c1")
	require.NoError(t, err)

	// ascent from c1 still climbs one lineage line to the top ancestor
	assert.Equal(t, []string{"gp"}, pairIDs(layout.Bands[0]))
	assert.Equal(t, "c1", layout.RootID)
}

func TestDeriveLayoutRootNotFound(t *testing.T) {
	_, err := DeriveLayout(NewGraph(nil), "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDeriveLayoutSurvivesCorruptGraph(t *testing.T) {
	// parent/child loop: derivation must terminate and emit each node once
	a := member("a", "A", models.RelationSelf)
	b := member("b", "B", models.RelationFather)
	a.Children = []string{"b"}
	a.Parents = []string{"b"}
	b.Children = []string{"a"}
	b.Parents = []string{"a"}

	layout, err := DeriveLayout(NewGraph([]models.Member{a, b}), "a")
	require.NoError(t, err)

	total := 0
	for _, band := range layout.Bands {
		total += len(band.Pairs)
	}
	assert.Equal(t, 2, total)
}
