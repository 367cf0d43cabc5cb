package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-backend/internal/models"
)

func member(id, name, relation string) models.Member {
	return models.Member{ID: id, Name: name, Relation: relation, Gender: models.GenderOther}
}

func TestGraphLookup(t *testing.T) {
	members := []models.Member{
		member("m1", "Asha", models.RelationSelf),
		member("m2", "Raj", models.RelationFather),
	}
	g := NewGraph(members)

	require.NotNil(t, g.Lookup("m1"))
	assert.Equal(t, "Asha", g.Lookup("m1").Name)
	assert.Nil(t, g.Lookup("missing"))
	assert.Equal(t, 2, g.Len())
	require.NotNil(t, g.Self())
	assert.Equal(t, "m1", g.Self().ID)
}

func TestHasAncestorPath(t *testing.T) {
	// grandparent -> parent -> child
	gp := member("gp", "Grandpa", models.RelationGrandfather)
	p := member("p", "Father", models.RelationFather)
	c := member("c", "Asha", models.RelationSelf)
	gp.Children = []string{"p"}
	p.Parents = []string{"gp"}
	p.Children = []string{"c"}
	c.Parents = []string{"p"}

	g := NewGraph([]models.Member{gp, p, c})

	assert.True(t, g.HasAncestorPath("c", "gp"), "gp reaches c")
	assert.True(t, g.HasAncestorPath("c", "p"))
	assert.False(t, g.HasAncestorPath("gp", "c"), "c does not reach gp")
	assert.True(t, g.HasAncestorPath("x", "x"), "trivial self path")
}

func TestHasAncestorPathTerminatesOnCorruptGraph(t *testing.T) {
	// a and b reference each other as children: a pre-existing cycle that
	// should never occur, but the traversal must still terminate
	a := member("a", "A", models.RelationSelf)
	b := member("b", "B", models.RelationFather)
	a.Children = []string{"b"}
	b.Children = []string{"a"}

	g := NewGraph([]models.Member{a, b})

	assert.True(t, g.HasAncestorPath("b", "a"))
	assert.False(t, g.HasAncestorPath("missing", "a"))
}

func TestCheckInvariantsAcceptsConsistentTree(t *testing.T) {
	asha := member("asha", "Asha", models.RelationSelf)
	ken := member("ken", "Ken", models.RelationSpouse)
	raj := member("raj", "Raj", models.RelationFather)
	asha.Spouse = "ken"
	ken.Spouse = "asha"
	raj.Children = []string{"asha"}
	asha.Parents = []string{"raj"}

	require.NoError(t, CheckInvariants([]models.Member{asha, ken, raj}))
}

func TestCheckInvariantsViolations(t *testing.T) {
	t.Run("unreciprocated spouse", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		b := member("b", "B", models.RelationSpouse)
		a.Spouse = "b"
		assert.Error(t, CheckInvariants([]models.Member{a, b}))
	})

	t.Run("missing parent backlink", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		b := member("b", "B", models.RelationFather)
		a.Parents = []string{"b"}
		assert.Error(t, CheckInvariants([]models.Member{a, b}))
	})

	t.Run("parent cap exceeded", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		a.Parents = []string{"p1", "p2", "p3"}
		assert.Error(t, CheckInvariants([]models.Member{a}))
	})

	t.Run("two self members", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		b := member("b", "B", models.RelationSelf)
		assert.Error(t, CheckInvariants([]models.Member{a, b}))
	})

	t.Run("self reference", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		a.Siblings = []string{"a"}
		assert.Error(t, CheckInvariants([]models.Member{a}))
	})

	t.Run("dangling child reference", func(t *testing.T) {
		a := member("a", "A", models.RelationSelf)
		a.Children = []string{"ghost"}
		assert.Error(t, CheckInvariants([]models.Member{a}))
	})
}
