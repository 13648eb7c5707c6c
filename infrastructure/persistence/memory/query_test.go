package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptbase/application/ports"
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
)

func TestQueryConceptsByNameSubstring(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createConcept(t, store, "Dog", "alice")
	createConcept(t, store, "Hot Dog Stand", "alice")
	createConcept(t, store, "Cat", "alice")
	createConcept(t, store, "dogma", "alice")

	needle := "Dog"
	results, err := store.QueryConcepts(ctx, ports.ConceptQuery{NameContains: &needle})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Case-sensitive, insertion order.
	assert.Equal(t, "Dog", results[0].Name())
	assert.Equal(t, "Hot Dog Stand", results[1].Name())
}

func TestQueryConceptsByMetadataAndCreator(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateConcept(ctx, "A", "",
		valueobjects.Metadata{{Key: "domain", Value: "biology"}, {Key: "rank", Value: "species"}},
		valueobjects.NewCreator("u1"))
	require.NoError(t, err)
	_, err = store.CreateConcept(ctx, "B", "",
		valueobjects.Metadata{{Key: "domain", Value: "biology"}},
		valueobjects.NewCreator("u2"))
	require.NoError(t, err)
	_, err = store.CreateConcept(ctx, "C", "",
		valueobjects.Metadata{{Key: "domain", Value: "physics"}},
		valueobjects.NewCreator("u1"))
	require.NoError(t, err)

	results, err := store.QueryConcepts(ctx, ports.ConceptQuery{
		Metadata: valueobjects.Metadata{{Key: "domain", Value: "biology"}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	creator := "u1"
	results, err = store.QueryConcepts(ctx, ports.ConceptQuery{
		Metadata: valueobjects.Metadata{{Key: "domain", Value: "biology"}},
		Creator:  &creator,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Name())

	// Both pairs must match exactly.
	results, err = store.QueryConcepts(ctx, ports.ConceptQuery{
		Metadata: valueobjects.Metadata{
			{Key: "domain", Value: "biology"},
			{Key: "rank", Value: "genus"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryConceptsEmptyCriteriaMatchesAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createConcept(t, store, "A", "alice")
	createConcept(t, store, "B", "alice")

	results, err := store.QueryConcepts(ctx, ports.ConceptQuery{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryRelationshipsByEndpointsAndType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createConcept(t, store, "A", "alice")
	b := createConcept(t, store, "B", "alice")
	c := createConcept(t, store, "C", "alice")

	isAB, err := store.AssertRelationship(ctx, a, b, entities.BuiltinIsA, one(), one(), nil, valueobjects.NewCreator("u1"))
	require.NoError(t, err)
	_, err = store.AssertRelationship(ctx, b, c, entities.BuiltinIsA, one(), one(), nil, valueobjects.NewCreator("u2"))
	require.NoError(t, err)
	_, err = store.AssertRelationship(ctx, a, c, entities.BuiltinPartOf, one(), one(), nil, valueobjects.NewCreator("u1"))
	require.NoError(t, err)

	from := a
	results, err := store.QueryRelationships(ctx, ports.RelationshipQuery{From: &from})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	typeFilter := entities.BuiltinIsA
	results, err = store.QueryRelationships(ctx, ports.RelationshipQuery{From: &from, Type: &typeFilter})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, isAB, results[0].ID())

	creator := "u2"
	results, err = store.QueryRelationships(ctx, ports.RelationshipQuery{Creator: &creator})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, b, results[0].From())
}

func TestQueryRelationshipsByProbabilityRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createConcept(t, store, "A", "alice")
	b := createConcept(t, store, "B", "alice")
	c := createConcept(t, store, "C", "alice")
	d := createConcept(t, store, "D", "alice")

	low, err := store.AssertRelationship(ctx, a, b, entities.BuiltinIsA,
		valueobjects.MustFraction(1, 4), one(), nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	mid, err := store.AssertRelationship(ctx, a, c, entities.BuiltinIsA,
		valueobjects.MustFraction(1, 2), one(), nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	high, err := store.AssertRelationship(ctx, a, d, entities.BuiltinIsA,
		valueobjects.MustFraction(9, 10), one(), nil, valueobjects.NewCreator("alice"))
	require.NoError(t, err)

	min := valueobjects.MustFraction(1, 2)
	results, err := store.QueryRelationships(ctx, ports.RelationshipQuery{MinProbability: &min})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, mid, results[0].ID())
	assert.Equal(t, high, results[1].ID())

	max := valueobjects.MustFraction(1, 2)
	results, err = store.QueryRelationships(ctx, ports.RelationshipQuery{MaxProbability: &max})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, low, results[0].ID())
	assert.Equal(t, mid, results[1].ID())

	// Range comparison is exact: 2/4 clears a 1/2 minimum.
	minEq := valueobjects.MustFraction(2, 4)
	results, err = store.QueryRelationships(ctx, ports.RelationshipQuery{
		MinProbability: &minEq,
		MaxProbability: &max,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mid, results[0].ID())
}

func TestQueryRelationshipsByMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createConcept(t, store, "A", "alice")
	b := createConcept(t, store, "B", "alice")

	tagged, err := store.AssertRelationship(ctx, a, b, entities.BuiltinIsA, one(), one(),
		valueobjects.Metadata{{Key: "source", Value: "manual"}}, valueobjects.NewCreator("alice"))
	require.NoError(t, err)
	_, err = store.AssertRelationship(ctx, b, a, entities.BuiltinHasA, one(), one(), nil,
		valueobjects.NewCreator("alice"))
	require.NoError(t, err)

	results, err := store.QueryRelationships(ctx, ports.RelationshipQuery{
		Metadata: valueobjects.Metadata{{Key: "source", Value: "manual"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged, results[0].ID())
}
