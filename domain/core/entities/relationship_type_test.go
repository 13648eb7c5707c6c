package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

func newTestType(t *testing.T, logical LogicalProperties) *RelationshipType {
	t.Helper()
	relType, err := NewRelationshipType(
		7, "RELATED-TO", "test type", logical,
		InheritanceProperties{Inheritable: true, Mode: CombineMultiply},
		nil, nil, valueobjects.NewCreator("alice"),
	)
	require.NoError(t, err)
	return relType
}

func TestNewRelationshipTypeRejectsContradictoryLaws(t *testing.T) {
	_, err := NewRelationshipType(
		1, "BROKEN", "", LogicalProperties{Reflexive: true, Irreflexive: true},
		InheritanceProperties{}, nil, nil, valueobjects.NewCreator("alice"),
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewRelationshipTypeRejectsEmptyName(t *testing.T) {
	_, err := NewRelationshipType(
		1, "", "", LogicalProperties{},
		InheritanceProperties{}, nil, nil, valueobjects.NewCreator("alice"),
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewRelationshipTypeDefaultsCombinationMode(t *testing.T) {
	relType, err := NewRelationshipType(
		1, "LINKED", "", LogicalProperties{},
		InheritanceProperties{Inheritable: true}, nil, nil, valueobjects.NewCreator("alice"),
	)
	require.NoError(t, err)
	assert.Equal(t, CombineMultiply, relType.Inheritance().Mode)
}

func TestDeprecate(t *testing.T) {
	relType := newTestType(t, LogicalProperties{Transitive: true})
	replacement := valueobjects.TypeID(9)

	require.False(t, relType.IsDeprecated())
	require.NoError(t, relType.Deprecate(&replacement, "superseded"))

	assert.True(t, relType.IsDeprecated())
	status := relType.Status()
	assert.Equal(t, StatusDeprecated, status.Kind)
	require.NotNil(t, status.ReplacedBy)
	assert.Equal(t, replacement, *status.ReplacedBy)
	assert.Equal(t, "superseded", status.Reason)

	// Deprecating twice is an invalid operation; the type is never removed.
	err := relType.Deprecate(nil, "again")
	assert.True(t, pkgerrors.IsInvalidOperation(err))
}

func TestRelationshipTypeCloneIsDeep(t *testing.T) {
	relType, err := NewRelationshipType(
		3, "TAGGED", "", LogicalProperties{Symmetric: true},
		InheritanceProperties{Mode: CombineMinimum},
		[]ValidationRule{{Kind: RuleRequiredMetadata, Keys: []string{"source"}}},
		valueobjects.Metadata{{Key: "origin", Value: "test"}},
		valueobjects.NewCreator("alice"),
	)
	require.NoError(t, err)

	clone := relType.Clone()
	clone.Rules()[0].Keys[0] = "changed"

	assert.Equal(t, "source", relType.Rules()[0].Keys[0])
	assert.Equal(t, relType.Name(), clone.Name())
	assert.Equal(t, CombineMinimum, clone.Inheritance().Mode)
}
