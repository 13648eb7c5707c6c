package ports

import (
	"context"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
)

// ConceptQuery filters concepts. Nil fields match everything; the populated
// predicates are AND-combined.
type ConceptQuery struct {
	// NameContains matches by exact, case-sensitive substring.
	NameContains *string
	// Metadata pairs that must all be present exactly.
	Metadata valueobjects.Metadata
	// Creator matches the record's creator principal exactly.
	Creator *string
}

// RelationshipQuery filters relationships. Nil fields match everything.
type RelationshipQuery struct {
	From           *valueobjects.ConceptID
	To             *valueobjects.ConceptID
	Type           *valueobjects.TypeID
	Creator        *string
	MinProbability *valueobjects.Fraction
	MaxProbability *valueobjects.Fraction
	Metadata       valueobjects.Metadata
}

// ConceptPatch carries the updatable concept fields. Nil means unchanged.
type ConceptPatch struct {
	Name        *string
	Description *string
	Metadata    valueobjects.Metadata
	HasMetadata bool
}

// RelationshipPatch carries the updatable relationship fields.
type RelationshipPatch struct {
	Probability *valueobjects.Fraction
	Metadata    valueobjects.Metadata
	HasMetadata bool
}

// ConceptBase is the coarse-grained store contract the application layer
// programs against. All reads return deep snapshots; callers borrow records
// by identifier, never by reference into internal storage.
type ConceptBase interface {
	CreateConcept(ctx context.Context, name, description string, metadata valueobjects.Metadata, creator valueobjects.Creator) (valueobjects.ConceptID, error)
	UpdateConcept(ctx context.Context, id valueobjects.ConceptID, patch ConceptPatch, principal string) error
	GetConcept(ctx context.Context, id valueobjects.ConceptID) (*entities.Concept, error)
	QueryConcepts(ctx context.Context, q ConceptQuery) ([]*entities.Concept, error)

	CreateRelationshipType(ctx context.Context, name, description string, logical entities.LogicalProperties, inheritance entities.InheritanceProperties, rules []entities.ValidationRule, metadata valueobjects.Metadata, creator valueobjects.Creator) (valueobjects.TypeID, error)
	GetRelationshipType(ctx context.Context, id valueobjects.TypeID) (*entities.RelationshipType, error)
	DeprecateRelationshipType(ctx context.Context, id valueobjects.TypeID, replacedBy *valueobjects.TypeID, reason string) error

	AssertRelationship(ctx context.Context, from, to valueobjects.ConceptID, typeID valueobjects.TypeID, probability, confidence valueobjects.Fraction, metadata valueobjects.Metadata, creator valueobjects.Creator) (valueobjects.RelationshipID, error)
	UpdateRelationship(ctx context.Context, id valueobjects.RelationshipID, patch RelationshipPatch, principal string) error
	GetRelationship(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error)
	QueryRelationships(ctx context.Context, q RelationshipQuery) ([]*entities.Relationship, error)
}

// SnapshotStore persists a flattened store image across lifecycle boundaries.
type SnapshotStore interface {
	Save(ctx context.Context, state *SnapshotState) error
	Load(ctx context.Context) (*SnapshotState, error)
	Close() error
}
