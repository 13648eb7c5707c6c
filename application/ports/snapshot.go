package ports

import (
	"time"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
)

// The snapshot types flatten the store's three mappings into ordered
// (id, record) sequences plus the three identifier counters. The runtime
// mappings are the source of truth at steady state; these records are
// authoritative only across the shutdown/startup boundary.

// ConceptRecord is the flat form of a concept. Adjacency caches are not
// persisted; they are rebuilt from the relationship records on restore.
type ConceptRecord struct {
	ID          uint64                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Metadata    valueobjects.Metadata `json:"metadata,omitempty"`
	Creator     valueobjects.Creator  `json:"creator"`
	CreatedAt   time.Time             `json:"created_at"`
	ModifiedAt  time.Time             `json:"modified_at"`
}

// RelationshipRecord is the flat form of a relationship.
type RelationshipRecord struct {
	ID          uint64                `json:"id"`
	From        uint64                `json:"from"`
	To          uint64                `json:"to"`
	Type        uint64                `json:"type"`
	Probability valueobjects.Fraction `json:"probability"`
	Confidence  valueobjects.Fraction `json:"confidence"`
	Metadata    valueobjects.Metadata `json:"metadata,omitempty"`
	Creator     valueobjects.Creator  `json:"creator"`
	CreatedAt   time.Time             `json:"created_at"`
}

// TypeRecord is the flat form of a relationship type.
type TypeRecord struct {
	ID          uint64                         `json:"id"`
	Name        string                         `json:"name"`
	Description string                         `json:"description,omitempty"`
	Logical     entities.LogicalProperties     `json:"logical"`
	Inheritance entities.InheritanceProperties `json:"inheritance"`
	Rules       []entities.ValidationRule      `json:"rules,omitempty"`
	Status      entities.TypeStatus            `json:"status"`
	Metadata    valueobjects.Metadata          `json:"metadata,omitempty"`
	Creator     valueobjects.Creator           `json:"creator"`
	CreatedAt   time.Time                      `json:"created_at"`
}

// Counters are the three monotonic identifier counters.
type Counters struct {
	NextConcept      uint64 `json:"next_concept"`
	NextRelationship uint64 `json:"next_relationship"`
	NextType         uint64 `json:"next_type"`
}

// SnapshotState is one complete flattened store image. The sequences are in
// insertion order.
type SnapshotState struct {
	Concepts      []ConceptRecord      `json:"concepts"`
	Relationships []RelationshipRecord `json:"relationships"`
	Types         []TypeRecord         `json:"types"`
	Counters      Counters             `json:"counters"`
}
