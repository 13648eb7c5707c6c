// Package queries defines the read-side operations. Queries carry no
// authentication requirement.
package queries

import (
	"conceptbase/application/commands"
	"conceptbase/domain/core/valueobjects"
)

// GetConceptQuery fetches one concept by id.
type GetConceptQuery struct {
	ConceptID uint64
}

// QueryConceptsQuery filters concepts; nil fields match everything.
type QueryConceptsQuery struct {
	NameContains *string
	Metadata     valueobjects.Metadata
	Creator      *string
}

// GetRelationshipTypeQuery fetches one relationship type by id.
type GetRelationshipTypeQuery struct {
	TypeID uint64
}

// GetRelationshipQuery fetches one relationship by id.
type GetRelationshipQuery struct {
	RelationshipID uint64
}

// QueryRelationshipsQuery filters relationships; nil fields match everything.
type QueryRelationshipsQuery struct {
	From           *uint64
	To             *uint64
	Type           *uint64
	Creator        *string
	MinProbability *commands.FractionInput
	MaxProbability *commands.FractionInput
	Metadata       valueobjects.Metadata
}

// InferRelationshipsQuery runs the inference engine from a starting concept.
// Nil optional fields mean unspecified: the type defaults to IS-A, the depth
// is unbounded, and the thresholds default to zero.
type InferRelationshipsQuery struct {
	Start          uint64
	Type           *uint64
	MaxDepth       *int
	MinProbability *commands.FractionInput
	MinConfidence  *commands.FractionInput
}
