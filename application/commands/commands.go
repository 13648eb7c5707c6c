// Package commands defines the mutating operations of the concept base.
// Every command carries the authenticated principal, which the handlers bind
// as the record's creator.
package commands

import (
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// FractionInput is a raw numerator/denominator pair from the wire. It is
// converted to a Fraction, and range-checked, by the handler.
type FractionInput struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// CreateConceptCommand creates a concept.
type CreateConceptCommand struct {
	Principal   string
	Name        string
	Description *string
	Metadata    valueobjects.Metadata
}

// Validate implements bus.Command.
func (c CreateConceptCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	if c.Name == "" {
		return pkgerrors.NewValidationError("EMPTY_NAME", "concept name cannot be empty")
	}
	return nil
}

// UpdateConceptCommand patches a concept; only set fields change.
type UpdateConceptCommand struct {
	Principal   string
	ConceptID   uint64
	Name        *string
	Description *string
	Metadata    valueobjects.Metadata
	HasMetadata bool
}

// Validate implements bus.Command.
func (c UpdateConceptCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	return nil
}

// CreateRelationshipTypeCommand registers a new relationship type.
type CreateRelationshipTypeCommand struct {
	Principal   string
	Name        string
	Description *string
	Logical     entities.LogicalProperties
	Inheritance entities.InheritanceProperties
	Rules       []entities.ValidationRule
	Metadata    valueobjects.Metadata
}

// Validate implements bus.Command.
func (c CreateRelationshipTypeCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	if c.Name == "" {
		return pkgerrors.NewValidationError("EMPTY_NAME", "relationship type name cannot be empty")
	}
	return nil
}

// DeprecateRelationshipTypeCommand transitions a type to deprecated.
type DeprecateRelationshipTypeCommand struct {
	Principal  string
	TypeID     uint64
	ReplacedBy *uint64
	Reason     string
}

// Validate implements bus.Command.
func (c DeprecateRelationshipTypeCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	return nil
}

// AssertRelationshipCommand asserts a typed, weighted edge.
type AssertRelationshipCommand struct {
	Principal   string
	From        uint64
	To          uint64
	Type        uint64
	Probability FractionInput
	Confidence  FractionInput
	Metadata    valueobjects.Metadata
}

// Validate implements bus.Command.
func (c AssertRelationshipCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	return nil
}

// UpdateRelationshipCommand patches a relationship.
type UpdateRelationshipCommand struct {
	Principal      string
	RelationshipID uint64
	Probability    *FractionInput
	Metadata       valueobjects.Metadata
	HasMetadata    bool
}

// Validate implements bus.Command.
func (c UpdateRelationshipCommand) Validate() error {
	if c.Principal == "" {
		return pkgerrors.NewValidationError("MISSING_PRINCIPAL", "caller principal is required")
	}
	return nil
}
