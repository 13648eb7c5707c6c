package valueobjects

import "strconv"

// Entity identifiers are opaque non-negative integers assigned monotonically
// by the store. They are never reused, even after a type is deprecated.

// ConceptID identifies a concept.
type ConceptID uint64

// Uint64 returns the raw identifier.
func (id ConceptID) Uint64() uint64 { return uint64(id) }

// String renders the identifier in decimal.
func (id ConceptID) String() string { return strconv.FormatUint(uint64(id), 10) }

// RelationshipID identifies a relationship.
type RelationshipID uint64

// Uint64 returns the raw identifier.
func (id RelationshipID) Uint64() uint64 { return uint64(id) }

// String renders the identifier in decimal.
func (id RelationshipID) String() string { return strconv.FormatUint(uint64(id), 10) }

// TypeID identifies a relationship type.
type TypeID uint64

// Uint64 returns the raw identifier.
func (id TypeID) Uint64() uint64 { return uint64(id) }

// String renders the identifier in decimal.
func (id TypeID) String() string { return strconv.FormatUint(uint64(id), 10) }
