package entities

import (
	"time"

	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// Well-known relationship type identifiers reserved by bootstrap.
const (
	BuiltinIsA        valueobjects.TypeID = 0
	BuiltinHasA       valueobjects.TypeID = 1
	BuiltinPartOf     valueobjects.TypeID = 2
	BuiltinPropertyOf valueobjects.TypeID = 3
)

// LogicalProperties are the four independent structural laws of a type.
// Only transitive and symmetric drive inference. At assertion time only
// irreflexive is checked (it rejects self-edges); reflexive has no effect
// there beyond excluding irreflexive.
type LogicalProperties struct {
	Transitive  bool `json:"transitive"`
	Symmetric   bool `json:"symmetric"`
	Reflexive   bool `json:"reflexive"`
	Irreflexive bool `json:"irreflexive"`
}

// CombinationMode selects how weights combine along an inheritance chain.
// Only MULTIPLY is exercised by the inference engine; the others are stored
// verbatim for future use.
type CombinationMode string

const (
	CombineMultiply CombinationMode = "MULTIPLY"
	CombineMinimum  CombinationMode = "MINIMUM"
	CombineMaximum  CombinationMode = "MAXIMUM"
	CombineOverride CombinationMode = "OVERRIDE"
)

// InheritanceProperties describe whether and how edges of this type propagate.
type InheritanceProperties struct {
	Inheritable bool            `json:"inheritable"`
	Mode        CombinationMode `json:"mode"`
}

// RuleKind tags a declarative validation rule.
type RuleKind string

const (
	RuleRequiredMetadata RuleKind = "required_metadata"
	RuleUniqueTarget     RuleKind = "unique_target"
	RuleNoSelfReference  RuleKind = "no_self_reference"
	RuleCustom           RuleKind = "custom"
)

// ValidationRule is one declarative predicate from the closed rule set. The
// populated fields depend on the kind: Keys for required_metadata; Name,
// Description, and ErrorCode for custom rules.
type ValidationRule struct {
	Kind        RuleKind `json:"kind"`
	Keys        []string `json:"keys,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
}

// StatusKind tags a relationship type's lifecycle state.
type StatusKind string

const (
	StatusActive     StatusKind = "active"
	StatusDeprecated StatusKind = "deprecated"
)

// TypeStatus is the lifecycle state with the deprecation payload. A
// deprecated type is retained so existing relationships stay interpretable;
// new assertions against it fail.
type TypeStatus struct {
	Kind       StatusKind           `json:"kind"`
	ReplacedBy *valueobjects.TypeID `json:"replaced_by,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

// RelationshipType is the schema object defining logical laws, inheritance
// behavior, and validation rules for a family of edges.
type RelationshipType struct {
	id          valueobjects.TypeID
	name        string
	description string
	metadata    valueobjects.Metadata
	logical     LogicalProperties
	inheritance InheritanceProperties
	rules       []ValidationRule
	status      TypeStatus
	creator     valueobjects.Creator
	createdAt   time.Time
}

// NewRelationshipType creates an active type. A type cannot be both reflexive
// and irreflexive.
func NewRelationshipType(
	id valueobjects.TypeID,
	name, description string,
	logical LogicalProperties,
	inheritance InheritanceProperties,
	rules []ValidationRule,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
) (*RelationshipType, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("EMPTY_NAME", "relationship type name cannot be empty")
	}
	if logical.Reflexive && logical.Irreflexive {
		return nil, pkgerrors.NewValidationError(
			"CONTRADICTORY_PROPERTIES",
			"a relationship type cannot be both reflexive and irreflexive",
		)
	}
	if inheritance.Mode == "" {
		inheritance.Mode = CombineMultiply
	}
	return &RelationshipType{
		id:          id,
		name:        name,
		description: description,
		metadata:    metadata.Clone(),
		logical:     logical,
		inheritance: inheritance,
		rules:       cloneRules(rules),
		status:      TypeStatus{Kind: StatusActive},
		creator:     creator,
		createdAt:   time.Now().UTC(),
	}, nil
}

// ReconstructRelationshipType rebuilds a type from persisted data.
func ReconstructRelationshipType(
	id valueobjects.TypeID,
	name, description string,
	logical LogicalProperties,
	inheritance InheritanceProperties,
	rules []ValidationRule,
	status TypeStatus,
	metadata valueobjects.Metadata,
	creator valueobjects.Creator,
	createdAt time.Time,
) *RelationshipType {
	return &RelationshipType{
		id:          id,
		name:        name,
		description: description,
		metadata:    metadata.Clone(),
		logical:     logical,
		inheritance: inheritance,
		rules:       cloneRules(rules),
		status:      status,
		creator:     creator,
		createdAt:   createdAt,
	}
}

// ID returns the type identifier.
func (t *RelationshipType) ID() valueobjects.TypeID { return t.id }

// Name returns the type name, unique among active types.
func (t *RelationshipType) Name() string { return t.name }

// Description returns the optional description.
func (t *RelationshipType) Description() string { return t.description }

// Metadata returns a copy of the ordered metadata.
func (t *RelationshipType) Metadata() valueobjects.Metadata { return t.metadata.Clone() }

// Logical returns the structural law flags.
func (t *RelationshipType) Logical() LogicalProperties { return t.logical }

// Inheritance returns the inheritance behavior.
func (t *RelationshipType) Inheritance() InheritanceProperties { return t.inheritance }

// Rules returns a copy of the ordered validation rules.
func (t *RelationshipType) Rules() []ValidationRule { return cloneRules(t.rules) }

// Status returns the lifecycle state.
func (t *RelationshipType) Status() TypeStatus { return t.status }

// Creator returns who created the type.
func (t *RelationshipType) Creator() valueobjects.Creator { return t.creator }

// CreatedAt returns the creation time.
func (t *RelationshipType) CreatedAt() time.Time { return t.createdAt }

// IsDeprecated reports whether the type no longer accepts assertions.
func (t *RelationshipType) IsDeprecated() bool {
	return t.status.Kind == StatusDeprecated
}

// Deprecate transitions the type to deprecated. Types are never removed.
func (t *RelationshipType) Deprecate(replacedBy *valueobjects.TypeID, reason string) error {
	if t.IsDeprecated() {
		return pkgerrors.NewInvalidOperationError("relationship type is already deprecated")
	}
	status := TypeStatus{Kind: StatusDeprecated, Reason: reason}
	if replacedBy != nil {
		id := *replacedBy
		status.ReplacedBy = &id
	}
	t.status = status
	return nil
}

// Clone returns a deep copy.
func (t *RelationshipType) Clone() *RelationshipType {
	status := t.status
	if t.status.ReplacedBy != nil {
		id := *t.status.ReplacedBy
		status.ReplacedBy = &id
	}
	return &RelationshipType{
		id:          t.id,
		name:        t.name,
		description: t.description,
		metadata:    t.metadata.Clone(),
		logical:     t.logical,
		inheritance: t.inheritance,
		rules:       cloneRules(t.rules),
		status:      status,
		creator:     t.creator,
		createdAt:   t.createdAt,
	}
}

func cloneRules(rules []ValidationRule) []ValidationRule {
	if rules == nil {
		return nil
	}
	out := make([]ValidationRule, len(rules))
	for i, r := range rules {
		out[i] = r
		if r.Keys != nil {
			out[i].Keys = append([]string(nil), r.Keys...)
		}
	}
	return out
}
