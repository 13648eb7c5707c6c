package validators

import (
	"fmt"

	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// RelationshipLookup is the slice of the store the validator needs to enforce
// uniqueness rules.
type RelationshipLookup interface {
	// HasRelationship reports whether a relationship of the given type
	// already exists from source to target.
	HasRelationship(from, to valueobjects.ConceptID, typeID valueobjects.TypeID) bool
}

// RelationshipValidator enforces relationship-type laws at assertion time.
// It runs three stages in order and stops at the first failure: the type
// status check, the type's declarative rules, and the logical laws.
type RelationshipValidator struct{}

// NewRelationshipValidator creates a validator.
func NewRelationshipValidator() *RelationshipValidator {
	return &RelationshipValidator{}
}

// Validate checks a candidate relationship against its declared type.
func (v *RelationshipValidator) Validate(
	candidate *entities.Relationship,
	relType *entities.RelationshipType,
	existing RelationshipLookup,
) error {
	if err := v.checkStatus(relType); err != nil {
		return err
	}
	if err := v.applyRules(candidate, relType, existing); err != nil {
		return err
	}
	return v.applyLogicalLaws(candidate, relType)
}

// checkStatus rejects assertions against deprecated types, naming the
// replacement when one was recorded.
func (v *RelationshipValidator) checkStatus(relType *entities.RelationshipType) error {
	if !relType.IsDeprecated() {
		return nil
	}
	err := pkgerrors.NewValidationError(
		pkgerrors.CodeDeprecatedType,
		fmt.Sprintf("relationship type %q is deprecated", relType.Name()),
	)
	status := relType.Status()
	details := map[string]interface{}{"type_id": relType.ID().Uint64()}
	if status.ReplacedBy != nil {
		details["replaced_by"] = status.ReplacedBy.Uint64()
	}
	if status.Reason != "" {
		details["reason"] = status.Reason
	}
	return err.WithDetails(details)
}

// applyRules runs the type's declarative rules in declaration order.
func (v *RelationshipValidator) applyRules(
	candidate *entities.Relationship,
	relType *entities.RelationshipType,
	existing RelationshipLookup,
) error {
	for _, rule := range relType.Rules() {
		switch rule.Kind {
		case entities.RuleRequiredMetadata:
			if err := v.checkRequiredMetadata(candidate, rule.Keys); err != nil {
				return err
			}
		case entities.RuleNoSelfReference:
			if candidate.From() == candidate.To() {
				return pkgerrors.NewValidationError(
					pkgerrors.CodeSelfReference,
					"relationship type forbids self references",
				)
			}
		case entities.RuleUniqueTarget:
			if existing.HasRelationship(candidate.From(), candidate.To(), candidate.TypeID()) {
				return pkgerrors.NewValidationError(
					pkgerrors.CodeUniqueTarget,
					fmt.Sprintf(
						"a %q relationship from concept %s to concept %s already exists",
						relType.Name(), candidate.From(), candidate.To(),
					),
				)
			}
		case entities.RuleCustom:
			// Custom rules are a placeholder for user-defined extensions and
			// always fail with the rule's own code.
			return pkgerrors.NewValidationError(
				rule.ErrorCode,
				fmt.Sprintf("custom rule %q: %s", rule.Name, rule.Description),
			)
		default:
			return pkgerrors.NewSystemError(
				fmt.Sprintf("unknown validation rule kind %q on type %s", rule.Kind, relType.ID()),
				nil,
			)
		}
	}
	return nil
}

func (v *RelationshipValidator) checkRequiredMetadata(candidate *entities.Relationship, keys []string) error {
	metadata := candidate.Metadata()
	for _, key := range keys {
		if !metadata.Has(key) {
			return pkgerrors.NewFieldValidationError(
				pkgerrors.CodeRequiredMetadata,
				fmt.Sprintf("relationship metadata is missing required key %q", key),
				"metadata", "required key", key,
			)
		}
	}
	return nil
}

// applyLogicalLaws enforces the structural laws derived from the type's
// boolean properties. Symmetric and transitive have no assertion-time effect;
// they drive inference only.
func (v *RelationshipValidator) applyLogicalLaws(
	candidate *entities.Relationship,
	relType *entities.RelationshipType,
) error {
	logical := relType.Logical()
	if logical.Irreflexive && candidate.From() == candidate.To() {
		return pkgerrors.NewValidationError(
			pkgerrors.CodeIrreflexiveViolation,
			fmt.Sprintf("irreflexive type %q cannot relate concept %s to itself",
				relType.Name(), candidate.From()),
		)
	}
	return nil
}
