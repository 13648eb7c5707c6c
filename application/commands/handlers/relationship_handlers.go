package handlers

import (
	"context"
	"fmt"

	"conceptbase/application/commands"
	"conceptbase/application/commands/bus"
	"conceptbase/application/ports"
	"conceptbase/domain/core/valueobjects"
	pkgerrors "conceptbase/pkg/errors"
)

// AssertRelationshipHandler runs the assertion pipeline through the store.
type AssertRelationshipHandler struct {
	store ports.ConceptBase
}

// NewAssertRelationshipHandler creates the handler.
func NewAssertRelationshipHandler(store ports.ConceptBase) *AssertRelationshipHandler {
	return &AssertRelationshipHandler{store: store}
}

// Handle implements bus.CommandHandler. It returns the new relationship id.
// A probability outside [0,1] is a validation error; an out-of-range
// confidence is reported as its own kind.
func (h *AssertRelationshipHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.AssertRelationshipCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	probability, err := valueobjects.NewFraction(c.Probability.Numerator, c.Probability.Denominator)
	if err != nil {
		return nil, err
	}
	confidence, err := valueobjects.NewFraction(c.Confidence.Numerator, c.Confidence.Denominator)
	if err != nil {
		return nil, pkgerrors.NewInvalidConfidenceError(
			fmt.Sprintf("%d/%d", c.Confidence.Numerator, c.Confidence.Denominator),
			"confidence must be a fraction in [0,1]",
		)
	}
	return h.store.AssertRelationship(
		ctx,
		valueobjects.ConceptID(c.From),
		valueobjects.ConceptID(c.To),
		valueobjects.TypeID(c.Type),
		probability, confidence, c.Metadata,
		valueobjects.NewCreator(c.Principal),
	)
}

// UpdateRelationshipHandler patches relationships, creator-only.
type UpdateRelationshipHandler struct {
	store ports.ConceptBase
}

// NewUpdateRelationshipHandler creates the handler.
func NewUpdateRelationshipHandler(store ports.ConceptBase) *UpdateRelationshipHandler {
	return &UpdateRelationshipHandler{store: store}
}

// Handle implements bus.CommandHandler.
func (h *UpdateRelationshipHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.UpdateRelationshipCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	patch := ports.RelationshipPatch{
		Metadata:    c.Metadata,
		HasMetadata: c.HasMetadata,
	}
	if c.Probability != nil {
		probability, err := valueobjects.NewFraction(c.Probability.Numerator, c.Probability.Denominator)
		if err != nil {
			return nil, err
		}
		patch.Probability = &probability
	}
	if err := h.store.UpdateRelationship(ctx, valueobjects.RelationshipID(c.RelationshipID), patch, c.Principal); err != nil {
		return nil, err
	}
	return nil, nil
}
