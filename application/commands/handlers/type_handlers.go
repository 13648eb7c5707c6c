package handlers

import (
	"context"
	"fmt"

	"conceptbase/application/commands"
	"conceptbase/application/commands/bus"
	"conceptbase/application/ports"
	"conceptbase/domain/core/valueobjects"
)

// CreateRelationshipTypeHandler registers relationship types.
type CreateRelationshipTypeHandler struct {
	store ports.ConceptBase
}

// NewCreateRelationshipTypeHandler creates the handler.
func NewCreateRelationshipTypeHandler(store ports.ConceptBase) *CreateRelationshipTypeHandler {
	return &CreateRelationshipTypeHandler{store: store}
}

// Handle implements bus.CommandHandler. It returns the new type id.
func (h *CreateRelationshipTypeHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.CreateRelationshipTypeCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	description := ""
	if c.Description != nil {
		description = *c.Description
	}
	return h.store.CreateRelationshipType(
		ctx, c.Name, description, c.Logical, c.Inheritance, c.Rules, c.Metadata,
		valueobjects.NewCreator(c.Principal),
	)
}

// DeprecateRelationshipTypeHandler transitions types to deprecated.
type DeprecateRelationshipTypeHandler struct {
	store ports.ConceptBase
}

// NewDeprecateRelationshipTypeHandler creates the handler.
func NewDeprecateRelationshipTypeHandler(store ports.ConceptBase) *DeprecateRelationshipTypeHandler {
	return &DeprecateRelationshipTypeHandler{store: store}
}

// Handle implements bus.CommandHandler.
func (h *DeprecateRelationshipTypeHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.DeprecateRelationshipTypeCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	var replacedBy *valueobjects.TypeID
	if c.ReplacedBy != nil {
		id := valueobjects.TypeID(*c.ReplacedBy)
		replacedBy = &id
	}
	if err := h.store.DeprecateRelationshipType(ctx, valueobjects.TypeID(c.TypeID), replacedBy, c.Reason); err != nil {
		return nil, err
	}
	return nil, nil
}
