package handlers

import (
	"context"
	"fmt"

	"conceptbase/application/commands"
	"conceptbase/application/commands/bus"
	"conceptbase/application/ports"
	"conceptbase/domain/core/valueobjects"
)

// CreateConceptHandler creates concepts through the store.
type CreateConceptHandler struct {
	store ports.ConceptBase
}

// NewCreateConceptHandler creates the handler.
func NewCreateConceptHandler(store ports.ConceptBase) *CreateConceptHandler {
	return &CreateConceptHandler{store: store}
}

// Handle implements bus.CommandHandler. It returns the new concept id.
func (h *CreateConceptHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.CreateConceptCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	description := ""
	if c.Description != nil {
		description = *c.Description
	}
	return h.store.CreateConcept(ctx, c.Name, description, c.Metadata, valueobjects.NewCreator(c.Principal))
}

// UpdateConceptHandler patches concepts, creator-only.
type UpdateConceptHandler struct {
	store ports.ConceptBase
}

// NewUpdateConceptHandler creates the handler.
func NewUpdateConceptHandler(store ports.ConceptBase) *UpdateConceptHandler {
	return &UpdateConceptHandler{store: store}
}

// Handle implements bus.CommandHandler.
func (h *UpdateConceptHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.UpdateConceptCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	patch := ports.ConceptPatch{
		Name:        c.Name,
		Description: c.Description,
		Metadata:    c.Metadata,
		HasMetadata: c.HasMetadata,
	}
	if err := h.store.UpdateConcept(ctx, valueobjects.ConceptID(c.ConceptID), patch, c.Principal); err != nil {
		return nil, err
	}
	return nil, nil
}
