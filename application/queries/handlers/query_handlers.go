package handlers

import (
	"context"
	"fmt"

	"conceptbase/application/commands"
	"conceptbase/application/ports"
	"conceptbase/application/queries"
	"conceptbase/application/queries/bus"
	"conceptbase/domain/core/valueobjects"
	"conceptbase/domain/inference"
)

// GetConceptHandler fetches one concept.
type GetConceptHandler struct {
	store ports.ConceptBase
}

// NewGetConceptHandler creates the handler.
func NewGetConceptHandler(store ports.ConceptBase) *GetConceptHandler {
	return &GetConceptHandler{store: store}
}

// Handle implements bus.QueryHandler.
func (h *GetConceptHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetConceptQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	return h.store.GetConcept(ctx, valueobjects.ConceptID(query.ConceptID))
}

// QueryConceptsHandler filters concepts.
type QueryConceptsHandler struct {
	store ports.ConceptBase
}

// NewQueryConceptsHandler creates the handler.
func NewQueryConceptsHandler(store ports.ConceptBase) *QueryConceptsHandler {
	return &QueryConceptsHandler{store: store}
}

// Handle implements bus.QueryHandler.
func (h *QueryConceptsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.QueryConceptsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	return h.store.QueryConcepts(ctx, ports.ConceptQuery{
		NameContains: query.NameContains,
		Metadata:     query.Metadata,
		Creator:      query.Creator,
	})
}

// GetRelationshipTypeHandler fetches one relationship type.
type GetRelationshipTypeHandler struct {
	store ports.ConceptBase
}

// NewGetRelationshipTypeHandler creates the handler.
func NewGetRelationshipTypeHandler(store ports.ConceptBase) *GetRelationshipTypeHandler {
	return &GetRelationshipTypeHandler{store: store}
}

// Handle implements bus.QueryHandler.
func (h *GetRelationshipTypeHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetRelationshipTypeQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	return h.store.GetRelationshipType(ctx, valueobjects.TypeID(query.TypeID))
}

// GetRelationshipHandler fetches one relationship.
type GetRelationshipHandler struct {
	store ports.ConceptBase
}

// NewGetRelationshipHandler creates the handler.
func NewGetRelationshipHandler(store ports.ConceptBase) *GetRelationshipHandler {
	return &GetRelationshipHandler{store: store}
}

// Handle implements bus.QueryHandler.
func (h *GetRelationshipHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetRelationshipQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	return h.store.GetRelationship(ctx, valueobjects.RelationshipID(query.RelationshipID))
}

// QueryRelationshipsHandler filters relationships.
type QueryRelationshipsHandler struct {
	store ports.ConceptBase
}

// NewQueryRelationshipsHandler creates the handler.
func NewQueryRelationshipsHandler(store ports.ConceptBase) *QueryRelationshipsHandler {
	return &QueryRelationshipsHandler{store: store}
}

// Handle implements bus.QueryHandler.
func (h *QueryRelationshipsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.QueryRelationshipsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	filter := ports.RelationshipQuery{
		Creator:  query.Creator,
		Metadata: query.Metadata,
	}
	if query.From != nil {
		id := valueobjects.ConceptID(*query.From)
		filter.From = &id
	}
	if query.To != nil {
		id := valueobjects.ConceptID(*query.To)
		filter.To = &id
	}
	if query.Type != nil {
		id := valueobjects.TypeID(*query.Type)
		filter.Type = &id
	}
	if query.MinProbability != nil {
		f, err := valueobjects.NewFraction(query.MinProbability.Numerator, query.MinProbability.Denominator)
		if err != nil {
			return nil, err
		}
		filter.MinProbability = &f
	}
	if query.MaxProbability != nil {
		f, err := valueobjects.NewFraction(query.MaxProbability.Numerator, query.MaxProbability.Denominator)
		if err != nil {
			return nil, err
		}
		filter.MaxProbability = &f
	}
	return h.store.QueryRelationships(ctx, filter)
}

// InferRelationshipsHandler runs the inference engine.
type InferRelationshipsHandler struct {
	engine *inference.Engine
}

// NewInferRelationshipsHandler creates the handler.
func NewInferRelationshipsHandler(engine *inference.Engine) *InferRelationshipsHandler {
	return &InferRelationshipsHandler{engine: engine}
}

// Handle implements bus.QueryHandler.
func (h *InferRelationshipsHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.InferRelationshipsQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
	infQuery := inference.Query{
		Start:    valueobjects.ConceptID(query.Start),
		MaxDepth: query.MaxDepth,
	}
	if query.Type != nil {
		id := valueobjects.TypeID(*query.Type)
		infQuery.Type = &id
	}
	if query.MinProbability != nil {
		f, err := fractionFromInput(*query.MinProbability)
		if err != nil {
			return nil, err
		}
		infQuery.MinProbability = &f
	}
	if query.MinConfidence != nil {
		f, err := fractionFromInput(*query.MinConfidence)
		if err != nil {
			return nil, err
		}
		infQuery.MinConfidence = &f
	}
	return h.engine.Infer(ctx, infQuery)
}

func fractionFromInput(in commands.FractionInput) (valueobjects.Fraction, error) {
	return valueobjects.NewFraction(in.Numerator, in.Denominator)
}
