package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"conceptbase/application/commands"
	"conceptbase/application/commands/bus"
	"conceptbase/application/queries"
	querybus "conceptbase/application/queries/bus"
	"conceptbase/domain/core/entities"
	"conceptbase/domain/core/valueobjects"
	"conceptbase/pkg/auth"
	"conceptbase/pkg/common"
	pkgerrors "conceptbase/pkg/errors"
	"conceptbase/pkg/utils"
)

// RelationshipHandler serves the relationship endpoints.
type RelationshipHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRelationshipHandler creates the handler.
func NewRelationshipHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// FractionDTO is a fraction on the wire.
type FractionDTO struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator" validate:"required"`
}

// AssertRelationshipRequest is the body of POST /relationships.
type AssertRelationshipRequest struct {
	From        uint64        `json:"from"`
	To          uint64        `json:"to"`
	Type        uint64        `json:"type"`
	Probability FractionDTO   `json:"probability" validate:"required"`
	Confidence  FractionDTO   `json:"confidence" validate:"required"`
	Metadata    []MetadataDTO `json:"metadata,omitempty" validate:"dive"`
}

// AssertRelationship handles POST /relationships.
func (h *RelationshipHandler) AssertRelationship(w http.ResponseWriter, r *http.Request) {
	var req AssertRelationshipRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "MALFORMED_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "INVALID_REQUEST", err.Error())
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.KindPermissionDenied), "UNAUTHENTICATED", "missing caller identity")
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.AssertRelationshipCommand{
		Principal:   principal,
		From:        req.From,
		To:          req.To,
		Type:        req.Type,
		Probability: commands.FractionInput(req.Probability),
		Confidence:  commands.FractionInput(req.Confidence),
		Metadata:    metadataFromDTO(req.Metadata),
	})
	if err != nil {
		h.logger.Warn("assert relationship failed",
			zap.Uint64("from", req.From),
			zap.Uint64("to", req.To),
			zap.Uint64("type", req.Type),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	id := result.(valueobjects.RelationshipID)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{"id": id.Uint64()})
}

// UpdateRelationshipRequest is the body of PUT /relationships/{relationshipID}.
type UpdateRelationshipRequest struct {
	Probability *FractionDTO   `json:"probability,omitempty"`
	Metadata    *[]MetadataDTO `json:"metadata,omitempty"`
}

// UpdateRelationship handles PUT /relationships/{relationshipID}.
func (h *RelationshipHandler) UpdateRelationship(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "relationshipID")
	if !ok {
		return
	}
	var req UpdateRelationshipRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "MALFORMED_BODY", err.Error())
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.KindPermissionDenied), "UNAUTHENTICATED", "missing caller identity")
		return
	}

	cmd := commands.UpdateRelationshipCommand{
		Principal:      principal,
		RelationshipID: id,
	}
	if req.Probability != nil {
		p := commands.FractionInput(*req.Probability)
		cmd.Probability = &p
	}
	if req.Metadata != nil {
		cmd.Metadata = metadataFromDTO(*req.Metadata)
		cmd.HasMetadata = true
	}
	if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, nil)
}

// GetRelationship handles GET /relationships/{relationshipID}.
func (h *RelationshipHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "relationshipID")
	if !ok {
		return
	}
	result, err := h.queryBus.Execute(r.Context(), queries.GetRelationshipQuery{RelationshipID: id})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewRelationshipView(result.(*entities.Relationship)))
}

// QueryRelationships handles GET /relationships. Filters come from query
// parameters: from, to, type, creator, min_probability, max_probability
// (both "n/d"), and repeated metadata=key:value pairs.
func (h *RelationshipHandler) QueryRelationships(w http.ResponseWriter, r *http.Request) {
	q := queries.QueryRelationshipsQuery{
		Metadata: metadataFromParams(r.URL.Query()["metadata"]),
	}
	if v := r.URL.Query().Get("creator"); v != "" {
		q.Creator = &v
	}
	for param, target := range map[string]**uint64{
		"from": &q.From,
		"to":   &q.To,
		"type": &q.Type,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "INVALID_ID",
				param+" must be a non-negative integer")
			return
		}
		*target = &id
	}
	for param, target := range map[string]**commands.FractionInput{
		"min_probability": &q.MinProbability,
		"max_probability": &q.MaxProbability,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		input, err := parseFractionParam(raw)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		*target = input
	}

	result, err := h.queryBus.Execute(r.Context(), q)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	relationships := result.([]*entities.Relationship)
	views := make([]RelationshipView, 0, len(relationships))
	for _, rel := range relationships {
		views = append(views, NewRelationshipView(rel))
	}
	common.RespondWithMeta(w, http.StatusOK, views, &common.MetaInfo{
		Pagination: common.SinglePage(len(views)),
	})
}

func parseFractionParam(raw string) (*commands.FractionInput, error) {
	f, err := valueobjects.ParseFraction(raw)
	if err != nil {
		return nil, err
	}
	if !f.Numerator().IsUint64() || !f.Denominator().IsUint64() {
		return nil, pkgerrors.NewValidationError(pkgerrors.CodeFractionOutOfRange,
			"fraction components exceed 64 bits")
	}
	return &commands.FractionInput{
		Numerator:   f.Numerator().Uint64(),
		Denominator: f.Denominator().Uint64(),
	}, nil
}
