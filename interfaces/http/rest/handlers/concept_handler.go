package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
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

const maxBodyBytes = 1 << 20

// ConceptHandler serves the concept endpoints.
type ConceptHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewConceptHandler creates the handler.
func NewConceptHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *ConceptHandler {
	return &ConceptHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// MetadataDTO is a metadata pair on the wire.
type MetadataDTO struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// CreateConceptRequest is the body of POST /concepts.
type CreateConceptRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description *string       `json:"description,omitempty"`
	Metadata    []MetadataDTO `json:"metadata,omitempty" validate:"dive"`
}

// CreateConcept handles POST /concepts.
func (h *ConceptHandler) CreateConcept(w http.ResponseWriter, r *http.Request) {
	var req CreateConceptRequest
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

	result, err := h.commandBus.Send(r.Context(), commands.CreateConceptCommand{
		Principal:   principal,
		Name:        req.Name,
		Description: req.Description,
		Metadata:    metadataFromDTO(req.Metadata),
	})
	if err != nil {
		h.logger.Warn("create concept failed", zap.String("name", req.Name), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	id := result.(valueobjects.ConceptID)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{"id": id.Uint64()})
}

// UpdateConceptRequest is the body of PUT /concepts/{conceptID}.
type UpdateConceptRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    *[]MetadataDTO `json:"metadata,omitempty"`
}

// UpdateConcept handles PUT /concepts/{conceptID}.
func (h *ConceptHandler) UpdateConcept(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "conceptID")
	if !ok {
		return
	}
	var req UpdateConceptRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "MALFORMED_BODY", err.Error())
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.KindPermissionDenied), "UNAUTHENTICATED", "missing caller identity")
		return
	}

	cmd := commands.UpdateConceptCommand{
		Principal:   principal,
		ConceptID:   id,
		Name:        req.Name,
		Description: req.Description,
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

// GetConcept handles GET /concepts/{conceptID}.
func (h *ConceptHandler) GetConcept(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "conceptID")
	if !ok {
		return
	}
	result, err := h.queryBus.Execute(r.Context(), queries.GetConceptQuery{ConceptID: id})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewConceptView(result.(*entities.Concept)))
}

// QueryConcepts handles GET /concepts. Filters come from query parameters:
// name_contains, creator, and repeated metadata=key:value pairs.
func (h *ConceptHandler) QueryConcepts(w http.ResponseWriter, r *http.Request) {
	q := queries.QueryConceptsQuery{
		Metadata: metadataFromParams(r.URL.Query()["metadata"]),
	}
	if v := r.URL.Query().Get("name_contains"); v != "" {
		q.NameContains = &v
	}
	if v := r.URL.Query().Get("creator"); v != "" {
		q.Creator = &v
	}

	result, err := h.queryBus.Execute(r.Context(), q)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	concepts := result.([]*entities.Concept)
	views := make([]ConceptView, 0, len(concepts))
	for _, c := range concepts {
		views = append(views, NewConceptView(c))
	}
	common.RespondWithMeta(w, http.StatusOK, views, &common.MetaInfo{
		Pagination: common.SinglePage(len(views)),
	})
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "INVALID_ID",
			"identifier must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func metadataFromDTO(pairs []MetadataDTO) valueobjects.Metadata {
	if len(pairs) == 0 {
		return nil
	}
	out := make(valueobjects.Metadata, len(pairs))
	for i, p := range pairs {
		out[i] = valueobjects.MetadataEntry{Key: p.Key, Value: p.Value}
	}
	return out
}
