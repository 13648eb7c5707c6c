package handlers

import (
	"net/http"

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

// RelationshipTypeHandler serves the relationship type endpoints.
type RelationshipTypeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewRelationshipTypeHandler creates the handler.
func NewRelationshipTypeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *RelationshipTypeHandler {
	return &RelationshipTypeHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// ValidationRuleDTO is one declarative rule on the wire.
type ValidationRuleDTO struct {
	Kind        string   `json:"kind" validate:"required,oneof=required_metadata unique_target no_self_reference custom"`
	Keys        []string `json:"keys,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
}

// CreateRelationshipTypeRequest is the body of POST /relationship-types.
type CreateRelationshipTypeRequest struct {
	Name        string                         `json:"name" validate:"required"`
	Description *string                        `json:"description,omitempty"`
	Logical     entities.LogicalProperties     `json:"logical"`
	Inheritance entities.InheritanceProperties `json:"inheritance"`
	Rules       []ValidationRuleDTO            `json:"rules,omitempty" validate:"dive"`
	Metadata    []MetadataDTO                  `json:"metadata,omitempty" validate:"dive"`
}

// CreateRelationshipType handles POST /relationship-types.
func (h *RelationshipTypeHandler) CreateRelationshipType(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipTypeRequest
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

	rules := make([]entities.ValidationRule, 0, len(req.Rules))
	for _, dto := range req.Rules {
		rules = append(rules, entities.ValidationRule{
			Kind:        entities.RuleKind(dto.Kind),
			Keys:        dto.Keys,
			Name:        dto.Name,
			Description: dto.Description,
			ErrorCode:   dto.ErrorCode,
		})
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateRelationshipTypeCommand{
		Principal:   principal,
		Name:        req.Name,
		Description: req.Description,
		Logical:     req.Logical,
		Inheritance: req.Inheritance,
		Rules:       rules,
		Metadata:    metadataFromDTO(req.Metadata),
	})
	if err != nil {
		h.logger.Warn("create relationship type failed", zap.String("name", req.Name), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	id := result.(valueobjects.TypeID)
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{"id": id.Uint64()})
}

// GetRelationshipType handles GET /relationship-types/{typeID}.
func (h *RelationshipTypeHandler) GetRelationshipType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "typeID")
	if !ok {
		return
	}
	result, err := h.queryBus.Execute(r.Context(), queries.GetRelationshipTypeQuery{TypeID: id})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, NewRelationshipTypeView(result.(*entities.RelationshipType)))
}

// DeprecateRelationshipTypeRequest is the body of
// POST /relationship-types/{typeID}/deprecate.
type DeprecateRelationshipTypeRequest struct {
	ReplacedBy *uint64 `json:"replaced_by,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// DeprecateRelationshipType handles POST /relationship-types/{typeID}/deprecate.
func (h *RelationshipTypeHandler) DeprecateRelationshipType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "typeID")
	if !ok {
		return
	}
	var req DeprecateRelationshipTypeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "MALFORMED_BODY", err.Error())
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, string(pkgerrors.KindPermissionDenied), "UNAUTHENTICATED", "missing caller identity")
		return
	}

	if _, err := h.commandBus.Send(r.Context(), commands.DeprecateRelationshipTypeCommand{
		Principal:  principal,
		TypeID:     id,
		ReplacedBy: req.ReplacedBy,
		Reason:     req.Reason,
	}); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, nil)
}
