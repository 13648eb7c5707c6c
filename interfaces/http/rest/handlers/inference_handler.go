package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"conceptbase/application/commands"
	"conceptbase/application/queries"
	querybus "conceptbase/application/queries/bus"
	"conceptbase/domain/inference"
	"conceptbase/pkg/common"
	pkgerrors "conceptbase/pkg/errors"
	"conceptbase/pkg/observability"
	"conceptbase/pkg/utils"
)

// InferenceHandler serves the inference endpoint.
type InferenceHandler struct {
	queryBus *querybus.QueryBus
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewInferenceHandler creates the handler.
func NewInferenceHandler(queryBus *querybus.QueryBus, metrics *observability.Metrics, logger *zap.Logger) *InferenceHandler {
	return &InferenceHandler{queryBus: queryBus, metrics: metrics, logger: logger}
}

// InferRequest is the body of POST /infer. Absent optional fields mean
// unspecified: the type defaults to IS-A, depth is unbounded, thresholds
// default to zero.
type InferRequest struct {
	Start          uint64       `json:"start"`
	Type           *uint64      `json:"type,omitempty"`
	MaxDepth       *int         `json:"max_depth,omitempty" validate:"omitempty,min=1"`
	MinProbability *FractionDTO `json:"min_probability,omitempty"`
	MinConfidence  *FractionDTO `json:"min_confidence,omitempty"`
}

// Infer handles POST /infer.
func (h *InferenceHandler) Infer(w http.ResponseWriter, r *http.Request) {
	var req InferRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "MALFORMED_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(pkgerrors.KindValidation), "INVALID_REQUEST", err.Error())
		return
	}

	q := queries.InferRelationshipsQuery{
		Start:    req.Start,
		Type:     req.Type,
		MaxDepth: req.MaxDepth,
	}
	if req.MinProbability != nil {
		in := commands.FractionInput(*req.MinProbability)
		q.MinProbability = &in
	}
	if req.MinConfidence != nil {
		in := commands.FractionInput(*req.MinConfidence)
		q.MinConfidence = &in
	}

	result, err := h.queryBus.Execute(r.Context(), q)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	inferred := result.([]inference.InferredRelationship)
	h.metrics.InferenceEdges.Observe(float64(len(inferred)))
	if inferred == nil {
		inferred = []inference.InferredRelationship{}
	}
	common.RespondWithMeta(w, http.StatusOK, inferred, &common.MetaInfo{
		Pagination: common.SinglePage(len(inferred)),
	})
}
