package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/application"
)

type materializationService interface {
	Run(ctx context.Context, params application.MaterializationParams) (application.MaterializationResult, error)
}

// MaterializationHandler triggers materialization runs on demand. The same
// service backs the scheduled runs registered in cmd/opsroster.
type MaterializationHandler struct {
	service   materializationService
	defaults  application.MaterializationParams
	responder responder
}

func NewMaterializationHandler(service materializationService, defaults application.MaterializationParams, logger zerolog.Logger) *MaterializationHandler {
	return &MaterializationHandler{
		service:   service,
		defaults:  defaults,
		responder: newResponder(logger),
	}
}

type materializationRequest struct {
	HorizonDays *int    `json:"horizon_days"`
	Timezone    *string `json:"timezone"`
}

func (h *MaterializationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params := h.defaults

	var req materializationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.HorizonDays != nil {
		params.HorizonDays = *req.HorizonDays
	}
	if req.Timezone != nil {
		params.Timezone = *req.Timezone
	}

	result, err := h.service.Run(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}
