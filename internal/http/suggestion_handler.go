package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/application"
)

type recommendationService interface {
	Suggest(ctx context.Context, shiftID string) (application.Recommendation, error)
}

// SuggestionHandler serves the ranked candidate list for an open shift.
type SuggestionHandler struct {
	service   recommendationService
	responder responder
}

func NewSuggestionHandler(service recommendationService, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: service, responder: newResponder(logger)}
}

func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	shiftID, ok := ShiftIDFromContext(r.Context())
	if !ok || strings.TrimSpace(shiftID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidShiftID)
		return
	}

	recommendation, err := h.service.Suggest(r.Context(), shiftID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, recommendation)
}
