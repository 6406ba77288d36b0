package http

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Pinger reports whether the underlying storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes with a storage ping.
type HealthHandler struct {
	storage   Pinger
	responder responder
}

func NewHealthHandler(storage Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, responder: newResponder(logger)}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if h.storage != nil {
		if err := h.storage.Ping(r.Context()); err != nil {
			logger := h.responder.loggerFor(r.Context())
			logger.Error().Err(err).Msg("storage ping failed")
			h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}
