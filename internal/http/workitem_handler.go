package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/opsroster/internal/application"
)

type workItemService interface {
	ListPendingWork(ctx context.Context) ([]application.WorkItemView, error)
}

// WorkItemHandler exposes the pending work queue.
type WorkItemHandler struct {
	service   workItemService
	responder responder
}

func NewWorkItemHandler(service workItemService, logger zerolog.Logger) *WorkItemHandler {
	return &WorkItemHandler{service: service, responder: newResponder(logger)}
}

type workItemListResponse struct {
	WorkItems []application.WorkItemView `json:"work_items"`
}

func (h *WorkItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" && status != "pending" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("only status=pending is supported"))
		return
	}

	items, err := h.service.ListPendingWork(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if items == nil {
		items = []application.WorkItemView{}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workItemListResponse{WorkItems: items})
}
