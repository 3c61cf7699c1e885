package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/middleware"
	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/metrics"
)

// PinHandler handles pinned item endpoints.
type PinHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewPinHandler creates a new pin handler.
func NewPinHandler(st store.Store, log *logger.Logger) *PinHandler {
	return &PinHandler{
		store:  st,
		logger: log,
	}
}

// CreatePinRequest is the POST body for pinning an extension invocation.
type CreatePinRequest struct {
	Extension string         `json:"extension"`
	Props     map[string]any `json:"props"`
}

// Create handles POST /api/v1/pins
func (h *PinHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateExtensionName(req.Extension); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.store.CreatePinnedItem(r.Context(), req.Extension, req.Props)
	if err != nil {
		h.logger.Error("failed to create pinned item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create pinned item")
		return
	}

	metrics.PinnedItemsTotal.WithLabelValues(req.Extension).Inc()
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/v1/pins
func (h *PinHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPinnedItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list pinned items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list pinned items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// Delete handles DELETE /api/v1/pins/{id}
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidatePinID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existed, err := h.store.DeletePinnedItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete pinned item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete pinned item")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "pinned item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
