package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/extension-chat/internal/chat"
	"github.com/capitalize-ai/extension-chat/internal/extension"
	"github.com/capitalize-ai/extension-chat/internal/middleware"
	"github.com/capitalize-ai/extension-chat/internal/render"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

// InteractHandler serves the rendered view of a conversation and routes the
// interactions its widgets emit back into that conversation.
type InteractHandler struct {
	manager    *chat.Manager
	dispatcher *render.Dispatcher
	logger     *logger.Logger
}

// NewInteractHandler creates a new interact handler.
func NewInteractHandler(manager *chat.Manager, dispatcher *render.Dispatcher, log *logger.Logger) *InteractHandler {
	return &InteractHandler{
		manager:    manager,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// InteractRequest is the POST body for one interaction.
type InteractRequest struct {
	Kind string `json:"kind"`
	Args []any  `json:"args"`
}

// Interact handles POST /api/v1/conversations/{id}/interact
//
// Interactions are fire-and-forget: unknown kinds and malformed arguments
// are accepted and dropped, since the emitting widget has nobody to report
// a failure to.
func (h *InteractHandler) Interact(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "interaction kind is required")
		return
	}

	st := h.manager.Store(conversationID)
	router := chat.NewRouter(func(ctx context.Context, text string) error {
		return st.Submit(ctx, text, nil)
	}, h.logger)
	router.Handle(r.Context(), req.Kind, req.Args)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// View handles GET /api/v1/conversations/{id}/view
//
// Each turn is returned as its rendered node list. Tool extensions render
// with an interaction sink attached, so their action descriptors appear in
// the tree for the client to post back to the interact endpoint.
func (h *InteractHandler) View(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.manager.Store(conversationID)
	if err := st.Load(r.Context()); err != nil {
		h.logger.WithConversation(conversationID).Error("failed to load conversation")
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	sink := func(kind string, args []any) {}

	turns := st.VisibleTurns()
	rendered := make([][]extension.Node, 0, len(turns))
	for _, turn := range turns {
		rendered = append(rendered, h.dispatcher.Turn(turn, sink))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"turns": rendered,
	})
}
