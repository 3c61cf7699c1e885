package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/chat"
	"github.com/capitalize-ai/extension-chat/internal/middleware"
	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/internal/stream"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

// GenerateHandler streams structured responses over newline-delimited JSON.
type GenerateHandler struct {
	manager *chat.Manager
	logger  *logger.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(manager *chat.Manager, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		manager: manager,
		logger:  log,
	}
}

// GenerateRequest is the POST body for a submission.
type GenerateRequest struct {
	Content string `json:"content"`
}

// Generate handles POST /api/v1/conversations/{id}/generate
//
// The response is application/x-ndjson: one line per partial snapshot, each a
// complete response document superseding the previous line, terminated either
// by the final snapshot or by a single {"error": ...} line.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	enc := json.NewEncoder(w)
	st := h.manager.Store(conversationID)

	err := st.Submit(ctx, req.Content, func(partial model.StructuredResponse) {
		if ctx.Err() != nil {
			return
		}
		if err := enc.Encode(partial); err != nil {
			return
		}
		flusher.Flush()
	})

	if err != nil {
		h.writeStreamError(w, flusher, conversationID, err)
	}
}

// writeStreamError emits the terminal error line. Status is already 200 by
// the time a stream fails, so errors ride the body.
func (h *GenerateHandler) writeStreamError(w http.ResponseWriter, flusher http.Flusher, conversationID string, err error) {
	var protoErr *stream.ProtocolError

	msg := "generation failed"
	switch {
	case errors.Is(err, chat.ErrBusy):
		msg = "a submission is already in flight"
	case errors.Is(err, chat.ErrEmptyMessage):
		msg = "message is empty"
	case errors.Is(err, stream.ErrNoContent):
		msg = "no content received"
	case errors.As(err, &protoErr):
		msg = protoErr.Error()
	}

	h.logger.Warn("generation stream failed",
		zap.String("conversation_id", conversationID),
		zap.Error(err))

	json.NewEncoder(w).Encode(map[string]string{"error": msg})
	flusher.Flush()
}
