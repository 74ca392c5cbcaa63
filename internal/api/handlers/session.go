package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/api"
)

// SessionClearer removes a stored document session.
type SessionClearer interface {
	Clear(ctx context.Context, documentID string) error
}

type SessionHandler struct {
	store SessionClearer
}

func NewSessionHandler(store SessionClearer) *SessionHandler {
	return &SessionHandler{store: store}
}

// Clear drops the session for a document id. In stateless mode this is a
// trivial success; the caller discards its own payload.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.Clear(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"message": "session cleared"})
}
