package memory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	memoryservice "github.com/sanjanak/grocery-graph/backend/internal/service/memory"
	"github.com/sanjanak/grocery-graph/backend/pkg/utils"
)

// Handler exposes the conversational memory for inspection and reset.
type Handler struct {
	store *memoryservice.Store
}

// New creates the memory handler.
func New(store *memoryservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers memory routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/memory", h.handleGet)
	r.Post("/memory/clear", h.handleClear)
}

func (h *Handler) handleGet(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": h.store.SessionID(),
		"turns":     h.store.Turns(),
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, _ *http.Request) {
	h.store.Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "cleared",
		"sessionId": h.store.SessionID(),
	})
}
