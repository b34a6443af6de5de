package ask

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sanjanak/grocery-graph/backend/internal/model/grocery"
	askservice "github.com/sanjanak/grocery-graph/backend/internal/service/ask"
	"github.com/sanjanak/grocery-graph/backend/pkg/utils"
)

// Handler exposes the question-answering pipeline over HTTP.
type Handler struct {
	askSvc *askservice.Service
}

// New creates the ask handler.
func New(askSvc *askservice.Service) *Handler {
	return &Handler{askSvc: askSvc}
}

// RegisterRoutes registers the ask route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string             `json:"question"`
		History  []grocery.Purchase `json:"history"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Question) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Question cannot be empty.")
		return
	}

	answer, err := h.askSvc.Answer(r.Context(), payload.Question, payload.History)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, askservice.ErrEmptyQuestion):
			status = http.StatusBadRequest
		case errors.Is(err, askservice.ErrQueryValidation):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, askservice.ErrQueryExecution):
			status = http.StatusInternalServerError
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": answer})
}
