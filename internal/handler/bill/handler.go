package bill

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	ingestservice "github.com/sanjanak/grocery-graph/backend/internal/service/ingest"
	"github.com/sanjanak/grocery-graph/backend/pkg/utils"
)

const maxUploadBytes = 10 << 20

// Handler exposes bill ingestion and category spending lookups.
type Handler struct {
	ingestSvc *ingestservice.Service
}

// New creates the bill handler.
func New(ingestSvc *ingestservice.Service) *Handler {
	return &Handler{ingestSvc: ingestSvc}
}

// RegisterRoutes registers ingestion and spending routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/bills", h.handleUpload)
	r.Get("/spending/{category}", h.handleSpending)
}

// handleUpload accepts either a multipart receipt image under "file" or a
// JSON body {"text": "..."} with pre-extracted receipt text.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.handleImageUpload(w, r)
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	bill, err := h.ingestSvc.IngestText(r.Context(), payload.Text)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Bill processed successfully!",
		"bill_id": bill.ID,
		"data":    bill.Purchases,
	})
}

func (h *Handler) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	bill, err := h.ingestSvc.IngestImage(r.Context(), image)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Bill processed successfully!",
		"bill_id": bill.ID,
		"data":    bill.Purchases,
	})
}

func (h *Handler) respondIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingestservice.ErrNoExtractor):
		utils.RespondError(w, http.StatusServiceUnavailable, "image upload unavailable: no OCR extractor configured")
	case errors.Is(err, ingestservice.ErrNoPurchases):
		utils.RespondError(w, http.StatusUnprocessableEntity, "could not extract purchases from receipt")
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleSpending(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		utils.RespondError(w, http.StatusBadRequest, "category is required")
		return
	}

	total, err := h.ingestSvc.TotalSpent(r.Context(), category)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch spending")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"category":    category,
		"total_spent": total,
	})
}
