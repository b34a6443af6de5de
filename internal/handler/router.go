package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	askhandler "github.com/sanjanak/grocery-graph/backend/internal/handler/ask"
	billhandler "github.com/sanjanak/grocery-graph/backend/internal/handler/bill"
	memoryhandler "github.com/sanjanak/grocery-graph/backend/internal/handler/memory"
	middlewarePkg "github.com/sanjanak/grocery-graph/backend/internal/middleware"
	askservice "github.com/sanjanak/grocery-graph/backend/internal/service/ask"
	ingestservice "github.com/sanjanak/grocery-graph/backend/internal/service/ingest"
	memoryservice "github.com/sanjanak/grocery-graph/backend/internal/service/memory"
	"github.com/sanjanak/grocery-graph/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. askSvc and ingestSvc may be
// nil when the model or the graph store is not configured; their routes then
// respond with 503 instead of disappearing.
func NewRouter(askSvc *askservice.Service, ingestSvc *ingestservice.Service, memStore *memoryservice.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Grocery API!"})
	})

	r.Route("/api", func(api chi.Router) {
		if askSvc != nil {
			askhandler.New(askSvc).RegisterRoutes(api)
		} else {
			api.Post("/ask", unavailable)
		}

		if ingestSvc != nil {
			billhandler.New(ingestSvc).RegisterRoutes(api)
		} else {
			api.Post("/bills", unavailable)
			api.Get("/spending/{category}", unavailable)
		}

		memoryhandler.New(memStore).RegisterRoutes(api)
	})

	return r
}

func unavailable(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusServiceUnavailable, "graph store or model not configured")
}
