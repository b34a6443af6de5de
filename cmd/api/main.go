package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sanjanak/grocery-graph/backend/internal/config"
	"github.com/sanjanak/grocery-graph/backend/internal/graph"
	"github.com/sanjanak/grocery-graph/backend/internal/handler"
	"github.com/sanjanak/grocery-graph/backend/internal/service/ai"
	askservice "github.com/sanjanak/grocery-graph/backend/internal/service/ask"
	ingestservice "github.com/sanjanak/grocery-graph/backend/internal/service/ingest"
	memoryservice "github.com/sanjanak/grocery-graph/backend/internal/service/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Conversational memory is always available; it reloads any persisted
	// session on start.
	memStore := memoryservice.NewStore(cfg.Memory.Path, cfg.Memory.MaxTurns)

	var graphStore graph.Store
	neoStore, err := graph.NewNeo4jStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password)
	if err != nil {
		log.Printf("warning: failed to connect to neo4j: %v", err)
		log.Println("continuing without graph-backed endpoints")
	} else {
		graphStore = neoStore
		defer func() {
			if err := neoStore.Close(context.Background()); err != nil {
				log.Printf("warning: failed to close neo4j driver: %v", err)
			}
		}()
		log.Println("Neo4j store connected")
	}

	var generator ai.Generator
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI client: %v", err)
			log.Println("continuing without AI functionality - check the Ark model environment variables")
		} else {
			generator = client
			log.Println("AI client initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	var askSvc *askservice.Service
	var ingestSvc *ingestservice.Service
	if generator != nil && graphStore != nil {
		askSvc = askservice.NewService(graphStore, memStore, generator, cfg.DefaultUser)
		// OCR is an external collaborator; without one configured, receipts
		// are ingested as text.
		ingestSvc = ingestservice.NewService(graphStore, ingestservice.NewParser(generator), nil, cfg.DefaultUser)
	}

	router := handler.NewRouter(askSvc, ingestSvc, memStore)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Grocery graph backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
