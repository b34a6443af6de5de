package memory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	memoryservice "github.com/sanjanak/grocery-graph/backend/internal/service/memory"
)

func setupRouter(t *testing.T) (*chi.Mux, *memoryservice.Store) {
	t.Helper()
	store := memoryservice.NewStore(filepath.Join(t.TempDir(), "session.json"), 10)

	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r, store
}

func TestGetMemoryReturnsTurns(t *testing.T) {
	r, store := setupRouter(t)
	store.AddMessage("hello", true)

	req := httptest.NewRequest(http.MethodGet, "/memory", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		SessionID string `json:"sessionId"`
		Turns     []struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if len(body.Turns) != 1 || body.Turns[0].Content != "hello" {
		t.Fatalf("unexpected turns: %+v", body.Turns)
	}
}

func TestClearMemoryIssuesNewSession(t *testing.T) {
	r, store := setupRouter(t)
	store.AddMessage("hello", true)
	before := store.SessionID()

	req := httptest.NewRequest(http.MethodPost, "/memory/clear", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if store.SessionID() == before {
		t.Fatal("expected a fresh session id after clear")
	}
	if len(store.Turns()) != 0 {
		t.Fatal("expected empty turns after clear")
	}
}
