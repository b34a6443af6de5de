package memory

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	memorymodel "github.com/sanjanak/grocery-graph/backend/internal/model/memory"
)

// DefaultMaxTurns bounds the conversation log when no limit is configured.
const DefaultMaxTurns = 20

// Store is the bounded, persisted conversational memory for one session.
// Appends are serialized so the eviction check and the append are atomic;
// persistence is synchronous but best-effort, with in-memory state staying
// authoritative when the durable write fails.
type Store struct {
	mu        sync.Mutex
	path      string
	maxTurns  int
	sessionID string
	turns     []memorymodel.Turn
}

// NewStore creates the store, reloading a previously persisted session from
// path when one exists. Absence of durable state means a fresh session id
// and an empty turn log.
func NewStore(path string, maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	s := &Store{
		path:      path,
		maxTurns:  maxTurns,
		sessionID: uuid.NewString(),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[memory] failed to read session file: %v", err)
		}
		return
	}

	var session memorymodel.Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("[memory] failed to decode session file, starting fresh: %v", err)
		return
	}

	if session.SessionID != "" {
		s.sessionID = session.SessionID
	}
	s.turns = session.Turns
	if len(s.turns) > s.maxTurns {
		s.turns = append([]memorymodel.Turn(nil), s.turns[len(s.turns)-s.maxTurns:]...)
	}
	log.Printf("[memory] restored session %s with %d turns", s.sessionID, len(s.turns))
}

// AddMessage appends one turn, evicting the oldest turns first whenever the
// append would exceed the bound, then persists the whole session.
func (s *Store) AddMessage(content string, isHuman bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.turns) >= s.maxTurns {
		s.turns = s.turns[1:]
	}

	turnType := memorymodel.TypeAI
	if isHuman {
		turnType = memorymodel.TypeHuman
	}
	s.turns = append(s.turns, memorymodel.Turn{
		Type:      turnType,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})

	s.persistLocked()
}

// Turns returns the current turns in insertion order, oldest first.
func (s *Store) Turns() []memorymodel.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]memorymodel.Turn(nil), s.turns...)
}

// SessionID returns the current session identifier.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Clear empties the turn log, issues a new session id, and persists the
// fresh session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
	s.sessionID = uuid.NewString()
	s.persistLocked()
}

// persistLocked writes the whole session to the temp file and renames it into
// place. Failures are logged and swallowed: durable storage is best-effort.
func (s *Store) persistLocked() {
	session := memorymodel.Session{
		SessionID:   s.sessionID,
		Turns:       append([]memorymodel.Turn{}, s.turns...),
		LastUpdated: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		log.Printf("[memory] failed to encode session: %v", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		log.Printf("[memory] failed to persist session: %v", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Printf("[memory] failed to persist session: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		log.Printf("[memory] failed to persist session: %v", err)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		log.Printf("[memory] failed to persist session: %v", err)
	}
}
