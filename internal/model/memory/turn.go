package memory

import "time"

// Turn types as persisted in the session file.
const (
	TypeHuman = "human"
	TypeAI    = "ai"
)

// Turn is one message in conversational memory.
type Turn struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted shape of conversational memory: one record,
// read whole and written whole.
type Session struct {
	SessionID   string    `json:"sessionId"`
	Turns       []Turn    `json:"turns"`
	LastUpdated time.Time `json:"lastUpdated"`
}
