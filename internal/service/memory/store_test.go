package memory

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memorymodel "github.com/sanjanak/grocery-graph/backend/internal/model/memory"
)

func tempSessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session_memory.json")
}

func TestAddMessageNeverExceedsBound(t *testing.T) {
	s := NewStore(tempSessionPath(t), 3)

	for i := 0; i < 10; i++ {
		s.AddMessage(fmt.Sprintf("turn %d", i), i%2 == 0)
		assert.LessOrEqual(t, len(s.Turns()), 3)
	}
}

func TestEvictionIsFIFO(t *testing.T) {
	s := NewStore(tempSessionPath(t), 3)

	for _, content := range []string{"A", "B", "C", "D"} {
		s.AddMessage(content, true)
	}

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "B", turns[0].Content)
	assert.Equal(t, "C", turns[1].Content)
	assert.Equal(t, "D", turns[2].Content)
}

func TestSessionRoundTrip(t *testing.T) {
	path := tempSessionPath(t)

	first := NewStore(path, 10)
	first.AddMessage("how much did I spend on Dairy?", true)
	first.AddMessage("You spent $5.99 on dairy.", false)

	// Simulates a process restart.
	second := NewStore(path, 10)
	assert.Equal(t, first.SessionID(), second.SessionID())

	want := first.Turns()
	got := second.Turns()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.Equal(t, want[i].Content, got[i].Content)
	}
}

func TestClearResetsTurnsAndIssuesNewSessionID(t *testing.T) {
	s := NewStore(tempSessionPath(t), 10)
	s.AddMessage("hello", true)
	before := s.SessionID()

	s.Clear()

	assert.Empty(t, s.Turns())
	assert.NotEqual(t, before, s.SessionID())
}

func TestReloadTrimsOversizedSessionFile(t *testing.T) {
	path := tempSessionPath(t)

	big := NewStore(path, 10)
	for i := 0; i < 10; i++ {
		big.AddMessage(fmt.Sprintf("turn %d", i), true)
	}

	small := NewStore(path, 4)
	turns := small.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, "turn 6", turns[0].Content)
	assert.Equal(t, "turn 9", turns[3].Content)
}

func TestPersistenceFailureIsNonFatal(t *testing.T) {
	// The parent directory does not exist, so every durable write fails.
	path := filepath.Join(t.TempDir(), "missing", "session_memory.json")
	s := NewStore(path, 10)

	s.AddMessage("still served from memory", true)

	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, memorymodel.TypeHuman, turns[0].Type)
	assert.Equal(t, "still served from memory", turns[0].Content)
}
