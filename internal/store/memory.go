package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/spigell/ai-interviewer/internal/interview"
)

// Memory keeps sessions in a process-local map. Suitable for development,
// tests and the terminal practice mode; state does not survive restarts.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*interview.State
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*interview.State)}
}

func (m *Memory) Get(_ context.Context, sessionID string) (*interview.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interview.ErrSessionNotFound, sessionID)
	}

	return state.Clone(), nil
}

func (m *Memory) Put(_ context.Context, state *interview.State) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("state with a session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[state.SessionID] = state.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

func (m *Memory) Close() error { return nil }
