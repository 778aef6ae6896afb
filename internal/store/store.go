// Package store provides the pluggable persistence backends for interview
// session state. All backends key sessions by their id and signal unknown ids
// with interview.ErrSessionNotFound, so the state machine stays oblivious to
// the storage choice.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/ai-interviewer/internal/interview"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store extends the runner's SessionStore contract with lifecycle operations
// the boundary layer needs.
type Store interface {
	interview.SessionStore

	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// New creates a store for the configured driver. The memory driver ignores
// the dsn; sqlite interprets it as the database path.
func New(driver, dsn string) (Store, error) {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}
