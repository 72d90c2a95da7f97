// Package session provides the discovery session store: one Session per
// in-flight or recently finished run, addressed by a generated id.  Two
// implementations exist, an in-memory map for single-process deployments and
// a Redis-backed store for horizontal scale.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the lifecycle of a discovery session.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusStopped Status = "stopped"
	StatusFailed  Status = "failed"
)

// ChatEntry is one turn of conversation history kept with a session.
type ChatEntry struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is the stored state of one discovery run.
type Session struct {
	ID        string      `json:"id"`
	APIName   string      `json:"api_name"`
	Country   string      `json:"country"`
	Kind      string      `json:"kind"`
	Status    Status      `json:"status"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	History   []ChatEntry `json:"history,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewID generates a session id.
func NewID() string { return uuid.NewString() }

// Store is the session persistence contract.
type Store interface {
	// Create persists a new session and returns it with ID and timestamps
	// set.  A caller-supplied ID is honored; an empty one is generated.
	Create(ctx context.Context, s *Session) (*Session, error)
	// Get returns the session or an ErrCodeSessionNotFound error.
	Get(ctx context.Context, id string) (*Session, error)
	// Update overwrites the stored session, refreshing UpdatedAt.
	Update(ctx context.Context, s *Session) error
	// AppendHistory appends one chat entry to the session's history.
	AppendHistory(ctx context.Context, id string, entry ChatEntry) error
	// Delete removes the session; deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error
}

//Personal.AI order the ending
