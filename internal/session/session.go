// Package session persists per-conversation receptionist state between
// turns, keyed by session ID. Two drivers are provided: an in-memory map
// for single-process hosts and Redis for hosts that need state to survive
// restarts. Both use optimistic locking so interleaved updates from
// independent requests cannot silently clobber a conversation.
package session

import (
	"context"
	"time"

	"clinic-receptionist/internal/core"
)

// Data is the serializable envelope stored per session.
type Data struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Version   int64                   `json:"version"` // monotonically increasing for optimistic locking
	State     *core.ConversationState `json:"state"`
}

// Store is the interface for session storage operations.
type Store interface {
	// Create stores a new session with Version set to 1.
	Create(ctx context.Context, data *Data) error

	// Get retrieves a session by ID. A missing session returns nil, nil.
	Get(ctx context.Context, id string) (*Data, error)

	// Update persists a session with optimistic locking: the stored
	// version must match data.Version, which is then incremented.
	// Returns ErrVersionConflict on mismatch and ErrNotFound when the
	// session does not exist.
	Update(ctx context.Context, data *Data) error

	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
