// Package session stores in-progress address drafts keyed by user ID.
//
// Drafts live only for the duration of an update-address conversation.
// The default backend is process-local memory, so drafts are lost on
// restart; a Redis backend can be configured for deployments that need
// drafts to survive a restart.
package session

import (
	"context"
	"errors"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// ErrNotFound is returned by operations that require an existing draft.
var ErrNotFound = errors.New("session: draft not found")

// Store persists the active draft for each user. Get returns nil for a
// user with no draft in progress (not an error). Implementations must be
// safe for concurrent use; turn-level serialization per user is the
// caller's job (see KeyedMutex).
type Store interface {
	// Get retrieves the active draft for a user, or nil if none.
	Get(ctx context.Context, userID string) (*domain.AddressDraft, error)

	// Put creates or replaces the active draft for a user.
	Put(ctx context.Context, userID string, draft *domain.AddressDraft) error

	// Delete removes the active draft for a user. Deleting a missing
	// draft is not an error.
	Delete(ctx context.Context, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
