package session

import (
	"context"
	"time"
)

// Store is the key-value contract the conversation engine needs. Load
// returns (nil, nil) when no state exists or the stored blob cannot be
// decoded: a broken session must fail open to a fresh search, never
// crash the turn.
type Store interface {
	Load(ctx context.Context, userID, conversationID string) (*State, error)
	Save(ctx context.Context, userID, conversationID string, state *State) error

	// DeleteExpired reaps sessions idle for longer than olderThan and
	// returns the number removed. Stores with native expiry may no-op.
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)

	Close() error
}
