package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/database"
)

// SQLiteStore keeps session blobs in the service's own SQLite database,
// the default deployment with nothing extra to run.
type SQLiteStore struct {
	db     *database.DB
	logger zerolog.Logger
}

// NewSQLiteStore creates a store backed by db. The sessions table must
// already be migrated.
func NewSQLiteStore(db *database.DB, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:     db,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

func (s *SQLiteStore) Load(ctx context.Context, userID, conversationID string) (*State, error) {
	var blob string
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT state_json FROM sessions WHERE user_id = ? AND conversation_id = ?`,
		userID, conversationID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		// Fail open: a corrupt blob means no active session.
		s.logger.Warn().Err(err).Str("userId", userID).Msg("discarding malformed session state")
		return nil, nil
	}
	return &state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID, conversationID string, state *State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO sessions (user_id, conversation_id, state_json, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id, conversation_id)
		 DO UPDATE SET state_json = excluded.state_json, updated_at = CURRENT_TIMESTAMP`,
		userID, conversationID, string(blob),
	)
	return err
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")

	res, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("reaped expired sessions")
	}
	return n, nil
}

// Close is a no-op; the database connection is owned by the caller.
func (s *SQLiteStore) Close() error {
	return nil
}
