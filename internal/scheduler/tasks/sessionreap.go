// Package tasks registers the application's scheduled jobs.
package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/metrics"
	"github.com/overtalkerr/overtalkerr/internal/scheduler"
	"github.com/overtalkerr/overtalkerr/internal/session"
)

const SessionReapTaskID = "session-reap"

// RegisterSessionReapTask registers the hourly job that deletes
// conversation sessions older than the configured TTL. Stale sessions
// are harmless but accumulate forever otherwise.
func RegisterSessionReapTask(sched *scheduler.Scheduler, store session.Store, ttl time.Duration, logger zerolog.Logger) error {
	log := logger.With().Str("component", "session-reap").Logger()

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:         SessionReapTaskID,
		Name:       "Session Reap",
		Cron:       "0 * * * *",
		RunOnStart: true,
		Func: func(ctx context.Context) error {
			deleted, err := store.DeleteExpired(ctx, ttl)
			if err != nil {
				return err
			}
			if deleted > 0 {
				metrics.SessionsReaped.Add(float64(deleted))
				log.Info().Int64("deleted", deleted).Msg("Reaped expired sessions")
			}
			return nil
		},
	})
}
