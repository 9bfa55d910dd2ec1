// Package jobs contains implementations of scheduled jobs for TestMancer.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH LEADERBOARD JOB
// The rating is rebuilt on every award event, but two things only a
// periodic pass can fix: timeframe windows move (Monday flips the
// weekly bucket even without new awards) and the in-memory event bus
// loses events on restart. This job runs the same full rebuild the
// event handler runs.
// ══════════════════════════════════════════════════════════════════════════════

// Rebuilder is the full-rebuild entry point of the leaderboard event
// handler.
type Rebuilder interface {
	RebuildAll(ctx context.Context) error
}

// RefreshLeaderboardJob periodically rebuilds every leaderboard bucket.
type RefreshLeaderboardJob struct {
	rebuilder Rebuilder
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRefreshLeaderboardJob creates the job. timeout bounds one full
// rebuild pass; zero means 5 minutes.
func NewRefreshLeaderboardJob(rebuilder Rebuilder, timeout time.Duration, logger *slog.Logger) *RefreshLeaderboardJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshLeaderboardJob{
		rebuilder: rebuilder,
		timeout:   timeout,
		logger:    logger.With("job", "refresh_leaderboard"),
	}
}

// Name implements scheduler.Job.
func (j *RefreshLeaderboardJob) Name() string {
	return "refresh_leaderboard"
}

// Description implements scheduler.Job.
func (j *RefreshLeaderboardJob) Description() string {
	return "Rebuilds all leaderboard buckets from the reward ledger"
}

// Run implements scheduler.Job.
func (j *RefreshLeaderboardJob) Run(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	started := time.Now()
	if err := j.rebuilder.RebuildAll(runCtx); err != nil {
		return fmt.Errorf("rebuild all buckets: %w", err)
	}

	j.logger.Info("leaderboard refreshed", "duration", time.Since(started).String())
	return nil
}
