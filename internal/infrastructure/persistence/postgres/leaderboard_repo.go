// Package postgres implements the PostgreSQL persistence layer for TestMancer.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.Repository for PostgreSQL.
// ReplaceBucket swaps the whole bucket in one transaction so readers never
// observe a half-rebuilt board.
type LeaderboardRepository struct {
	conn *Connection
}

// NewLeaderboardRepository creates a new LeaderboardRepository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Bucket Operations
// ─────────────────────────────────────────────────────────────────────────────

// ReplaceBucket atomically replaces all entries of a bucket with the
// freshly recomputed board.
func (r *LeaderboardRepository) ReplaceBucket(ctx context.Context, board *leaderboard.Board) error {
	if board == nil {
		return leaderboard.ErrNilEntry
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"DELETE FROM leaderboard_entries WHERE subject = $1 AND timeframe = $2",
			string(board.Subject), string(board.Timeframe))
		if err != nil {
			return fmt.Errorf("failed to clear bucket: %w", err)
		}

		// Batch insert entries
		if len(board.Entries) > 0 {
			batch := &pgx.Batch{}
			for _, e := range board.Entries {
				batch.Queue(`
					INSERT INTO leaderboard_entries
					(subject, timeframe, user_id, display_name, rank, score, last_activity_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				`,
					string(board.Subject), string(board.Timeframe),
					e.UserID, e.DisplayName, int(e.Rank), int(e.Score),
					e.LastActivityAt, e.UpdatedAt,
				)
			}

			results := tx.SendBatch(ctx, batch)
			for range board.Entries {
				if _, err := results.Exec(); err != nil {
					_ = results.Close()
					return fmt.Errorf("failed to insert bucket entry: %w", err)
				}
			}
			if err := results.Close(); err != nil {
				return fmt.Errorf("failed to close batch: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO leaderboard_buckets (subject, timeframe, rebuilt_at, total_users, total_score)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (subject, timeframe) DO UPDATE SET
				rebuilt_at = EXCLUDED.rebuilt_at,
				total_users = EXCLUDED.total_users,
				total_score = EXCLUDED.total_score
		`,
			string(board.Subject), string(board.Timeframe),
			board.RebuiltAt, board.TotalUsers, board.TotalScore,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert bucket metadata: %w", err)
		}
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetTop returns the top-N entries of a bucket, ordered by rank.
func (r *LeaderboardRepository) GetTop(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe, limit int) ([]*leaderboard.Entry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, display_name, rank, score, last_activity_at, updated_at
		FROM leaderboard_entries
		WHERE subject = $1 AND timeframe = $2
		ORDER BY rank ASC
		LIMIT $3
	`, string(subject), string(timeframe), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top entries: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.Entry
	for rows.Next() {
		e, err := scanLeaderboardEntry(rows, subject, timeframe)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetUserRank returns the user's entry in a bucket.
func (r *LeaderboardRepository) GetUserRank(ctx context.Context, userID string, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (*leaderboard.Entry, error) {
	var e leaderboard.Entry
	var rank, score int

	err := r.conn.QueryRow(ctx, `
		SELECT user_id, display_name, rank, score, last_activity_at, updated_at
		FROM leaderboard_entries
		WHERE subject = $1 AND timeframe = $2 AND user_id = $3
	`, string(subject), string(timeframe), userID).Scan(
		&e.UserID, &e.DisplayName, &rank, &score, &e.LastActivityAt, &e.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, leaderboard.ErrBucketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user rank: %w", err)
	}

	e.Subject = subject
	e.Timeframe = timeframe
	e.Rank = leaderboard.Rank(rank)
	e.Score = leaderboard.Score(score)
	return &e, nil
}

// GetTotalCount returns the number of participants in a bucket.
func (r *LeaderboardRepository) GetTotalCount(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM leaderboard_entries
		WHERE subject = $1 AND timeframe = $2
	`, string(subject), string(timeframe)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bucket entries: %w", err)
	}
	return count, nil
}

// ListSubjects returns the subjects that have buckets.
func (r *LeaderboardRepository) ListSubjects(ctx context.Context) ([]leaderboard.Subject, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT DISTINCT subject FROM leaderboard_buckets ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket subjects: %w", err)
	}
	defer rows.Close()

	var subjects []leaderboard.Subject
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, leaderboard.Subject(s))
	}
	return subjects, rows.Err()
}

// LastRebuiltAt returns when the bucket was last rebuilt.
func (r *LeaderboardRepository) LastRebuiltAt(ctx context.Context, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (time.Time, error) {
	var at time.Time
	err := r.conn.QueryRow(ctx, `
		SELECT rebuilt_at FROM leaderboard_buckets
		WHERE subject = $1 AND timeframe = $2
	`, string(subject), string(timeframe)).Scan(&at)
	if IsNoRows(err) {
		return time.Time{}, leaderboard.ErrBucketNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get bucket rebuild time: %w", err)
	}
	return at, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

func scanLeaderboardEntry(rows pgx.Rows, subject leaderboard.Subject, timeframe leaderboard.Timeframe) (*leaderboard.Entry, error) {
	var e leaderboard.Entry
	var rank, score int

	err := rows.Scan(&e.UserID, &e.DisplayName, &rank, &score, &e.LastActivityAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
	}

	e.Subject = subject
	e.Timeframe = timeframe
	e.Rank = leaderboard.Rank(rank)
	e.Score = leaderboard.Score(score)
	return &e, nil
}
