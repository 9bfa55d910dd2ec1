// Package postgres implements the PostgreSQL persistence layer for TestMancer.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GEM LEDGER IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LedgerRepository implements reward.Ledger for PostgreSQL.
//
// Exactly-once is carried by the UNIQUE(user_id, source_kind, source_id,
// item_id) constraint on gem_awards. The membership insert and the balance
// increment run in one transaction, so a retry either sees the committed
// award (insert skipped, balance untouched) or commits both together.
type LedgerRepository struct {
	conn *Connection
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Award Operations
// ─────────────────────────────────────────────────────────────────────────────

// AwardQuestion awards gems for a correctly answered quiz question,
// at most once per (user, quiz, question).
func (r *LedgerRepository) AwardQuestion(ctx context.Context, userID, quizID, questionID string) (bool, int, error) {
	subjectQuery := "SELECT COALESCE((SELECT subject FROM quizzes WHERE id = $1), '')"
	return r.award(ctx, userID, reward.SourceQuizQuestion, quizID, questionID, reward.GemsPerQuestion, subjectQuery)
}

// AwardUnit awards the flat unit completion amount, at most once per
// (user, course, unit).
func (r *LedgerRepository) AwardUnit(ctx context.Context, userID, courseID, unitID string) (bool, int, error) {
	subjectQuery := "SELECT COALESCE((SELECT subject FROM courses WHERE id = $1), '')"
	return r.award(ctx, userID, reward.SourceUnitCompletion, courseID, unitID, reward.GemsPerUnit, subjectQuery)
}

// award inserts a ledger row and increments the balance in one transaction.
func (r *LedgerRepository) award(ctx context.Context, userID string, kind reward.SourceKind, sourceID, itemID string, amount int, subjectQuery string) (bool, int, error) {
	var awarded bool
	var newBalance int

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var subject string
		if err := tx.QueryRow(ctx, subjectQuery, sourceID).Scan(&subject); err != nil {
			return fmt.Errorf("failed to resolve subject: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO gem_awards (user_id, source_kind, source_id, item_id, amount, subject, awarded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, source_kind, source_id, item_id) DO NOTHING
		`, userID, string(kind), sourceID, itemID, amount, subject, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert award: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Already awarded; report the current balance unchanged.
			awarded = false
			return tx.QueryRow(ctx,
				"SELECT gem_balance FROM users WHERE id = $1", userID,
			).Scan(&newBalance)
		}

		awarded = true
		return tx.QueryRow(ctx, `
			UPDATE users SET gem_balance = gem_balance + $1, last_activity_at = $2
			WHERE id = $3
			RETURNING gem_balance
		`, amount, time.Now().UTC(), userID).Scan(&newBalance)
	})
	if err != nil {
		if IsNoRows(err) {
			return false, 0, shared.ErrUserNotFound
		}
		if IsSerializationFailure(err) || IsUniqueViolation(err) {
			// Lost the insert race against a concurrent retry. The caller's
			// retry loop re-runs the transaction and observes the winner.
			return false, 0, shared.ErrConflictRace
		}
		return false, 0, fmt.Errorf("ledger award failed: %w", err)
	}

	return awarded, newBalance, nil
}

// MarkPageComplete records a page completion. Pages never award gems.
func (r *LedgerRepository) MarkPageComplete(ctx context.Context, userID, courseID, pageID string) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO page_completions (user_id, course_id, page_id, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id, page_id) DO NOTHING
	`, userID, courseID, pageID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark page complete: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetBalance returns the user's current gem balance.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.conn.QueryRow(ctx,
		"SELECT gem_balance FROM users WHERE id = $1", userID,
	).Scan(&balance)
	if IsNoRows(err) {
		return 0, shared.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetQuizAwards returns the question IDs already awarded for a quiz.
func (r *LedgerRepository) GetQuizAwards(ctx context.Context, userID, quizID string) ([]string, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT item_id FROM gem_awards
		WHERE user_id = $1 AND source_kind = $2 AND source_id = $3
		ORDER BY awarded_at ASC
	`, userID, string(reward.SourceQuizQuestion), quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz awards: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// GetCourseCompletion returns the user's completed units and pages for a course.
func (r *LedgerRepository) GetCourseCompletion(ctx context.Context, userID, courseID string) (reward.CourseCompletion, error) {
	var completion reward.CourseCompletion

	unitRows, err := r.conn.Query(ctx, `
		SELECT item_id FROM gem_awards
		WHERE user_id = $1 AND source_kind = $2 AND source_id = $3
	`, userID, string(reward.SourceUnitCompletion), courseID)
	if err != nil {
		return completion, fmt.Errorf("failed to get completed units: %w", err)
	}
	defer unitRows.Close()

	completion.CompletedUnitIDs, err = scanIDs(unitRows)
	if err != nil {
		return completion, err
	}

	pageRows, err := r.conn.Query(ctx, `
		SELECT page_id FROM page_completions
		WHERE user_id = $1 AND course_id = $2
	`, userID, courseID)
	if err != nil {
		return completion, fmt.Errorf("failed to get completed pages: %w", err)
	}
	defer pageRows.Close()

	completion.CompletedPageIDs, err = scanIDs(pageRows)
	return completion, err
}

// ListAwards returns award records for a user within a time range.
func (r *LedgerRepository) ListAwards(ctx context.Context, userID string, from, to time.Time) ([]reward.AwardRecord, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT user_id, source_kind, source_id, item_id, amount, subject, awarded_at
		FROM gem_awards
		WHERE user_id = $1 AND awarded_at >= $2 AND awarded_at <= $3
		ORDER BY awarded_at ASC
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	defer rows.Close()

	var records []reward.AwardRecord
	for rows.Next() {
		var rec reward.AwardRecord
		var kind string
		if err := rows.Scan(&rec.UserID, &kind, &rec.SourceID, &rec.ItemID, &rec.Amount, &rec.Subject, &rec.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan award record: %w", err)
		}
		rec.Source = reward.SourceKind(kind)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation for leaderboard rebuilds
// ─────────────────────────────────────────────────────────────────────────────

// SumAwardsBySubject aggregates gem totals per user for a subject and window.
// An empty subject aggregates across all subjects.
func (r *LedgerRepository) SumAwardsBySubject(ctx context.Context, subject string, from, to time.Time) ([]reward.SubjectScore, error) {
	query := `
		SELECT a.user_id, u.display_name, SUM(a.amount)::INTEGER, u.last_activity_at
		FROM gem_awards a
		JOIN users u ON u.id = a.user_id
		WHERE a.awarded_at >= $1 AND a.awarded_at <= $2
	`
	args := []interface{}{from, to}
	if subject != "" && subject != "all" {
		args = append(args, subject)
		query += fmt.Sprintf(" AND a.subject = $%d", len(args))
	}
	query += " GROUP BY a.user_id, u.display_name, u.last_activity_at"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum awards by subject: %w", err)
	}
	defer rows.Close()

	var scores []reward.SubjectScore
	for rows.Next() {
		var s reward.SubjectScore
		if err := rows.Scan(&s.UserID, &s.DisplayName, &s.Score, &s.LastActivityAt); err != nil {
			return nil, fmt.Errorf("failed to scan subject score: %w", err)
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

// ListSubjectsWithAwards returns the distinct subjects present in the ledger.
func (r *LedgerRepository) ListSubjectsWithAwards(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT DISTINCT subject FROM gem_awards WHERE subject <> '' ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

var (
	_ reward.Ledger          = (*LedgerRepository)(nil)
	_ reward.ScoreAggregator = (*LedgerRepository)(nil)
)

// scanIDs collects a single text column from rows.
func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
