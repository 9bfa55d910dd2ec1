package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
)

// ActivityRepository implements progress.ActivityLog using PostgreSQL.
// The raw timestamps feed streak computation; collapsing to calendar
// days happens in the domain, not here.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// Record appends an activity event for the user.
func (r *ActivityRepository) Record(ctx context.Context, userID string, at time.Time, kind string) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO activity_log (user_id, kind, occurred_at)
		VALUES ($1, $2, $3)
	`, userID, kind, at)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListTimestamps returns activity timestamps for the user within a range.
func (r *ActivityRepository) ListTimestamps(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT occurred_at FROM activity_log
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity timestamps: %w", err)
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("failed to scan activity timestamp: %w", err)
		}
		timestamps = append(timestamps, at)
	}
	return timestamps, rows.Err()
}

var _ progress.ActivityLog = (*ActivityRepository)(nil)
