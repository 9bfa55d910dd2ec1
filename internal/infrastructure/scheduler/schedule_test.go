package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := Every(15 * time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(15*time.Minute), s.Next(now))
	assert.Equal(t, "every 15m0s", s.String())
}

func TestDailySchedule_Next(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	s := DailyAt(3, 30)

	before := time.Date(2026, 3, 10, 1, 0, 0, 0, lagos)
	assert.Equal(t, time.Date(2026, 3, 10, 3, 30, 0, 0, lagos), s.Next(before))

	// At or past the wall-clock time the run moves to tomorrow.
	exact := time.Date(2026, 3, 10, 3, 30, 0, 0, lagos)
	assert.Equal(t, time.Date(2026, 3, 11, 3, 30, 0, 0, lagos), s.Next(exact))

	after := time.Date(2026, 3, 10, 22, 0, 0, 0, lagos)
	assert.Equal(t, time.Date(2026, 3, 11, 3, 30, 0, 0, lagos), s.Next(after))

	assert.Equal(t, "daily at 03:30", s.String())
}
