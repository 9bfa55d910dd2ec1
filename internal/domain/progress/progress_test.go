package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCourseProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed []string
		visible   []string
		want      CourseProgress
	}{
		{
			name:      "nothing complete",
			completed: nil,
			visible:   []string{"u1", "u2", "u3"},
			want:      CourseProgress{CompletedUnits: 0, TotalUnits: 3, Percentage: 0},
		},
		{
			name:      "all complete",
			completed: []string{"u1", "u2", "u3"},
			visible:   []string{"u1", "u2", "u3"},
			want:      CourseProgress{CompletedUnits: 3, TotalUnits: 3, Percentage: 100},
		},
		{
			name:      "one of three rounds to 33",
			completed: []string{"u1"},
			visible:   []string{"u1", "u2", "u3"},
			want:      CourseProgress{CompletedUnits: 1, TotalUnits: 3, Percentage: 33},
		},
		{
			name:      "two of three rounds to 67",
			completed: []string{"u1", "u2"},
			visible:   []string{"u1", "u2", "u3"},
			want:      CourseProgress{CompletedUnits: 2, TotalUnits: 3, Percentage: 67},
		},
		{
			name:      "completed hidden unit is ignored",
			completed: []string{"u1", "draft"},
			visible:   []string{"u1", "u2"},
			want:      CourseProgress{CompletedUnits: 1, TotalUnits: 2, Percentage: 50},
		},
		{
			name:      "empty course",
			completed: []string{"u1"},
			visible:   nil,
			want:      CourseProgress{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeCourseProgress(tt.completed, tt.visible))
		})
	}
}

func TestComputeCourseProgress_Monotonic(t *testing.T) {
	visible := []string{"u1", "u2", "u3", "u4", "u5"}
	var completed []string

	prev := 0
	for _, id := range visible {
		completed = append(completed, id)
		p := ComputeCourseProgress(completed, visible)
		assert.GreaterOrEqual(t, p.Percentage, prev, "percentage must be non-decreasing")
		prev = p.Percentage
	}
	assert.Equal(t, 100, prev)
}

func TestSummarizeByTopic(t *testing.T) {
	entries := []TopicEntry{
		{Topic: "algebra", Completed: true},
		{Topic: "algebra", Completed: false},
		{Topic: "geometry", Completed: true},
		{Topic: "algebra", Completed: true},
	}

	summary := SummarizeByTopic(entries)
	assert.Equal(t, []TopicProgress{
		{Topic: "algebra", Completed: 2, Total: 3, Percentage: 67},
		{Topic: "geometry", Completed: 1, Total: 1, Percentage: 100},
	}, summary)
}

func TestSummarizeByTopic_Empty(t *testing.T) {
	assert.Empty(t, SummarizeByTopic(nil))
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestStreak(t *testing.T) {
	today := day(t, "2026-03-10 12:00")

	tests := []struct {
		name       string
		timestamps []time.Time
		want       int
	}{
		{
			name:       "no activity",
			timestamps: nil,
			want:       0,
		},
		{
			name:       "only today",
			timestamps: []time.Time{day(t, "2026-03-10 08:00")},
			want:       1,
		},
		{
			name:       "starts from yesterday",
			timestamps: []time.Time{day(t, "2026-03-09 22:00")},
			want:       1,
		},
		{
			name: "three consecutive days",
			timestamps: []time.Time{
				day(t, "2026-03-10 08:00"),
				day(t, "2026-03-09 23:30"),
				day(t, "2026-03-08 07:15"),
			},
			want: 3,
		},
		{
			name: "gap stops the count",
			timestamps: []time.Time{
				day(t, "2026-03-10 08:00"),
				day(t, "2026-03-09 09:00"),
				day(t, "2026-03-06 10:00"),
			},
			want: 2,
		},
		{
			name: "stale activity breaks the streak",
			timestamps: []time.Time{
				day(t, "2026-03-07 08:00"),
				day(t, "2026-03-06 08:00"),
			},
			want: 0,
		},
		{
			name: "duplicate same-day timestamps collapse",
			timestamps: []time.Time{
				day(t, "2026-03-10 08:00"),
				day(t, "2026-03-10 09:00"),
				day(t, "2026-03-10 21:00"),
				day(t, "2026-03-09 11:00"),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.timestamps, today))
		})
	}
}
