package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/timeutil"
)

type progressEnv struct {
	users    *memory.UserRepository
	courses  *memory.CourseRepository
	ledger   *memory.Ledger
	activity *memory.ActivityLog
	handler  *ProgressHandler
	student  *user.User
}

func newProgressEnv(t *testing.T) *progressEnv {
	t.Helper()
	ctx := context.Background()

	env := &progressEnv{
		users:    memory.NewUserRepository(),
		courses:  memory.NewCourseRepository(),
		ledger:   memory.NewLedger(),
		activity: memory.NewActivityLog(),
	}

	student, err := user.NewUser(user.NewUserParams{
		ID:          "stu-1",
		Email:       "stu@test.ng",
		DisplayName: "Student",
		Role:        user.RoleStudent,
		Profile: user.Profile{
			University: "unilag",
			Faculty:    "science",
			Department: "physics",
			Level:      "200",
		},
	})
	require.NoError(t, err)
	env.student = student
	require.NoError(t, env.users.Create(ctx, student))
	env.ledger.RegisterUser(student.ID, student.DisplayName)

	env.handler = NewProgressHandler(
		env.users,
		env.courses,
		reward.NewService(env.ledger),
		env.activity,
		access.Policy{},
	)
	return env
}

// seedCourse stores a course with two published units (two pages and one
// page) plus an unpublished draft unit.
func (env *progressEnv) seedCourse(t *testing.T, id string, subject content.Subject) *content.Course {
	t.Helper()

	course, err := content.NewCourse(content.NewCourseParams{
		ID:      id,
		Title:   "Course " + id,
		Subject: subject,
	})
	require.NoError(t, err)

	course.Units = []content.Unit{
		{
			ID:          id + "-u1",
			Title:       "Unit one",
			IsPublished: true,
			Pages: []content.Page{
				{ID: id + "-u1-p1", Title: "First"},
				{ID: id + "-u1-p2", Title: "Second"},
			},
		},
		{
			ID:          id + "-u2",
			Title:       "Unit two",
			Position:    1,
			IsPublished: true,
			Pages: []content.Page{
				{ID: id + "-u2-p1", Title: "Third"},
			},
		},
		{
			ID:       id + "-u3",
			Title:    "Draft",
			Position: 2,
		},
	}
	require.NoError(t, env.courses.Create(context.Background(), course))
	env.ledger.SetSubject(course.ID, string(subject))
	return course
}

func TestProgressHandler_CourseProgressCountsVisibleUnits(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "course-1", "physics")

	_, _, err := env.ledger.AwardUnit(ctx, env.student.ID, "course-1", "course-1-u1")
	require.NoError(t, err)
	require.NoError(t, env.ledger.MarkPageComplete(ctx, env.student.ID, "course-1", "course-1-u1-p1"))

	view, err := env.handler.GetCourseProgress(ctx, env.student.ID, "course-1")
	require.NoError(t, err)

	assert.Equal(t, "course-1", view.CourseID)
	assert.Equal(t, content.Subject("physics"), view.Subject)
	// The draft unit is invisible to students, so the denominator is 2.
	assert.Equal(t, progress.CourseProgress{CompletedUnits: 1, TotalUnits: 2, Percentage: 50}, view.Progress)
	assert.Equal(t, 1, view.CompletedPages)
	assert.Equal(t, 3, view.TotalPages)
}

func TestProgressHandler_ManagementSeesDraftUnits(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "course-1", "physics")

	admin, err := user.NewUser(user.NewUserParams{
		ID:          "adm-1",
		Email:       "adm@test.ng",
		DisplayName: "Admin",
		Role:        user.RoleAdmin,
	})
	require.NoError(t, err)
	require.NoError(t, env.users.Create(ctx, admin))
	env.ledger.RegisterUser(admin.ID, admin.DisplayName)

	view, err := env.handler.GetCourseProgress(ctx, admin.ID, "course-1")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Progress.TotalUnits)
}

func TestProgressHandler_CourseProgressForbidden(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "course-1", "physics")
	course.Audience = access.Audience{Universities: []string{"ui"}}
	require.NoError(t, env.courses.Update(ctx, course))

	_, err := env.handler.GetCourseProgress(ctx, env.student.ID, "course-1")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestProgressHandler_SubjectSummary(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()
	env.seedCourse(t, "course-1", "physics")
	env.seedCourse(t, "course-2", "chemistry")

	_, _, err := env.ledger.AwardUnit(ctx, env.student.ID, "course-1", "course-1-u1")
	require.NoError(t, err)

	summary, err := env.handler.GetSubjectSummary(ctx, env.student.ID)
	require.NoError(t, err)

	bySubject := make(map[string]progress.TopicProgress, len(summary))
	for _, row := range summary {
		bySubject[row.Topic] = row
	}

	require.Contains(t, bySubject, "physics")
	assert.Equal(t, 1, bySubject["physics"].Completed)
	assert.Equal(t, 2, bySubject["physics"].Total)

	require.Contains(t, bySubject, "chemistry")
	assert.Zero(t, bySubject["chemistry"].Completed)
	assert.Equal(t, 2, bySubject["chemistry"].Total)
}

func TestProgressHandler_StreakFromActivityLog(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()
	now := timeutil.Now()

	require.NoError(t, env.activity.Record(ctx, env.student.ID, now, "quiz_submission"))
	require.NoError(t, env.activity.Record(ctx, env.student.ID, now.AddDate(0, 0, -1), "page_completion"))
	require.NoError(t, env.activity.Record(ctx, env.student.ID, now.AddDate(0, 0, -2), "unit_completion"))
	// The gap at -3 days ends the streak; -4 must not count.
	require.NoError(t, env.activity.Record(ctx, env.student.ID, now.AddDate(0, 0, -4), "quiz_submission"))

	view, err := env.handler.GetStreak(ctx, env.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentStreak)
	assert.True(t, view.ActiveToday)
}

func TestProgressHandler_StaleActivityMeansNoStreak(t *testing.T) {
	env := newProgressEnv(t)
	ctx := context.Background()

	require.NoError(t, env.activity.Record(ctx, env.student.ID, timeutil.Now().AddDate(0, 0, -3), "quiz_submission"))

	view, err := env.handler.GetStreak(ctx, env.student.ID)
	require.NoError(t, err)
	assert.Zero(t, view.CurrentStreak)
	assert.False(t, view.ActiveToday)
}

func TestProgressHandler_StreakUnknownUser(t *testing.T) {
	env := newProgressEnv(t)

	_, err := env.handler.GetStreak(context.Background(), "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
