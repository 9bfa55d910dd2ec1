package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

type completeUnitEnv struct {
	users   *memory.UserRepository
	courses *memory.CourseRepository
	ledger  *memory.Ledger
	rewards *reward.Service
	events  *capturePublisher
	units   *CompleteUnitHandler
	pages   *CompletePageHandler
	student *user.User
}

func newCompleteUnitEnv(t *testing.T) *completeUnitEnv {
	t.Helper()
	ctx := context.Background()

	env := &completeUnitEnv{
		users:   memory.NewUserRepository(),
		courses: memory.NewCourseRepository(),
		ledger:  memory.NewLedger(),
		events:  &capturePublisher{},
	}
	env.rewards = reward.NewService(env.ledger)

	env.student = newTestStudent(t, "stu-1")
	require.NoError(t, env.users.Create(ctx, env.student))
	env.ledger.RegisterUser(env.student.ID, env.student.DisplayName)

	course := newTestCourse(t, "course-1", access.Audience{})
	require.NoError(t, env.courses.Create(ctx, course))
	env.ledger.SetSubject(course.ID, string(course.Subject))

	activity := memory.NewActivityLog()
	env.units = NewCompleteUnitHandler(env.users, env.courses, env.rewards, activity, access.Policy{}, env.events)
	env.pages = NewCompletePageHandler(env.users, env.courses, env.rewards, activity, access.Policy{}, env.events)
	return env
}

func TestCompleteUnitHandler_FlatAwardExactlyOnce(t *testing.T) {
	env := newCompleteUnitEnv(t)
	ctx := context.Background()
	cmd := CompleteUnitCommand{UserID: env.student.ID, CourseID: "course-1", UnitID: "course-1-u1"}

	first, err := env.units.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, first.Awarded)
	assert.Equal(t, reward.GemsPerUnit, first.GemsEarned)
	assert.Equal(t, reward.GemsPerUnit, first.NewBalance)

	replay, err := env.units.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, replay.Awarded)
	assert.Zero(t, replay.GemsEarned)
	assert.Equal(t, reward.GemsPerUnit, replay.NewBalance, "balance unchanged on replay")
}

func TestCompleteUnitHandler_UnpublishedUnitHiddenFromStudents(t *testing.T) {
	env := newCompleteUnitEnv(t)

	_, err := env.units.Handle(context.Background(), CompleteUnitCommand{
		UserID: env.student.ID, CourseID: "course-1", UnitID: "course-1-u2",
	})
	assert.ErrorIs(t, err, content.ErrUnitNotFound)
}

func TestCompleteUnitHandler_ManagementCompletesUnpublishedUnit(t *testing.T) {
	env := newCompleteUnitEnv(t)
	ctx := context.Background()

	admin := newTestAdmin(t, "adm-1")
	require.NoError(t, env.users.Create(ctx, admin))
	env.ledger.RegisterUser(admin.ID, admin.DisplayName)

	result, err := env.units.Handle(ctx, CompleteUnitCommand{
		UserID: admin.ID, CourseID: "course-1", UnitID: "course-1-u2",
	})
	require.NoError(t, err)
	assert.True(t, result.Awarded)
}

func TestCompleteUnitHandler_UnknownUnit(t *testing.T) {
	env := newCompleteUnitEnv(t)

	_, err := env.units.Handle(context.Background(), CompleteUnitCommand{
		UserID: env.student.ID, CourseID: "course-1", UnitID: "no-such-unit",
	})
	assert.ErrorIs(t, err, content.ErrUnitNotFound)
}

func TestCompleteUnitHandler_PublishesAwardEventOnce(t *testing.T) {
	env := newCompleteUnitEnv(t)
	ctx := context.Background()
	cmd := CompleteUnitCommand{UserID: env.student.ID, CourseID: "course-1", UnitID: "course-1-u1"}

	_, err := env.units.Handle(ctx, cmd)
	require.NoError(t, err)
	_, err = env.units.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Len(t, env.events.byType(shared.EventUnitCompleted), 2)

	awarded := env.events.byType(shared.EventGemsAwarded)
	require.Len(t, awarded, 1)
	gems := awarded[0].(shared.GemsAwardedEvent)
	assert.Equal(t, reward.GemsPerUnit, gems.Amount)
	assert.Equal(t, string(reward.SourceUnitCompletion), gems.Source)
	assert.Equal(t, "physics", gems.Subject)
}

func TestCompletePageHandler_NoGemsEver(t *testing.T) {
	env := newCompleteUnitEnv(t)
	ctx := context.Background()
	cmd := CompletePageCommand{UserID: env.student.ID, CourseID: "course-1", PageID: "course-1-u1-p1"}

	require.NoError(t, env.pages.Handle(ctx, cmd))
	require.NoError(t, env.pages.Handle(ctx, cmd))

	balance, err := env.rewards.Balance(ctx, env.student.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Empty(t, env.events.byType(shared.EventGemsAwarded))

	completion, err := env.rewards.Completion(ctx, env.student.ID, "course-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"course-1-u1-p1"}, completion.CompletedPageIDs, "recorded once despite the replay")
}

func TestCompletePageHandler_UnknownPage(t *testing.T) {
	env := newCompleteUnitEnv(t)

	err := env.pages.Handle(context.Background(), CompletePageCommand{
		UserID: env.student.ID, CourseID: "course-1", PageID: "ghost",
	})
	assert.ErrorIs(t, err, content.ErrPageNotFound)
}
