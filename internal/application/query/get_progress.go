package query

import (
	"context"
	"errors"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS QUERIES
// Course percentage, subject summaries and activity streaks. All
// aggregation happens in the progress domain package; this layer only
// assembles inputs from the ledger and the content repositories.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressHandler handles progress read models.
type ProgressHandler struct {
	users    user.Repository
	courses  content.CourseRepository
	rewards  *reward.Service
	activity progress.ActivityLog
	policy   access.Policy
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(
	users user.Repository,
	courses content.CourseRepository,
	rewards *reward.Service,
	activity progress.ActivityLog,
	policy access.Policy,
) *ProgressHandler {
	return &ProgressHandler{
		users:    users,
		courses:  courses,
		rewards:  rewards,
		activity: activity,
		policy:   policy,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Course progress
// ─────────────────────────────────────────────────────────────────────────────

// CourseProgressView is the read model for one course.
type CourseProgressView struct {
	// CourseID is the course.
	CourseID string

	// Title is the course title.
	Title string

	// Subject is the course subject.
	Subject content.Subject

	// Progress is the unit-based completion aggregate.
	Progress progress.CourseProgress

	// CompletedPages is the number of completed pages across visible units.
	CompletedPages int

	// TotalPages is the number of pages across visible units.
	TotalPages int
}

// GetCourseProgress computes the requester's progress in a course.
// Percentage counts units visible to the requester's role: students
// only see published units, management roles see everything.
func (h *ProgressHandler) GetCourseProgress(ctx context.Context, userID, courseID string) (*CourseProgressView, error) {
	if userID == "" || courseID == "" {
		return nil, errors.New("get_course_progress: user_id and course_id are required")
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	course, err := h.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !h.policy.CanAccess(u, course.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}

	completion, err := h.rewards.Completion(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	visible := course.VisibleUnits(u.Role)
	visibleIDs := make([]string, len(visible))
	for i, unit := range visible {
		visibleIDs[i] = unit.ID
	}

	view := &CourseProgressView{
		CourseID: course.ID,
		Title:    course.Title,
		Subject:  course.Subject,
		Progress: progress.ComputeCourseProgress(completion.CompletedUnitIDs, visibleIDs),
	}

	for _, unit := range visible {
		for _, page := range unit.Pages {
			view.TotalPages++
			if completion.HasPage(page.ID) {
				view.CompletedPages++
			}
		}
	}

	return view, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Subject summary
// ─────────────────────────────────────────────────────────────────────────────

// GetSubjectSummary aggregates unit completion per subject across every
// course the requester can see.
func (h *ProgressHandler) GetSubjectSummary(ctx context.Context, userID string) ([]progress.TopicProgress, error) {
	if userID == "" {
		return nil, errors.New("get_subject_summary: user_id is required")
	}

	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, err := h.courses.List(ctx, content.ListOptions{
		Limit:           1000,
		IncludeInactive: u.Role.IsManagement(),
	})
	if err != nil {
		return nil, err
	}

	principal := h.policy.PrincipalFor(u)
	var entries []progress.TopicEntry

	for _, course := range courses {
		if !principal.CanAccess(course.AccessItem(), access.OpView) {
			continue
		}

		completion, err := h.rewards.Completion(ctx, userID, course.ID)
		if err != nil {
			return nil, err
		}

		for _, unit := range course.VisibleUnits(u.Role) {
			entries = append(entries, progress.TopicEntry{
				Topic:     string(course.Subject),
				Completed: completion.HasUnit(unit.ID),
			})
		}
	}

	return progress.SummarizeByTopic(entries), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Streak
// ─────────────────────────────────────────────────────────────────────────────

// streakLookback bounds how far back the streak computation reads.
// A year of daily activity is far beyond any realistic streak.
const streakLookbackDays = 400

// StreakView is the read model for the activity streak.
type StreakView struct {
	// CurrentStreak is the number of consecutive active days.
	CurrentStreak int

	// ActiveToday reports whether the user has activity today.
	ActiveToday bool
}

// GetStreak computes the requester's current streak in Lagos time.
func (h *ProgressHandler) GetStreak(ctx context.Context, userID string) (*StreakView, error) {
	if userID == "" {
		return nil, errors.New("get_streak: user_id is required")
	}

	if _, err := h.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := timeutil.Now()
	from := now.AddDate(0, 0, -streakLookbackDays)

	timestamps, err := h.activity.ListTimestamps(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}

	view := &StreakView{
		CurrentStreak: progress.Streak(timestamps, now),
	}
	for _, ts := range timestamps {
		if timeutil.IsToday(ts) {
			view.ActiveToday = true
			break
		}
	}

	return view, nil
}
