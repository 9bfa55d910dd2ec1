package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/progress"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE UNIT COMMAND
// Marks a course unit as finished and grants the flat unit award once.
// The amount does not depend on how many pages the unit has.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteUnitCommand marks a unit as completed by a user.
type CompleteUnitCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// CourseID is the course containing the unit.
	CourseID string

	// UnitID is the completed unit.
	UnitID string
}

// Validate validates the command.
func (c CompleteUnitCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("complete_unit: user_id is required")
	}
	if c.CourseID == "" {
		return errors.New("complete_unit: course_id is required")
	}
	if c.UnitID == "" {
		return errors.New("complete_unit: unit_id is required")
	}
	return nil
}

// CompleteUnitResult contains the award outcome.
type CompleteUnitResult struct {
	// Awarded reports whether this call granted the unit gems.
	Awarded bool

	// GemsEarned is the granted amount (0 on replay).
	GemsEarned int

	// NewBalance is the user's balance after the operation.
	NewBalance int
}

// CompleteUnitHandler handles CompleteUnitCommand.
type CompleteUnitHandler struct {
	users     user.Repository
	courses   content.CourseRepository
	rewards   *reward.Service
	activity  progress.ActivityLog
	policy    access.Policy
	publisher shared.EventPublisher
}

// NewCompleteUnitHandler creates a new CompleteUnitHandler.
func NewCompleteUnitHandler(
	users user.Repository,
	courses content.CourseRepository,
	rewards *reward.Service,
	activity progress.ActivityLog,
	policy access.Policy,
	publisher shared.EventPublisher,
) *CompleteUnitHandler {
	return &CompleteUnitHandler{
		users:     users,
		courses:   courses,
		rewards:   rewards,
		activity:  activity,
		policy:    policy,
		publisher: publisher,
	}
}

// Handle awards the flat unit amount at most once per (user, course, unit).
func (h *CompleteUnitHandler) Handle(ctx context.Context, cmd CompleteUnitCommand) (*CompleteUnitResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	course, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	if !h.policy.CanAccess(u, course.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}

	unit, ok := course.UnitByID(cmd.UnitID)
	if !ok {
		return nil, content.ErrUnitNotFound
	}
	if u.IsStudent() && !unit.IsPublished {
		return nil, content.ErrUnitNotFound
	}

	award, err := h.rewards.AwardUnit(ctx, cmd.UserID, cmd.CourseID, cmd.UnitID)
	if err != nil {
		return nil, fmt.Errorf("award unit: %w", err)
	}

	if err := h.activity.Record(ctx, cmd.UserID, timeutil.Now(), "unit_completion"); err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewUnitCompletedEvent(cmd.UserID, cmd.CourseID, cmd.UnitID))

		if award.Awarded {
			_ = h.publisher.Publish(shared.NewGemsAwardedEvent(
				cmd.UserID, award.Amount, award.NewBalance,
				string(reward.SourceUnitCompletion), cmd.CourseID, string(course.Subject)))
		}
	}

	return &CompleteUnitResult{
		Awarded:    award.Awarded,
		GemsEarned: award.Amount,
		NewBalance: award.NewBalance,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE PAGE COMMAND
// Pages track progress only. No gems, ever.
// ══════════════════════════════════════════════════════════════════════════════

// CompletePageCommand marks a page as completed by a user.
type CompletePageCommand struct {
	// UserID is the internal ID of the user.
	UserID string

	// CourseID is the course containing the page.
	CourseID string

	// PageID is the completed page.
	PageID string
}

// Validate validates the command.
func (c CompletePageCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("complete_page: user_id is required")
	}
	if c.CourseID == "" {
		return errors.New("complete_page: course_id is required")
	}
	if c.PageID == "" {
		return errors.New("complete_page: page_id is required")
	}
	return nil
}

// CompletePageHandler handles CompletePageCommand.
type CompletePageHandler struct {
	users     user.Repository
	courses   content.CourseRepository
	rewards   *reward.Service
	activity  progress.ActivityLog
	policy    access.Policy
	publisher shared.EventPublisher
}

// NewCompletePageHandler creates a new CompletePageHandler.
func NewCompletePageHandler(
	users user.Repository,
	courses content.CourseRepository,
	rewards *reward.Service,
	activity progress.ActivityLog,
	policy access.Policy,
	publisher shared.EventPublisher,
) *CompletePageHandler {
	return &CompletePageHandler{
		users:     users,
		courses:   courses,
		rewards:   rewards,
		activity:  activity,
		policy:    policy,
		publisher: publisher,
	}
}

// Handle records the page completion idempotently.
func (h *CompletePageHandler) Handle(ctx context.Context, cmd CompletePageCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}

	course, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return err
	}

	if !h.policy.CanAccess(u, course.AccessItem(), access.OpView) {
		return shared.ErrForbidden
	}

	if _, ok := course.PageByID(cmd.PageID); !ok {
		return content.ErrPageNotFound
	}

	if err := h.rewards.MarkPageComplete(ctx, cmd.UserID, cmd.CourseID, cmd.PageID); err != nil {
		return fmt.Errorf("mark page complete: %w", err)
	}

	if err := h.activity.Record(ctx, cmd.UserID, timeutil.Now(), "page_completion"); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewPageCompletedEvent(cmd.UserID, cmd.CourseID, cmd.PageID))
	}

	return nil
}
