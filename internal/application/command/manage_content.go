package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT MANAGEMENT COMMANDS
// Create, update and delete operations on courses, quizzes, folders and
// resources. Every operation runs through the audience policy with
// OpManage; students are rejected before any repository touch.
// ══════════════════════════════════════════════════════════════════════════════

// ContentHandler handles content management commands.
type ContentHandler struct {
	users     user.Repository
	courses   content.CourseRepository
	quizzes   content.QuizRepository
	resources content.ResourceRepository
	policy    access.Policy
	publisher shared.EventPublisher
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(
	users user.Repository,
	courses content.CourseRepository,
	quizzes content.QuizRepository,
	resources content.ResourceRepository,
	policy access.Policy,
	publisher shared.EventPublisher,
) *ContentHandler {
	return &ContentHandler{
		users:     users,
		courses:   courses,
		quizzes:   quizzes,
		resources: resources,
		policy:    policy,
		publisher: publisher,
	}
}

// principal loads the acting user and rejects non-management roles early.
func (h *ContentHandler) principal(ctx context.Context, actorID string) (*user.User, error) {
	u, err := h.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !u.Role.IsManagement() {
		return nil, shared.ErrForbidden
	}
	return u, nil
}

func (h *ContentHandler) authorize(u *user.User, item access.Item) error {
	if !h.policy.CanAccess(u, item, access.OpManage) {
		return shared.ErrForbidden
	}
	return nil
}

func (h *ContentHandler) publishChange(eventType shared.EventType, itemID, itemKind, actorID string) {
	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewContentChangedEvent(eventType, itemID, itemKind, actorID))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// CreateCourseCommand creates a course.
type CreateCourseCommand struct {
	ActorID     string
	Title       string
	Description string
	Subject     content.Subject
	Category    user.Category
	Audience    access.Audience
	Units       []content.Unit
}

// CreateCourse creates a course owned by the actor.
func (h *ContentHandler) CreateCourse(ctx context.Context, cmd CreateCourseCommand) (*content.Course, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	course, err := content.NewCourse(content.NewCourseParams{
		ID:          uuid.NewString(),
		Title:       cmd.Title,
		Description: cmd.Description,
		Subject:     cmd.Subject,
		Category:    cmd.Category,
		Audience:    cmd.Audience,
		CreatedBy:   u.ID,
	})
	if err != nil {
		return nil, err
	}
	course.Units = cmd.Units

	if err := h.authorize(u, course.AccessItem()); err != nil {
		return nil, err
	}

	if err := h.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentCreated, course.ID, string(content.KindCourse), u.ID)
	return course, nil
}

// UpdateCourseCommand updates a course, including its unit structure.
type UpdateCourseCommand struct {
	ActorID     string
	CourseID    string
	Title       string
	Description string
	Audience    *access.Audience
	Units       []content.Unit
	IsActive    *bool
}

// UpdateCourse applies changes to an existing course.
func (h *ContentHandler) UpdateCourse(ctx context.Context, cmd UpdateCourseCommand) (*content.Course, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	course, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if err := h.authorize(u, course.AccessItem()); err != nil {
		return nil, err
	}

	if cmd.Title != "" {
		course.Title = cmd.Title
	}
	if cmd.Description != "" {
		course.Description = cmd.Description
	}
	if cmd.Audience != nil {
		course.Audience = cmd.Audience.Clone()
	}
	if cmd.Units != nil {
		course.Units = cmd.Units
	}
	if cmd.IsActive != nil {
		course.IsActive = *cmd.IsActive
	}
	course.UpdatedAt = time.Now().UTC()

	if err := h.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentUpdated, course.ID, string(content.KindCourse), u.ID)
	return course, nil
}

// DeleteCourse removes a course; quizzes attached to it go with it.
func (h *ContentHandler) DeleteCourse(ctx context.Context, actorID, courseID string) error {
	u, err := h.principal(ctx, actorID)
	if err != nil {
		return err
	}

	course, err := h.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := h.authorize(u, course.AccessItem()); err != nil {
		return err
	}

	if err := h.courses.Delete(ctx, courseID); err != nil {
		return err
	}

	h.publishChange(shared.EventContentDeleted, courseID, string(content.KindCourse), u.ID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Quizzes
// ─────────────────────────────────────────────────────────────────────────────

// CreateQuizCommand creates a quiz under a course. Subject, category
// and audience are inherited from the course as a snapshot.
type CreateQuizCommand struct {
	ActorID      string
	CourseID     string
	Kind         content.QuizKind
	Title        string
	UnitID       string
	PageID       string
	Questions    []content.Question
	PassingScore int
}

// CreateQuiz creates a quiz attached to a course.
func (h *ContentHandler) CreateQuiz(ctx context.Context, cmd CreateQuizCommand) (*content.Quiz, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	course, err := h.courses.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if err := h.authorize(u, course.AccessItem()); err != nil {
		return nil, err
	}

	questions := make([]content.Question, len(cmd.Questions))
	for i, q := range cmd.Questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		questions[i] = q
	}

	quiz, err := content.NewQuiz(content.NewQuizParams{
		ID:           uuid.NewString(),
		Kind:         cmd.Kind,
		Title:        cmd.Title,
		UnitID:       cmd.UnitID,
		PageID:       cmd.PageID,
		Questions:    questions,
		PassingScore: cmd.PassingScore,
		CreatedBy:    u.ID,
	}, course)
	if err != nil {
		return nil, err
	}

	if err := h.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentCreated, quiz.ID, string(content.KindQuiz), u.ID)
	return quiz, nil
}

// DeleteQuiz removes a quiz.
func (h *ContentHandler) DeleteQuiz(ctx context.Context, actorID, quizID string) error {
	u, err := h.principal(ctx, actorID)
	if err != nil {
		return err
	}

	quiz, err := h.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if err := h.authorize(u, quiz.AccessItem()); err != nil {
		return err
	}

	if err := h.quizzes.Delete(ctx, quizID); err != nil {
		return err
	}

	h.publishChange(shared.EventContentDeleted, quizID, string(content.KindQuiz), u.ID)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Resource folders and resources
// ─────────────────────────────────────────────────────────────────────────────

// CreateFolderCommand creates a resource folder.
type CreateFolderCommand struct {
	ActorID  string
	Name     string
	Category user.Category
	Audience access.Audience
}

// CreateFolder creates a resource folder.
func (h *ContentHandler) CreateFolder(ctx context.Context, cmd CreateFolderCommand) (*content.ResourceFolder, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	folder, err := content.NewResourceFolder(uuid.NewString(), cmd.Name, cmd.Category, cmd.Audience, u.ID)
	if err != nil {
		return nil, err
	}

	if err := h.authorize(u, folder.AccessItem()); err != nil {
		return nil, err
	}

	if err := h.resources.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentCreated, folder.ID, string(content.KindFolder), u.ID)
	return folder, nil
}

// UpdateFolderCommand updates a resource folder.
type UpdateFolderCommand struct {
	ActorID  string
	FolderID string
	Name     string
	Audience *access.Audience
	IsActive *bool
}

// UpdateFolder applies changes to an existing folder. Resources keep
// their audience snapshot: folder changes do not cascade.
func (h *ContentHandler) UpdateFolder(ctx context.Context, cmd UpdateFolderCommand) (*content.ResourceFolder, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	folder, err := h.resources.GetFolderByID(ctx, cmd.FolderID)
	if err != nil {
		return nil, err
	}
	if err := h.authorize(u, folder.AccessItem()); err != nil {
		return nil, err
	}

	if cmd.Name != "" {
		folder.Name = cmd.Name
	}
	if cmd.Audience != nil {
		folder.Audience = cmd.Audience.Clone()
	}
	if cmd.IsActive != nil {
		folder.IsActive = *cmd.IsActive
	}
	folder.UpdatedAt = time.Now().UTC()

	if err := h.resources.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentUpdated, folder.ID, string(content.KindFolder), u.ID)
	return folder, nil
}

// DeleteFolder removes a folder together with its resources.
func (h *ContentHandler) DeleteFolder(ctx context.Context, actorID, folderID string) error {
	u, err := h.principal(ctx, actorID)
	if err != nil {
		return err
	}

	folder, err := h.resources.GetFolderByID(ctx, folderID)
	if err != nil {
		return err
	}
	if err := h.authorize(u, folder.AccessItem()); err != nil {
		return err
	}

	if err := h.resources.DeleteFolder(ctx, folderID); err != nil {
		return err
	}

	h.publishChange(shared.EventContentDeleted, folderID, string(content.KindFolder), u.ID)
	return nil
}

// CreateResourceCommand creates a resource inside a folder.
type CreateResourceCommand struct {
	ActorID  string
	FolderID string
	Title    string
	URL      string
}

// CreateResource creates a resource. Category and audience come from
// the folder as a snapshot taken now.
func (h *ContentHandler) CreateResource(ctx context.Context, cmd CreateResourceCommand) (*content.Resource, error) {
	u, err := h.principal(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	folder, err := h.resources.GetFolderByID(ctx, cmd.FolderID)
	if err != nil {
		return nil, err
	}
	if err := h.authorize(u, folder.AccessItem()); err != nil {
		return nil, err
	}

	resource, err := content.NewResource(uuid.NewString(), cmd.Title, cmd.URL, u.ID, folder)
	if err != nil {
		return nil, err
	}

	if err := h.resources.CreateResource(ctx, resource); err != nil {
		return nil, err
	}

	h.publishChange(shared.EventContentCreated, resource.ID, string(content.KindResource), u.ID)
	return resource, nil
}

// DeleteResource removes a resource.
func (h *ContentHandler) DeleteResource(ctx context.Context, actorID, resourceID string) error {
	u, err := h.principal(ctx, actorID)
	if err != nil {
		return err
	}

	resource, err := h.resources.GetResourceByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := h.authorize(u, resource.AccessItem()); err != nil {
		return err
	}

	if err := h.resources.DeleteResource(ctx, resourceID); err != nil {
		return err
	}

	h.publishChange(shared.EventContentDeleted, resourceID, string(content.KindResource), u.ID)
	return nil
}

// ErrNothingToUpdate is reserved for PATCH-style endpoints that submit
// an empty change set.
var ErrNothingToUpdate = errors.New("manage_content: nothing to update")
