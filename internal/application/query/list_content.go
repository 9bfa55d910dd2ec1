package query

import (
	"context"
	"errors"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT QUERIES
// Listing is audience-aware: repositories return everything, the policy
// filters per requester. Students never see inactive items; management
// roles list them when IncludeInactive is set.
// ══════════════════════════════════════════════════════════════════════════════

// ContentQueryHandler handles catalog reads.
type ContentQueryHandler struct {
	users     user.Repository
	courses   content.CourseRepository
	quizzes   content.QuizRepository
	resources content.ResourceRepository
	policy    access.Policy
}

// NewContentQueryHandler creates a new ContentQueryHandler.
func NewContentQueryHandler(
	users user.Repository,
	courses content.CourseRepository,
	quizzes content.QuizRepository,
	resources content.ResourceRepository,
	policy access.Policy,
) *ContentQueryHandler {
	return &ContentQueryHandler{
		users:     users,
		courses:   courses,
		quizzes:   quizzes,
		resources: resources,
		policy:    policy,
	}
}

// ListContentQuery selects a page of the catalog for one requester.
type ListContentQuery struct {
	// UserID is the requester.
	UserID string

	// Offset and Limit paginate the repository scan before filtering.
	Offset int
	Limit  int
}

// Validate validates the query.
func (q ListContentQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("list_content: user_id is required")
	}
	return nil
}

func (q ListContentQuery) listOptions(role user.Role) content.ListOptions {
	opts := content.DefaultListOptions()
	if q.Offset > 0 {
		opts.Offset = q.Offset
	}
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	opts.IncludeInactive = role.IsManagement()
	return opts
}

func (h *ContentQueryHandler) principalFor(ctx context.Context, userID string) (access.Principal, error) {
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.policy.PrincipalFor(u), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// ListCourses returns the courses visible to the requester.
// A student additionally sees only published units inside each course.
func (h *ContentQueryHandler) ListCourses(ctx context.Context, q ListContentQuery) ([]*content.Course, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	principal, err := h.principalFor(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	courses, err := h.courses.List(ctx, q.listOptions(principal.Role()))
	if err != nil {
		return nil, err
	}

	visible := make([]*content.Course, 0, len(courses))
	for _, c := range courses {
		if principal.CanAccess(c.AccessItem(), access.OpView) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// GetCourse returns one course if the requester may view it.
func (h *ContentQueryHandler) GetCourse(ctx context.Context, userID, courseID string) (*content.Course, error) {
	principal, err := h.principalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := h.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(c.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Quizzes
// ─────────────────────────────────────────────────────────────────────────────

// ListQuizzesByCourse returns the quizzes of a course visible to the
// requester. The course itself must be visible first.
func (h *ContentQueryHandler) ListQuizzesByCourse(ctx context.Context, userID, courseID string) ([]*content.Quiz, error) {
	principal, err := h.principalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	course, err := h.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(course.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}

	quizzes, err := h.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	visible := make([]*content.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if principal.CanAccess(quiz.AccessItem(), access.OpView) {
			visible = append(visible, quiz)
		}
	}
	return visible, nil
}

// GetQuiz returns one quiz if the requester may view it. Correct
// answers stay server-side; the HTTP layer strips them for students.
func (h *ContentQueryHandler) GetQuiz(ctx context.Context, userID, quizID string) (*content.Quiz, error) {
	principal, err := h.principalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	quiz, err := h.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(quiz.AccessItem(), access.OpView) {
		return nil, shared.ErrForbidden
	}
	return quiz, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Resource folders
// ─────────────────────────────────────────────────────────────────────────────

// FolderView is a folder together with its visible resources.
type FolderView struct {
	Folder    *content.ResourceFolder
	Resources []*content.Resource
}

// ListFolders returns the resource folders visible to the requester,
// each with its visible resources. Folders match by every populated
// audience field, unlike the rest of the catalog.
func (h *ContentQueryHandler) ListFolders(ctx context.Context, q ListContentQuery) ([]*FolderView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	principal, err := h.principalFor(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	folders, err := h.resources.ListFolders(ctx, q.listOptions(principal.Role()))
	if err != nil {
		return nil, err
	}

	views := make([]*FolderView, 0, len(folders))
	for _, f := range folders {
		if !principal.CanAccess(f.AccessItem(), access.OpView) {
			continue
		}

		items, err := h.resources.ListByFolder(ctx, f.ID)
		if err != nil {
			return nil, err
		}

		visible := make([]*content.Resource, 0, len(items))
		for _, r := range items {
			if principal.CanAccess(r.AccessItem(), access.OpView) {
				visible = append(visible, r)
			}
		}
		views = append(views, &FolderView{Folder: f, Resources: visible})
	}
	return views, nil
}
