// Package http implements the REST API for TestMancer.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/command"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// Domain errors map onto HTTP statuses in one place so handlers stay
// uniform. Unknown errors become 500 without leaking internals.
// ══════════════════════════════════════════════════════════════════════════════

func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, command.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, content.ErrCourseNotFound),
		errors.Is(err, content.ErrUnitNotFound),
		errors.Is(err, content.ErrPageNotFound),
		errors.Is(err, content.ErrQuizNotFound),
		errors.Is(err, content.ErrFolderNotFound),
		errors.Is(err, content.ErrResourceNotFound),
		errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, user.ErrUserAlreadyExists),
		errors.Is(err, shared.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, content.ErrInvalidTitle),
		errors.Is(err, content.ErrInvalidSubject),
		errors.Is(err, content.ErrInvalidPassingScore),
		errors.Is(err, content.ErrInvalidCorrectIndex),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrCategoryRequired),
		errors.Is(err, leaderboard.ErrInvalidTimeframe),
		shared.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := statusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internals stay in the logs.
		message = "An unexpected error occurred"
	}
	writeJSONError(w, status, code, message)
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEWS
// The domain entities are not wire types: views control what leaves the
// process. Password hashes never appear here; correct answer indexes
// are stripped for students.
// ══════════════════════════════════════════════════════════════════════════════

type audienceView struct {
	Universities []string `json:"universities,omitempty"`
	Faculties    []string `json:"faculties,omitempty"`
	Departments  []string `json:"departments,omitempty"`
	Levels       []string `json:"levels,omitempty"`
}

type profileView struct {
	University string `json:"university,omitempty"`
	Faculty    string `json:"faculty,omitempty"`
	Department string `json:"department,omitempty"`
	Level      string `json:"level,omitempty"`
}

type userView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        string      `json:"role"`
	Category    string      `json:"category,omitempty"`
	Profile     profileView `json:"profile"`
	GemBalance  int         `json:"gem_balance"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Category:    string(u.Category),
		Profile: profileView{
			University: u.Profile.University,
			Faculty:    u.Profile.Faculty,
			Department: u.Profile.Department,
			Level:      u.Profile.Level,
		},
		GemBalance: int(u.GemBalance),
		CreatedAt:  u.CreatedAt,
	}
}

type pageView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Position int    `json:"position"`
}

type unitView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	IsPublished bool       `json:"is_published"`
	Pages       []pageView `json:"pages"`
}

type courseView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Subject     string       `json:"subject"`
	Category    string       `json:"category,omitempty"`
	Audience    audienceView `json:"audience"`
	IsActive    bool         `json:"is_active"`
	Units       []unitView   `json:"units"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// toCourseView renders a course for the given role: students only see
// published units, matching the progress denominator.
func toCourseView(c *content.Course, role user.Role) courseView {
	units := c.VisibleUnits(role)
	unitViews := make([]unitView, len(units))
	for i, unit := range units {
		pages := make([]pageView, len(unit.Pages))
		for j, p := range unit.Pages {
			pages[j] = pageView{ID: p.ID, Title: p.Title, Body: p.Body, Position: p.Position}
		}
		unitViews[i] = unitView{
			ID:          unit.ID,
			Title:       unit.Title,
			Position:    unit.Position,
			IsPublished: unit.IsPublished,
			Pages:       pages,
		}
	}

	return courseView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Subject:     string(c.Subject),
		Category:    string(c.Category),
		Audience:    toAudienceView(c.Audience),
		IsActive:    c.IsActive,
		Units:       unitViews,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toAudienceView(a access.Audience) audienceView {
	return audienceView{
		Universities: a.Universities,
		Faculties:    a.Faculties,
		Departments:  a.Departments,
		Levels:       a.Levels,
	}
}

type questionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`

	// CorrectIndex is only populated for management roles.
	CorrectIndex *int `json:"correct_index,omitempty"`
}

type quizView struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	Title        string         `json:"title"`
	Subject      string         `json:"subject"`
	CourseID     string         `json:"course_id"`
	UnitID       string         `json:"unit_id,omitempty"`
	PageID       string         `json:"page_id,omitempty"`
	IsActive     bool           `json:"is_active"`
	Questions    []questionView `json:"questions"`
	PassingScore int            `json:"passing_score"`
	AttemptCount int            `json:"attempt_count"`
	AverageScore int            `json:"average_score"`
}

// toQuizView renders a quiz. Correct answer indexes are included only
// when includeAnswers is set (management roles).
func toQuizView(q *content.Quiz, includeAnswers bool) quizView {
	questions := make([]questionView, len(q.Questions))
	for i, question := range q.Questions {
		qv := questionView{
			ID:      question.ID,
			Text:    question.Text,
			Options: question.Options,
		}
		if includeAnswers {
			idx := question.CorrectIndex
			qv.CorrectIndex = &idx
		}
		questions[i] = qv
	}

	return quizView{
		ID:           q.ID,
		Kind:         string(q.Kind),
		Title:        q.Title,
		Subject:      string(q.Subject),
		CourseID:     q.CourseID,
		UnitID:       q.UnitID,
		PageID:       q.PageID,
		IsActive:     q.IsActive,
		Questions:    questions,
		PassingScore: q.PassingScore,
		AttemptCount: q.AttemptCount,
		AverageScore: q.AverageScore,
	}
}

type folderView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category,omitempty"`
	IsActive  bool           `json:"is_active"`
	Resources []resourceView `json:"resources"`
}

type resourceView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	FolderID string `json:"folder_id"`
}

type entryView struct {
	Rank           int       `json:"rank"`
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	Score          int       `json:"score"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func toEntryView(e *leaderboard.Entry) entryView {
	return entryView{
		Rank:           int(e.Rank),
		UserID:         e.UserID,
		DisplayName:    e.DisplayName,
		Score:          int(e.Score),
		LastActivityAt: e.LastActivityAt,
	}
}

func toEntryViews(entries []*leaderboard.Entry) []entryView {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = toEntryView(e)
	}
	return views
}
