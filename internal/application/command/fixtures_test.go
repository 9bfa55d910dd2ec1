package command

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(eventType shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []shared.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

func newTestStudent(t *testing.T, id string) *user.User {
	t.Helper()

	u, err := user.NewUser(user.NewUserParams{
		ID:          id,
		Email:       id + "@test.ng",
		DisplayName: "Student " + id,
		Role:        user.RoleStudent,
		Profile: user.Profile{
			University: "unilag",
			Faculty:    "science",
			Department: "physics",
			Level:      "200",
		},
	})
	require.NoError(t, err)
	return u
}

func newTestAdmin(t *testing.T, id string) *user.User {
	t.Helper()

	u, err := user.NewUser(user.NewUserParams{
		ID:          id,
		Email:       id + "@test.ng",
		DisplayName: "Admin " + id,
		Role:        user.RoleAdmin,
	})
	require.NoError(t, err)
	return u
}

// newTestCourse builds a course with one published unit of two pages and
// one unpublished unit.
func newTestCourse(t *testing.T, id string, audience access.Audience) *content.Course {
	t.Helper()

	course, err := content.NewCourse(content.NewCourseParams{
		ID:       id,
		Title:    "Mechanics",
		Subject:  "physics",
		Audience: audience,
	})
	require.NoError(t, err)

	course.Units = []content.Unit{
		{
			ID:          id + "-u1",
			Title:       "Kinematics",
			Position:    0,
			IsPublished: true,
			Pages: []content.Page{
				{ID: id + "-u1-p1", Title: "Velocity", Position: 0},
				{ID: id + "-u1-p2", Title: "Acceleration", Position: 1},
			},
		},
		{
			ID:          id + "-u2",
			Title:       "Dynamics draft",
			Position:    1,
			IsPublished: false,
		},
	}
	return course
}

// newTestQuiz builds a three-question quiz on the given course. Correct
// answers are option 0, 1 and 2 in question order.
func newTestQuiz(t *testing.T, id string, parent *content.Course) *content.Quiz {
	t.Helper()

	quiz, err := content.NewQuiz(content.NewQuizParams{
		ID:    id,
		Title: "Mechanics check",
		Questions: []content.Question{
			{ID: id + "-q1", Text: "1+1?", Options: []string{"2", "3", "4", "5"}, CorrectIndex: 0},
			{ID: id + "-q2", Text: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1},
			{ID: id + "-q3", Text: "3+3?", Options: []string{"4", "5", "6", "7"}, CorrectIndex: 2},
		},
		PassingScore: 50,
	}, parent)
	require.NoError(t, err)
	return quiz
}
