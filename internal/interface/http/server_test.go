package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/command"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/query"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/reward"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/interface/http/handlers"
)

// testEnv wires the full API against the in-memory persistence layer.
type testEnv struct {
	server  *Server
	users   *memory.UserRepository
	courses *memory.CourseRepository
	quizzes *memory.QuizRepository
	ledger  *memory.Ledger
	lbRepo  *memory.LeaderboardRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:   memory.NewUserRepository(),
		courses: memory.NewCourseRepository(),
		quizzes: memory.NewQuizRepository(),
		ledger:  memory.NewLedger(),
		lbRepo:  memory.NewLeaderboardRepository(),
	}

	resources := memory.NewResourceRepository()
	activity := memory.NewActivityLog()
	sessions := memory.NewSessionStore(time.Minute)
	rewards := reward.NewService(env.ledger)
	policy := access.Policy{}

	resolver := func(ctx context.Context, token string) (handlers.Identity, error) {
		sess, err := sessions.Get(ctx, token)
		if err != nil {
			return handlers.Identity{}, err
		}
		return handlers.Identity{UserID: sess.UserID, Role: sess.Role}, nil
	}

	cfg := DefaultConfig()
	cfg.EnableCORS = false
	cfg.RateLimitPerMinute = 0

	env.server = NewServer(cfg, Dependencies{
		Auth:         command.NewAuthHandler(env.users, sessions, bcrypt.MinCost, nil),
		Users:        command.NewUserHandler(env.users, nil),
		SubmitQuiz:   command.NewSubmitQuizHandler(env.users, env.quizzes, rewards, activity, policy, nil),
		CompleteUnit: command.NewCompleteUnitHandler(env.users, env.courses, rewards, activity, policy, nil),
		CompletePage: command.NewCompletePageHandler(env.users, env.courses, rewards, activity, policy, nil),
		Content:      command.NewContentHandler(env.users, env.courses, env.quizzes, resources, policy, nil),
		Leaderboard:  query.NewGetLeaderboardHandler(env.lbRepo, nil, time.Minute),
		Subjects:     query.NewListSubjectsHandler(env.lbRepo),
		Progress:     query.NewProgressHandler(env.users, env.courses, rewards, activity, policy),
		Catalog:      query.NewContentQueryHandler(env.users, env.courses, env.quizzes, resources, policy),
		Rewards:      rewards,
		UserReader:   env.users,
		SessionAuth:  handlers.NewSessionAuth(resolver),
	})
	return env
}

// seedQuiz stores a public physics quiz with three questions.
func (env *testEnv) seedQuiz(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	course, err := content.NewCourse(content.NewCourseParams{
		ID:      "course-1",
		Title:   "Mechanics",
		Subject: "physics",
	})
	require.NoError(t, err)
	course.Units = []content.Unit{{
		ID:          "unit-1",
		Title:       "Kinematics",
		IsPublished: true,
		Pages:       []content.Page{{ID: "page-1", Title: "Velocity"}},
	}}
	require.NoError(t, env.courses.Create(ctx, course))

	quiz, err := content.NewQuiz(content.NewQuizParams{
		ID:    "quiz-1",
		Title: "Mechanics check",
		Questions: []content.Question{
			{ID: "q1", Text: "1+1?", Options: []string{"2", "3"}, CorrectIndex: 0},
			{ID: "q2", Text: "2+2?", Options: []string{"3", "4"}, CorrectIndex: 1},
			{ID: "q3", Text: "3+3?", Options: []string{"5", "6"}, CorrectIndex: 1},
		},
		PassingScore: 50,
	}, course)
	require.NoError(t, err)
	require.NoError(t, env.quizzes.Create(ctx, quiz))
	env.ledger.SetSubject("quiz-1", "physics")
}

// do executes a request against the full middleware chain.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rec, req)
	return rec
}

// apiData decodes the data field of the standard response envelope.
func apiData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "body: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

// register creates an account over the API and registers it in the
// ledger, returning the user ID and the session token.
func (env *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":        email,
		"password":     "correct-horse",
		"display_name": "Ada",
		"profile": map[string]string{
			"university": "unilag",
			"faculty":    "science",
			"department": "physics",
			"level":      "200",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		User struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"user"`
		Token string `json:"token"`
	}
	apiData(t, rec, &result)

	env.ledger.RegisterUser(result.User.ID, result.User.DisplayName)
	return result.User.ID, result.Token
}

func TestServer_AuthFlow(t *testing.T) {
	env := newTestEnv(t)

	_, token := env.register(t, "ada@test.ng")

	rec := env.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	apiData(t, rec, &me)
	assert.Equal(t, "ada@test.ng", me.Email)
	assert.Equal(t, "user", me.Role)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked token must not authenticate")
}

func TestServer_ProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/courses", "/api/v1/me/balance"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/me", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_SubmitQuizAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedQuiz(t)
	_, token := env.register(t, "ada@test.ng")

	submit := func() map[string]int {
		rec := env.do(t, http.MethodPost, "/api/v1/quizzes/quiz-1/submit", token, map[string]interface{}{
			"answers": []int{0, 1, 1},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result map[string]int
		apiData(t, rec, &result)
		return result
	}

	first := submit()
	assert.Equal(t, 3, first["gems_earned"])
	assert.Equal(t, 3, first["new_balance"])

	replay := submit()
	assert.Zero(t, replay["gems_earned"], "a replay never pays twice")
	assert.Equal(t, 3, replay["new_balance"])

	rec := env.do(t, http.MethodGet, "/api/v1/me/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance map[string]int
	apiData(t, rec, &balance)
	assert.Equal(t, 3, balance["gem_balance"])
}

func TestServer_SubmitQuizAnswerCountMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedQuiz(t)
	_, token := env.register(t, "ada@test.ng")

	// Two answers against a three-question quiz is client input error,
	// not a server fault.
	rec := env.do(t, http.MethodPost, "/api/v1/quizzes/quiz-1/submit", token, map[string]interface{}{
		"answers": []int{0, 1},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "validation_failed", envelope.Error.Code)
	assert.NotEqual(t, "An unexpected error occurred", envelope.Error.Message)
}

func TestServer_CompleteUnitAndProgress(t *testing.T) {
	env := newTestEnv(t)
	env.seedQuiz(t)
	_, token := env.register(t, "ada@test.ng")

	rec := env.do(t, http.MethodPost, "/api/v1/courses/course-1/units/unit-1/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var completed struct {
		Awarded    bool `json:"awarded"`
		GemsEarned int  `json:"gems_earned"`
	}
	apiData(t, rec, &completed)
	assert.True(t, completed.Awarded)
	assert.Equal(t, reward.GemsPerUnit, completed.GemsEarned)

	rec = env.do(t, http.MethodGet, "/api/v1/me/courses/course-1/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress struct {
		CompletedUnits int `json:"completed_units"`
		TotalUnits     int `json:"total_units"`
		Percentage     int `json:"percentage"`
	}
	apiData(t, rec, &progress)
	assert.Equal(t, 1, progress.CompletedUnits)
	assert.Equal(t, 1, progress.TotalUnits)
	assert.Equal(t, 100, progress.Percentage)
}

func TestServer_QuizViewHidesAnswersFromStudents(t *testing.T) {
	env := newTestEnv(t)
	env.seedQuiz(t)
	_, token := env.register(t, "ada@test.ng")

	rec := env.do(t, http.MethodGet, "/api/v1/quizzes/quiz-1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quiz struct {
		Questions []map[string]json.RawMessage `json:"questions"`
	}
	apiData(t, rec, &quiz)
	require.Len(t, quiz.Questions, 3)
	for i, q := range quiz.Questions {
		assert.NotContains(t, q, "correct_index", "question %d leaks the answer", i)
	}
}

func TestServer_LeaderboardIsPublic(t *testing.T) {
	env := newTestEnv(t)

	ranking := leaderboard.NewRanking()
	entry, err := leaderboard.NewEntry("u1", "Ada", leaderboard.SubjectAll, leaderboard.TimeframeAll, 10, time.Now())
	require.NoError(t, err)
	require.NoError(t, ranking.Add(entry))
	ranking.Rank()
	require.NoError(t, env.lbRepo.ReplaceBucket(context.Background(),
		leaderboard.NewBoard(leaderboard.SubjectAll, leaderboard.TimeframeAll, ranking)))

	rec := env.do(t, http.MethodGet, "/api/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var board struct {
		Subject string `json:"subject"`
		Entries []struct {
			UserID string `json:"user_id"`
			Rank   int    `json:"rank"`
		} `json:"entries"`
	}
	apiData(t, rec, &board)
	assert.Equal(t, "all", board.Subject)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "u1", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
}

func TestServer_AssignRoleForbiddenForStudents(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.register(t, "ada@test.ng")

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%s/role", userID), token, map[string]string{
		"role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@test.ng")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@test.ng",
		"password": "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_HealthWithoutChecker(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
