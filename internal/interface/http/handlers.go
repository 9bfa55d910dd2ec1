// Package http implements the REST API for TestMancer.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/command"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/application/query"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/leaderboard"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// requester returns the authenticated identity. Handlers behind
// handlers.Require can rely on ok being true.
func requester(r *http.Request) (handlers.Identity, bool) {
	return handlers.IdentityFromContext(r.Context())
}

// decode reads a JSON body with a 1 MB cap.
func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "TestMancer API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":      "/health",
			"auth":        "/api/v1/auth/login",
			"courses":     "/api/v1/courses",
			"leaderboard": "/api/v1/leaderboard",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	DisplayName string      `json:"display_name"`
	Profile     profileView `json:"profile"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "email, password and display_name are required")
		return
	}

	result, err := s.deps.Auth.Register(r.Context(), command.RegisterCommand{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Profile: user.Profile{
			University: req.Profile.University,
			Faculty:    req.Profile.Faculty,
			Department: req.Profile.Department,
			Level:      req.Profile.Level,
		},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  toUserView(result.User),
		"token": result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	result, err := s.deps.Auth.Login(r.Context(), command.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  toUserView(result.User),
		"token": result.Token,
	})
}

// handleLogout handles POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := handlers.TokenFromRequest(r)
	if err := s.deps.Auth.Logout(r.Context(), token); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetMe handles GET /api/v1/me
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	u, err := s.deps.UserReader.GetByID(r.Context(), identity.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	view := toUserView(u)
	// The ledger is the source of truth for the balance.
	if balance, err := s.deps.Rewards.Balance(r.Context(), u.ID); err == nil {
		view.GemBalance = balance
	}

	writeJSON(w, http.StatusOK, view)
}

type updateProfileRequest struct {
	DisplayName string      `json:"display_name"`
	Profile     profileView `json:"profile"`
}

// handleUpdateProfile handles PUT /api/v1/me/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	u, err := s.deps.Users.UpdateProfile(r.Context(), command.UpdateProfileCommand{
		UserID:      identity.UserID,
		DisplayName: req.DisplayName,
		Profile: user.Profile{
			University: req.Profile.University,
			Faculty:    req.Profile.Faculty,
			Department: req.Profile.Department,
			Level:      req.Profile.Level,
		},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(u))
}

// handleGetBalance handles GET /api/v1/me/balance
func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	balance, err := s.deps.Rewards.Balance(r.Context(), identity.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"gem_balance": balance})
}

// handleGetStreak handles GET /api/v1/me/streak
func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	streak, err := s.deps.Progress.GetStreak(r.Context(), identity.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_streak": streak.CurrentStreak,
		"active_today":   streak.ActiveToday,
	})
}

// handleGetSummary handles GET /api/v1/me/summary
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	summary, err := s.deps.Progress.GetSubjectSummary(r.Context(), identity.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleGetCourseProgress handles GET /api/v1/me/courses/{id}/progress
func (s *Server) handleGetCourseProgress(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)
	courseID := r.PathValue("id")

	view, err := s.deps.Progress.GetCourseProgress(r.Context(), identity.UserID, courseID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id":       view.CourseID,
		"title":           view.Title,
		"subject":         string(view.Subject),
		"completed_units": view.Progress.CompletedUnits,
		"total_units":     view.Progress.TotalUnits,
		"percentage":      view.Progress.Percentage,
		"completed_pages": view.CompletedPages,
		"total_pages":     view.TotalPages,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCourses handles GET /api/v1/courses
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	courses, err := s.deps.Catalog.ListCourses(r.Context(), query.ListContentQuery{
		UserID: identity.UserID,
		Offset: getQueryParamInt(r, "offset", 0),
		Limit:  getQueryParamInt(r, "limit", 50),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	role := user.Role(identity.Role)
	views := make([]courseView, len(courses))
	for i, c := range courses {
		views[i] = toCourseView(c, role)
	}

	writeJSONWithMeta(w, r, http.StatusOK, views, &ResponseMeta{TotalCount: len(views)})
}

// handleGetCourse handles GET /api/v1/courses/{id}
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	c, err := s.deps.Catalog.GetCourse(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseView(c, user.Role(identity.Role)))
}

// handleListQuizzes handles GET /api/v1/courses/{id}/quizzes
func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	quizzes, err := s.deps.Catalog.ListQuizzesByCourse(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	includeAnswers := user.Role(identity.Role).IsManagement()
	views := make([]quizView, len(quizzes))
	for i, q := range quizzes {
		views[i] = toQuizView(q, includeAnswers)
	}

	writeJSON(w, http.StatusOK, views)
}

// handleGetQuiz handles GET /api/v1/quizzes/{id}
func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	q, err := s.deps.Catalog.GetQuiz(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuizView(q, user.Role(identity.Role).IsManagement()))
}

// handleListFolders handles GET /api/v1/folders
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	folders, err := s.deps.Catalog.ListFolders(r.Context(), query.ListContentQuery{
		UserID: identity.UserID,
		Offset: getQueryParamInt(r, "offset", 0),
		Limit:  getQueryParamInt(r, "limit", 50),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]folderView, len(folders))
	for i, f := range folders {
		resources := make([]resourceView, len(f.Resources))
		for j, res := range f.Resources {
			resources[j] = resourceView{ID: res.ID, Title: res.Title, URL: res.URL, FolderID: res.FolderID}
		}
		views[i] = folderView{
			ID:        f.Folder.ID,
			Name:      f.Folder.Name,
			Category:  string(f.Folder.Category),
			IsActive:  f.Folder.IsActive,
			Resources: resources,
		}
	}

	writeJSON(w, http.StatusOK, views)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitQuizRequest struct {
	Answers []int `json:"answers"`
}

// handleSubmitQuiz handles POST /api/v1/quizzes/{id}/submit
func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req submitQuizRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}
	if len(req.Answers) == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "answers are required")
		return
	}

	result, err := s.deps.SubmitQuiz.Handle(r.Context(), command.SubmitQuizCommand{
		UserID:  identity.UserID,
		QuizID:  r.PathValue("id"),
		Answers: req.Answers,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"correct_count": result.CorrectCount,
		"total":         result.Total,
		"percentage":    result.Percentage,
		"passed":        result.Passed,
		"gems_earned":   result.GemsEarned,
		"new_balance":   result.NewBalance,
	})
}

// handleCompleteUnit handles POST /api/v1/courses/{courseID}/units/{unitID}/complete
func (s *Server) handleCompleteUnit(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	result, err := s.deps.CompleteUnit.Handle(r.Context(), command.CompleteUnitCommand{
		UserID:   identity.UserID,
		CourseID: r.PathValue("courseID"),
		UnitID:   r.PathValue("unitID"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"awarded":     result.Awarded,
		"gems_earned": result.GemsEarned,
		"new_balance": result.NewBalance,
	})
}

// handleCompletePage handles POST /api/v1/courses/{courseID}/pages/{pageID}/complete
func (s *Server) handleCompletePage(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	if err := s.deps.CompletePage.Handle(r.Context(), command.CompletePageCommand{
		UserID:   identity.UserID,
		CourseID: r.PathValue("courseID"),
		PageID:   r.PathValue("pageID"),
	}); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := query.GetLeaderboardQuery{
		Subject:   leaderboard.Subject(getQueryParam(r, "subject", string(leaderboard.SubjectAll))),
		Timeframe: leaderboard.Timeframe(getQueryParam(r, "timeframe", string(leaderboard.TimeframeAll))),
		Limit:     getQueryParamInt(r, "limit", 20),
	}
	if identity, ok := requester(r); ok {
		q.UserID = identity.UserID
	}

	view, err := s.deps.Leaderboard.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := map[string]interface{}{
		"subject":   string(view.Subject),
		"timeframe": string(view.Timeframe),
		"entries":   toEntryViews(view.Entries),
	}
	if view.Me != nil {
		me := toEntryView(view.Me)
		data["me"] = me
	}

	writeJSONWithMeta(w, r, http.StatusOK, data, &ResponseMeta{
		TotalCount: view.TotalCount,
		FromCache:  view.FromCache,
	})
}

// handleListSubjects handles GET /api/v1/leaderboard/subjects
func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.deps.Subjects.Handle(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	names := make([]string, len(subjects))
	for i, subject := range subjects {
		names[i] = string(subject)
	}

	writeJSON(w, http.StatusOK, names)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// The commands re-check the audience policy with OpManage; these
// handlers only shape the payloads.
// ══════════════════════════════════════════════════════════════════════════════

type pageRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

type unitRequest struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Position    int           `json:"position"`
	IsPublished bool          `json:"is_published"`
	Pages       []pageRequest `json:"pages"`
}

func toUnits(reqs []unitRequest) []content.Unit {
	units := make([]content.Unit, len(reqs))
	for i, u := range reqs {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		pages := make([]content.Page, len(u.Pages))
		for j, p := range u.Pages {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			pages[j] = content.Page{ID: p.ID, Title: p.Title, Body: p.Body, Position: p.Position}
		}
		units[i] = content.Unit{
			ID:          u.ID,
			Title:       u.Title,
			Position:    u.Position,
			IsPublished: u.IsPublished,
			Pages:       pages,
		}
	}
	return units
}

type audienceRequest struct {
	Universities []string `json:"universities"`
	Faculties    []string `json:"faculties"`
	Departments  []string `json:"departments"`
	Levels       []string `json:"levels"`
}

func (a audienceRequest) toAudience() access.Audience {
	return access.Audience{
		Universities: a.Universities,
		Faculties:    a.Faculties,
		Departments:  a.Departments,
		Levels:       a.Levels,
	}
}

type createCourseRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Subject     string          `json:"subject"`
	Category    string          `json:"category"`
	Audience    audienceRequest `json:"audience"`
	Units       []unitRequest   `json:"units"`
}

// handleCreateCourse handles POST /api/v1/admin/courses
func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req createCourseRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	course, err := s.deps.Content.CreateCourse(r.Context(), command.CreateCourseCommand{
		ActorID:     identity.UserID,
		Title:       req.Title,
		Description: req.Description,
		Subject:     content.Subject(req.Subject),
		Category:    user.Category(req.Category),
		Audience:    req.Audience.toAudience(),
		Units:       toUnits(req.Units),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseView(course, user.Role(identity.Role)))
}

type updateCourseRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Audience    *audienceRequest `json:"audience"`
	Units       []unitRequest    `json:"units"`
	IsActive    *bool            `json:"is_active"`
}

// handleUpdateCourse handles PATCH /api/v1/admin/courses/{id}
func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req updateCourseRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.UpdateCourseCommand{
		ActorID:     identity.UserID,
		CourseID:    r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Audience != nil {
		audience := req.Audience.toAudience()
		cmd.Audience = &audience
	}
	if req.Units != nil {
		cmd.Units = toUnits(req.Units)
	}

	course, err := s.deps.Content.UpdateCourse(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseView(course, user.Role(identity.Role)))
}

// handleDeleteCourse handles DELETE /api/v1/admin/courses/{id}
func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	if err := s.deps.Content.DeleteCourse(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type questionRequest struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type createQuizRequest struct {
	Kind         string            `json:"kind"`
	Title        string            `json:"title"`
	UnitID       string            `json:"unit_id"`
	PageID       string            `json:"page_id"`
	Questions    []questionRequest `json:"questions"`
	PassingScore int               `json:"passing_score"`
}

// handleCreateQuiz handles POST /api/v1/admin/courses/{id}/quizzes
func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req createQuizRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	questions := make([]content.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = content.Question{
			ID:           q.ID,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
		}
	}

	kind := content.QuizKind(req.Kind)
	if kind == "" {
		kind = content.QuizKindQuiz
	}

	quiz, err := s.deps.Content.CreateQuiz(r.Context(), command.CreateQuizCommand{
		ActorID:      identity.UserID,
		CourseID:     r.PathValue("id"),
		Kind:         kind,
		Title:        req.Title,
		UnitID:       req.UnitID,
		PageID:       req.PageID,
		Questions:    questions,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuizView(quiz, true))
}

// handleDeleteQuiz handles DELETE /api/v1/admin/quizzes/{id}
func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	if err := s.deps.Content.DeleteQuiz(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createFolderRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Audience audienceRequest `json:"audience"`
}

// handleCreateFolder handles POST /api/v1/admin/folders
func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req createFolderRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	folder, err := s.deps.Content.CreateFolder(r.Context(), command.CreateFolderCommand{
		ActorID:  identity.UserID,
		Name:     req.Name,
		Category: user.Category(req.Category),
		Audience: req.Audience.toAudience(),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folderView{
		ID:       folder.ID,
		Name:     folder.Name,
		Category: string(folder.Category),
		IsActive: folder.IsActive,
	})
}

type updateFolderRequest struct {
	Name     string           `json:"name"`
	Audience *audienceRequest `json:"audience"`
	IsActive *bool            `json:"is_active"`
}

// handleUpdateFolder handles PATCH /api/v1/admin/folders/{id}
func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req updateFolderRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.UpdateFolderCommand{
		ActorID:  identity.UserID,
		FolderID: r.PathValue("id"),
		Name:     req.Name,
		IsActive: req.IsActive,
	}
	if req.Audience != nil {
		audience := req.Audience.toAudience()
		cmd.Audience = &audience
	}

	folder, err := s.deps.Content.UpdateFolder(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folderView{
		ID:       folder.ID,
		Name:     folder.Name,
		Category: string(folder.Category),
		IsActive: folder.IsActive,
	})
}

// handleDeleteFolder handles DELETE /api/v1/admin/folders/{id}
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	if err := s.deps.Content.DeleteFolder(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type createResourceRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// handleCreateResource handles POST /api/v1/admin/folders/{id}/resources
func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req createResourceRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	resource, err := s.deps.Content.CreateResource(r.Context(), command.CreateResourceCommand{
		ActorID:  identity.UserID,
		FolderID: r.PathValue("id"),
		Title:    req.Title,
		URL:      req.URL,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resourceView{
		ID:       resource.ID,
		Title:    resource.Title,
		URL:      resource.URL,
		FolderID: resource.FolderID,
	})
}

// handleDeleteResource handles DELETE /api/v1/admin/resources/{id}
func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	if err := s.deps.Content.DeleteResource(r.Context(), identity.UserID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type assignRoleRequest struct {
	Role     string          `json:"role"`
	Category string          `json:"category"`
	Scope    audienceRequest `json:"scope"`
}

// handleAssignRole handles PUT /api/v1/admin/users/{id}/role
func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	identity, _ := requester(r)

	var req assignRoleRequest
	if err := decode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	u, err := s.deps.Users.AssignRole(r.Context(), command.AssignRoleCommand{
		ActorID:  identity.UserID,
		UserID:   r.PathValue("id"),
		Role:     user.Role(req.Role),
		Category: user.Category(req.Category),
		Scope: user.Scope{
			Universities: req.Scope.Universities,
			Faculties:    req.Scope.Faculties,
			Departments:  req.Scope.Departments,
			Levels:       req.Scope.Levels,
		},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(u))
}
