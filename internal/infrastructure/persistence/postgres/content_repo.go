// Package postgres implements the PostgreSQL persistence layer for TestMancer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements content.CourseRepository for PostgreSQL.
// Units and pages are stored inline as JSONB: they are always read and
// written together with their course.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// unitDoc mirrors content.Unit for JSONB storage.
type unitDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	IsPublished bool      `json:"is_published"`
	Pages       []pageDoc `json:"pages"`
}

type pageDoc struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

func unitsToJSON(units []content.Unit) ([]byte, error) {
	docs := make([]unitDoc, 0, len(units))
	for _, u := range units {
		pages := make([]pageDoc, 0, len(u.Pages))
		for _, p := range u.Pages {
			pages = append(pages, pageDoc{ID: p.ID, Title: p.Title, Body: p.Body, Position: p.Position})
		}
		docs = append(docs, unitDoc{ID: u.ID, Title: u.Title, Position: u.Position, IsPublished: u.IsPublished, Pages: pages})
	}
	return json.Marshal(docs)
}

func unitsFromJSON(data []byte) ([]content.Unit, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var docs []unitDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal units: %w", err)
	}
	units := make([]content.Unit, 0, len(docs))
	for _, d := range docs {
		pages := make([]content.Page, 0, len(d.Pages))
		for _, p := range d.Pages {
			pages = append(pages, content.Page{ID: p.ID, Title: p.Title, Body: p.Body, Position: p.Position})
		}
		units = append(units, content.Unit{ID: d.ID, Title: d.Title, Position: d.Position, IsPublished: d.IsPublished, Pages: pages})
	}
	return units, nil
}

// Create creates a new course with its units and pages.
func (r *CourseRepository) Create(ctx context.Context, c *content.Course) error {
	unitsJSON, err := unitsToJSON(c.Units)
	if err != nil {
		return fmt.Errorf("failed to marshal units: %w", err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO courses (
			id, title, description, subject, category, is_active,
			audience_universities, audience_faculties, audience_departments, audience_levels,
			units, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		c.ID, c.Title, c.Description, string(c.Subject), string(c.Category), c.IsActive,
		c.Audience.Universities, c.Audience.Faculties, c.Audience.Departments, c.Audience.Levels,
		unitsJSON, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID returns a course with its units and pages.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*content.Course, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT id, title, description, subject, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   units, created_by, created_at, updated_at
		FROM courses
		WHERE id = $1
	`, id)
	return scanCourse(row)
}

// Update updates a course, including its unit structure.
func (r *CourseRepository) Update(ctx context.Context, c *content.Course) error {
	unitsJSON, err := unitsToJSON(c.Units)
	if err != nil {
		return fmt.Errorf("failed to marshal units: %w", err)
	}

	result, err := r.conn.Exec(ctx, `
		UPDATE courses SET
			title = $1, description = $2, subject = $3, category = $4, is_active = $5,
			audience_universities = $6, audience_faculties = $7,
			audience_departments = $8, audience_levels = $9,
			units = $10, updated_at = $11
		WHERE id = $12
	`,
		c.Title, c.Description, string(c.Subject), string(c.Category), c.IsActive,
		c.Audience.Universities, c.Audience.Faculties, c.Audience.Departments, c.Audience.Levels,
		unitsJSON, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrCourseNotFound
	}
	return nil
}

// Delete deletes a course. Quizzes cascade via foreign key.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrCourseNotFound
	}
	return nil
}

// List returns courses with pagination. Audience filtering happens in the
// application layer through access.Policy.
func (r *CourseRepository) List(ctx context.Context, opts content.ListOptions) ([]*content.Course, error) {
	query := `
		SELECT id, title, description, subject, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   units, created_by, created_at, updated_at
		FROM courses
	`
	if !opts.IncludeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*content.Course
	for rows.Next() {
		c, err := scanCourseFromRows(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func scanCourse(row pgx.Row) (*content.Course, error) {
	var c content.Course
	var subject, category string
	var unitsJSON []byte

	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &subject, &category, &c.IsActive,
		&c.Audience.Universities, &c.Audience.Faculties, &c.Audience.Departments, &c.Audience.Levels,
		&unitsJSON, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, content.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Subject = content.Subject(subject)
	c.Category = user.Category(category)
	c.Units, err = unitsFromJSON(unitsJSON)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCourseFromRows(rows pgx.Rows) (*content.Course, error) {
	var c content.Course
	var subject, category string
	var unitsJSON []byte

	err := rows.Scan(
		&c.ID, &c.Title, &c.Description, &subject, &category, &c.IsActive,
		&c.Audience.Universities, &c.Audience.Faculties, &c.Audience.Departments, &c.Audience.Levels,
		&unitsJSON, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Subject = content.Subject(subject)
	c.Category = user.Category(category)
	c.Units, err = unitsFromJSON(unitsJSON)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuizRepository implements content.QuizRepository for PostgreSQL.
type QuizRepository struct {
	conn *Connection
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(conn *Connection) *QuizRepository {
	return &QuizRepository{conn: conn}
}

type questionDoc struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

func questionsToJSON(questions []content.Question) ([]byte, error) {
	docs := make([]questionDoc, 0, len(questions))
	for _, q := range questions {
		docs = append(docs, questionDoc{ID: q.ID, Text: q.Text, Options: q.Options, CorrectIndex: q.CorrectIndex})
	}
	return json.Marshal(docs)
}

func questionsFromJSON(data []byte) ([]content.Question, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var docs []questionDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	questions := make([]content.Question, 0, len(docs))
	for _, d := range docs {
		questions = append(questions, content.Question{ID: d.ID, Text: d.Text, Options: d.Options, CorrectIndex: d.CorrectIndex})
	}
	return questions, nil
}

const quizColumns = `id, kind, title, subject, course_id, COALESCE(unit_id::text, ''), COALESCE(page_id::text, ''),
	   category, is_active,
	   audience_universities, audience_faculties, audience_departments, audience_levels,
	   questions, passing_score, attempt_count, average_score,
	   created_by, created_at, updated_at`

// Create creates a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *content.Quiz) error {
	questionsJSON, err := questionsToJSON(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO quizzes (
			id, kind, title, subject, course_id, unit_id, page_id, category, is_active,
			audience_universities, audience_faculties, audience_departments, audience_levels,
			questions, passing_score, attempt_count, average_score,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		q.ID, string(q.Kind), q.Title, string(q.Subject), q.CourseID,
		nullableID(q.UnitID), nullableID(q.PageID), string(q.Category), q.IsActive,
		q.Audience.Universities, q.Audience.Faculties, q.Audience.Departments, q.Audience.Levels,
		questionsJSON, q.PassingScore, q.AttemptCount, q.AverageScore,
		q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetByID returns a quiz with its questions.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*content.Quiz, error) {
	row := r.conn.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM quizzes WHERE id = $1", quizColumns), id)
	return scanQuiz(row)
}

// Update updates a quiz, including its attempt statistics.
func (r *QuizRepository) Update(ctx context.Context, q *content.Quiz) error {
	questionsJSON, err := questionsToJSON(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	result, err := r.conn.Exec(ctx, `
		UPDATE quizzes SET
			kind = $1, title = $2, subject = $3, category = $4, is_active = $5,
			audience_universities = $6, audience_faculties = $7,
			audience_departments = $8, audience_levels = $9,
			questions = $10, passing_score = $11, attempt_count = $12, average_score = $13,
			updated_at = $14
		WHERE id = $15
	`,
		string(q.Kind), q.Title, string(q.Subject), string(q.Category), q.IsActive,
		q.Audience.Universities, q.Audience.Faculties, q.Audience.Departments, q.Audience.Levels,
		questionsJSON, q.PassingScore, q.AttemptCount, q.AverageScore,
		time.Now().UTC(), q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrQuizNotFound
	}
	return nil
}

// Delete deletes a quiz.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrQuizNotFound
	}
	return nil
}

// ListByCourse returns all quizzes of a course.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID string) ([]*content.Quiz, error) {
	rows, err := r.conn.Query(ctx,
		fmt.Sprintf("SELECT %s FROM quizzes WHERE course_id = $1 ORDER BY created_at ASC", quizColumns),
		courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes by course: %w", err)
	}
	defer rows.Close()

	return scanQuizzes(rows)
}

// ListBySubject returns quizzes of a subject.
func (r *QuizRepository) ListBySubject(ctx context.Context, subject content.Subject, opts content.ListOptions) ([]*content.Quiz, error) {
	query := fmt.Sprintf("SELECT %s FROM quizzes WHERE subject = $1", quizColumns)
	if !opts.IncludeInactive {
		query += " AND is_active"
	}
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := r.conn.Query(ctx, query, string(subject), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes by subject: %w", err)
	}
	defer rows.Close()

	return scanQuizzes(rows)
}

func scanQuiz(row pgx.Row) (*content.Quiz, error) {
	var q content.Quiz
	var kind, subject, category string
	var questionsJSON []byte

	err := row.Scan(
		&q.ID, &kind, &q.Title, &subject, &q.CourseID, &q.UnitID, &q.PageID,
		&category, &q.IsActive,
		&q.Audience.Universities, &q.Audience.Faculties, &q.Audience.Departments, &q.Audience.Levels,
		&questionsJSON, &q.PassingScore, &q.AttemptCount, &q.AverageScore,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, content.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan quiz: %w", err)
	}

	q.Kind = content.QuizKind(kind)
	q.Subject = content.Subject(subject)
	q.Category = user.Category(category)
	q.Questions, err = questionsFromJSON(questionsJSON)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuizzes(rows pgx.Rows) ([]*content.Quiz, error) {
	var quizzes []*content.Quiz
	for rows.Next() {
		var q content.Quiz
		var kind, subject, category string
		var questionsJSON []byte

		err := rows.Scan(
			&q.ID, &kind, &q.Title, &subject, &q.CourseID, &q.UnitID, &q.PageID,
			&category, &q.IsActive,
			&q.Audience.Universities, &q.Audience.Faculties, &q.Audience.Departments, &q.Audience.Levels,
			&questionsJSON, &q.PassingScore, &q.AttemptCount, &q.AverageScore,
			&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}

		q.Kind = content.QuizKind(kind)
		q.Subject = content.Subject(subject)
		q.Category = user.Category(category)
		q.Questions, err = questionsFromJSON(questionsJSON)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, &q)
	}
	return quizzes, rows.Err()
}

// nullableID maps an empty string ID to NULL.
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ResourceRepository implements content.ResourceRepository for PostgreSQL.
type ResourceRepository struct {
	conn *Connection
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(conn *Connection) *ResourceRepository {
	return &ResourceRepository{conn: conn}
}

// CreateFolder creates a resource folder.
func (r *ResourceRepository) CreateFolder(ctx context.Context, f *content.ResourceFolder) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO resource_folders (
			id, title, category, is_active,
			audience_universities, audience_faculties, audience_departments, audience_levels,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		f.ID, f.Name, string(f.Category), f.IsActive,
		f.Audience.Universities, f.Audience.Faculties, f.Audience.Departments, f.Audience.Levels,
		f.CreatedBy, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource folder: %w", err)
	}
	return nil
}

// GetFolderByID returns a resource folder.
func (r *ResourceRepository) GetFolderByID(ctx context.Context, id string) (*content.ResourceFolder, error) {
	var f content.ResourceFolder
	var category string

	err := r.conn.QueryRow(ctx, `
		SELECT id, title, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   created_by, created_at, updated_at
		FROM resource_folders
		WHERE id = $1
	`, id).Scan(
		&f.ID, &f.Name, &category, &f.IsActive,
		&f.Audience.Universities, &f.Audience.Faculties, &f.Audience.Departments, &f.Audience.Levels,
		&f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, content.ErrFolderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resource folder: %w", err)
	}

	f.Category = user.Category(category)
	return &f, nil
}

// UpdateFolder updates a resource folder.
func (r *ResourceRepository) UpdateFolder(ctx context.Context, f *content.ResourceFolder) error {
	result, err := r.conn.Exec(ctx, `
		UPDATE resource_folders SET
			title = $1, category = $2, is_active = $3,
			audience_universities = $4, audience_faculties = $5,
			audience_departments = $6, audience_levels = $7,
			updated_at = $8
		WHERE id = $9
	`,
		f.Name, string(f.Category), f.IsActive,
		f.Audience.Universities, f.Audience.Faculties, f.Audience.Departments, f.Audience.Levels,
		time.Now().UTC(), f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrFolderNotFound
	}
	return nil
}

// DeleteFolder deletes a folder together with its resources (cascade).
func (r *ResourceRepository) DeleteFolder(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM resource_folders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete resource folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrFolderNotFound
	}
	return nil
}

// ListFolders returns resource folders with pagination.
func (r *ResourceRepository) ListFolders(ctx context.Context, opts content.ListOptions) ([]*content.ResourceFolder, error) {
	query := `
		SELECT id, title, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   created_by, created_at, updated_at
		FROM resource_folders
	`
	if !opts.IncludeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource folders: %w", err)
	}
	defer rows.Close()

	var folders []*content.ResourceFolder
	for rows.Next() {
		var f content.ResourceFolder
		var category string

		err := rows.Scan(
			&f.ID, &f.Name, &category, &f.IsActive,
			&f.Audience.Universities, &f.Audience.Faculties, &f.Audience.Departments, &f.Audience.Levels,
			&f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource folder: %w", err)
		}

		f.Category = user.Category(category)
		folders = append(folders, &f)
	}
	return folders, rows.Err()
}

// CreateResource creates a resource inside a folder.
func (r *ResourceRepository) CreateResource(ctx context.Context, res *content.Resource) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO resources (
			id, folder_id, title, url, category, is_active,
			audience_universities, audience_faculties, audience_departments, audience_levels,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		res.ID, res.FolderID, res.Title, res.URL, string(res.Category), res.IsActive,
		res.Audience.Universities, res.Audience.Faculties, res.Audience.Departments, res.Audience.Levels,
		res.CreatedBy, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return content.ErrFolderNotFound
		}
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

// GetResourceByID returns a resource.
func (r *ResourceRepository) GetResourceByID(ctx context.Context, id string) (*content.Resource, error) {
	var res content.Resource
	var category string

	err := r.conn.QueryRow(ctx, `
		SELECT id, folder_id, title, url, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   created_by, created_at, updated_at
		FROM resources
		WHERE id = $1
	`, id).Scan(
		&res.ID, &res.FolderID, &res.Title, &res.URL, &category, &res.IsActive,
		&res.Audience.Universities, &res.Audience.Faculties, &res.Audience.Departments, &res.Audience.Levels,
		&res.CreatedBy, &res.CreatedAt, &res.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, content.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resource: %w", err)
	}

	res.Category = user.Category(category)
	return &res, nil
}

// DeleteResource deletes a resource.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrResourceNotFound
	}
	return nil
}

// ListByFolder returns the resources of a folder.
func (r *ResourceRepository) ListByFolder(ctx context.Context, folderID string) ([]*content.Resource, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, folder_id, title, url, category, is_active,
			   audience_universities, audience_faculties, audience_departments, audience_levels,
			   created_by, created_at, updated_at
		FROM resources
		WHERE folder_id = $1
		ORDER BY created_at ASC
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources by folder: %w", err)
	}
	defer rows.Close()

	var resources []*content.Resource
	for rows.Next() {
		var res content.Resource
		var category string

		err := rows.Scan(
			&res.ID, &res.FolderID, &res.Title, &res.URL, &category, &res.IsActive,
			&res.Audience.Universities, &res.Audience.Faculties, &res.Audience.Departments, &res.Audience.Levels,
			&res.CreatedBy, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}

		res.Category = user.Category(category)
		resources = append(resources, &res)
	}
	return resources, rows.Err()
}
