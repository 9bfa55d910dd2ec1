package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/content"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository is an in-memory content.CourseRepository.
type CourseRepository struct {
	mu      sync.RWMutex
	courses map[string]*content.Course
}

// NewCourseRepository creates an empty in-memory course repository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[string]*content.Course)}
}

// Create implements content.CourseRepository.
func (r *CourseRepository) Create(ctx context.Context, c *content.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = cloneCourse(c)
	return nil
}

// GetByID implements content.CourseRepository.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*content.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, content.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

// Update implements content.CourseRepository.
func (r *CourseRepository) Update(ctx context.Context, c *content.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[c.ID]; !ok {
		return content.ErrCourseNotFound
	}
	r.courses[c.ID] = cloneCourse(c)
	return nil
}

// Delete implements content.CourseRepository.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return content.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

// List implements content.CourseRepository.
func (r *CourseRepository) List(ctx context.Context, opts content.ListOptions) ([]*content.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var courses []*content.Course
	for _, c := range r.courses {
		if !opts.IncludeInactive && !c.IsActive {
			continue
		}
		courses = append(courses, cloneCourse(c))
	}

	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return paginate(courses, opts.Offset, opts.Limit), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// QuizRepository is an in-memory content.QuizRepository.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]*content.Quiz
}

// NewQuizRepository creates an empty in-memory quiz repository.
func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[string]*content.Quiz)}
}

// Create implements content.QuizRepository.
func (r *QuizRepository) Create(ctx context.Context, q *content.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[q.ID] = cloneQuiz(q)
	return nil
}

// GetByID implements content.QuizRepository.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*content.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quizzes[id]
	if !ok {
		return nil, content.ErrQuizNotFound
	}
	return cloneQuiz(q), nil
}

// Update implements content.QuizRepository.
func (r *QuizRepository) Update(ctx context.Context, q *content.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quizzes[q.ID]; !ok {
		return content.ErrQuizNotFound
	}
	r.quizzes[q.ID] = cloneQuiz(q)
	return nil
}

// Delete implements content.QuizRepository.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quizzes[id]; !ok {
		return content.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	return nil
}

// ListByCourse implements content.QuizRepository.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID string) ([]*content.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var quizzes []*content.Quiz
	for _, q := range r.quizzes {
		if q.CourseID == courseID {
			quizzes = append(quizzes, cloneQuiz(q))
		}
	}

	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

// ListBySubject implements content.QuizRepository.
func (r *QuizRepository) ListBySubject(ctx context.Context, subject content.Subject, opts content.ListOptions) ([]*content.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var quizzes []*content.Quiz
	for _, q := range r.quizzes {
		if q.Subject != subject {
			continue
		}
		if !opts.IncludeInactive && !q.IsActive {
			continue
		}
		quizzes = append(quizzes, cloneQuiz(q))
	}

	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
	})
	return paginate(quizzes, opts.Offset, opts.Limit), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ResourceRepository is an in-memory content.ResourceRepository.
type ResourceRepository struct {
	mu        sync.RWMutex
	folders   map[string]*content.ResourceFolder
	resources map[string]*content.Resource
}

// NewResourceRepository creates an empty in-memory resource repository.
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{
		folders:   make(map[string]*content.ResourceFolder),
		resources: make(map[string]*content.Resource),
	}
}

// CreateFolder implements content.ResourceRepository.
func (r *ResourceRepository) CreateFolder(ctx context.Context, f *content.ResourceFolder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders[f.ID] = cloneFolder(f)
	return nil
}

// GetFolderByID implements content.ResourceRepository.
func (r *ResourceRepository) GetFolderByID(ctx context.Context, id string) (*content.ResourceFolder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.folders[id]
	if !ok {
		return nil, content.ErrFolderNotFound
	}
	return cloneFolder(f), nil
}

// UpdateFolder implements content.ResourceRepository.
func (r *ResourceRepository) UpdateFolder(ctx context.Context, f *content.ResourceFolder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[f.ID]; !ok {
		return content.ErrFolderNotFound
	}
	r.folders[f.ID] = cloneFolder(f)
	return nil
}

// DeleteFolder implements content.ResourceRepository. Resources in the
// folder are deleted with it, matching the cascade in PostgreSQL.
func (r *ResourceRepository) DeleteFolder(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[id]; !ok {
		return content.ErrFolderNotFound
	}
	delete(r.folders, id)
	for resID, res := range r.resources {
		if res.FolderID == id {
			delete(r.resources, resID)
		}
	}
	return nil
}

// ListFolders implements content.ResourceRepository.
func (r *ResourceRepository) ListFolders(ctx context.Context, opts content.ListOptions) ([]*content.ResourceFolder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var folders []*content.ResourceFolder
	for _, f := range r.folders {
		if !opts.IncludeInactive && !f.IsActive {
			continue
		}
		folders = append(folders, cloneFolder(f))
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
	return paginate(folders, opts.Offset, opts.Limit), nil
}

// CreateResource implements content.ResourceRepository.
func (r *ResourceRepository) CreateResource(ctx context.Context, res *content.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.folders[res.FolderID]; !ok {
		return content.ErrFolderNotFound
	}
	r.resources[res.ID] = cloneResource(res)
	return nil
}

// GetResourceByID implements content.ResourceRepository.
func (r *ResourceRepository) GetResourceByID(ctx context.Context, id string) (*content.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[id]
	if !ok {
		return nil, content.ErrResourceNotFound
	}
	return cloneResource(res), nil
}

// DeleteResource implements content.ResourceRepository.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[id]; !ok {
		return content.ErrResourceNotFound
	}
	delete(r.resources, id)
	return nil
}

// ListByFolder implements content.ResourceRepository.
func (r *ResourceRepository) ListByFolder(ctx context.Context, folderID string) ([]*content.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var resources []*content.Resource
	for _, res := range r.resources {
		if res.FolderID == folderID {
			resources = append(resources, cloneResource(res))
		}
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].CreatedAt.Before(resources[j].CreatedAt)
	})
	return resources, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLONE HELPERS
// Deep copies keep callers from mutating stored state through returned
// pointers, the same isolation a real database gives.
// ══════════════════════════════════════════════════════════════════════════════

func cloneCourse(c *content.Course) *content.Course {
	cp := *c
	cp.Audience = c.Audience.Clone()
	cp.Units = make([]content.Unit, len(c.Units))
	for i, u := range c.Units {
		cu := u
		cu.Pages = append([]content.Page(nil), u.Pages...)
		cp.Units[i] = cu
	}
	return &cp
}

func cloneQuiz(q *content.Quiz) *content.Quiz {
	cp := *q
	cp.Audience = q.Audience.Clone()
	cp.Questions = make([]content.Question, len(q.Questions))
	for i, question := range q.Questions {
		cq := question
		cq.Options = append([]string(nil), question.Options...)
		cp.Questions[i] = cq
	}
	return &cp
}

func cloneFolder(f *content.ResourceFolder) *content.ResourceFolder {
	cp := *f
	cp.Audience = f.Audience.Clone()
	return &cp
}

func cloneResource(r *content.Resource) *content.Resource {
	cp := *r
	cp.Audience = r.Audience.Clone()
	return &cp
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ content.CourseRepository   = (*CourseRepository)(nil)
	_ content.QuizRepository     = (*QuizRepository)(nil)
	_ content.ResourceRepository = (*ResourceRepository)(nil)
)
