// Package content содержит доменную модель учебного контента TestMancer:
// курсы с юнитами и страницами, квизы и ассессменты, ресурсы и папки
// ресурсов. Каждый элемент несёт ограничение аудитории (снимок,
// скопированный от родителя при создании, не живая ссылка).
package content

import (
	"errors"
	"strings"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/access"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Subject представляет учебный предмет (например, "mathematics").
// По предмету группируются квизы и лидерборды.
type Subject string

// IsValid проверяет корректность предмета.
func (s Subject) IsValid() bool {
	v := string(s)
	return len(v) >= 2 && len(v) <= 50
}

// String возвращает строковое представление предмета.
func (s Subject) String() string {
	return string(s)
}

// Kind определяет вид контента для авторизации и событий.
type Kind string

const (
	KindCourse   Kind = "course"
	KindQuiz     Kind = "quiz"
	KindResource Kind = "resource"
	KindFolder   Kind = "folder"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE / UNIT / PAGE
// ══════════════════════════════════════════════════════════════════════════════

// Page - страница юнита. Завершение страницы фиксируется в ledger,
// но камней не приносит: страницы нужны только для прогресса.
type Page struct {
	// ID - уникальный идентификатор страницы.
	ID string

	// Title - заголовок страницы.
	Title string

	// Body - содержимое страницы.
	Body string

	// Position - позиция в юните (с нуля).
	Position int
}

// Unit - юнит курса: упорядоченный список страниц.
// Завершение юнита приносит фиксированные 3 камня независимо от
// количества страниц.
type Unit struct {
	// ID - уникальный идентификатор юнита.
	ID string

	// Title - заголовок юнита.
	Title string

	// Position - позиция в курсе (с нуля).
	Position int

	// IsPublished - опубликован ли юнит. Студенты видят только
	// опубликованные юниты; управляющие роли видят все.
	IsPublished bool

	// Pages - упорядоченные страницы юнита.
	Pages []Page
}

// PageByID возвращает страницу по ID.
func (u *Unit) PageByID(id string) (*Page, bool) {
	for i := range u.Pages {
		if u.Pages[i].ID == id {
			return &u.Pages[i], true
		}
	}
	return nil, false
}

// Course - курс: упорядоченный список юнитов с ограничением аудитории.
type Course struct {
	// ID - уникальный идентификатор курса.
	ID string

	// Title - название курса.
	Title string

	// Description - описание курса.
	Description string

	// Subject - предмет курса.
	Subject Subject

	// Category - экзаменационная категория (waec/jamb), если задана.
	Category user.Category

	// Audience - ограничение видимости.
	Audience access.Audience

	// IsActive - активен ли курс.
	IsActive bool

	// Units - упорядоченные юниты курса.
	Units []Unit

	// CreatedBy - ID создателя.
	CreatedBy string

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// AccessItem приводит курс к элементу авторизации.
// Курсы проверяются по OR-правилу (MatchAny).
func (c *Course) AccessItem() access.Item {
	return access.Item{
		Audience: c.Audience,
		IsActive: c.IsActive,
		Match:    access.MatchAny,
		Category: c.Category,
	}
}

// UnitByID возвращает юнит по ID.
func (c *Course) UnitByID(id string) (*Unit, bool) {
	for i := range c.Units {
		if c.Units[i].ID == id {
			return &c.Units[i], true
		}
	}
	return nil, false
}

// PageByID ищет страницу по ID во всех юнитах.
func (c *Course) PageByID(id string) (*Page, bool) {
	for i := range c.Units {
		if p, ok := c.Units[i].PageByID(id); ok {
			return p, true
		}
	}
	return nil, false
}

// VisibleUnits возвращает юниты, видимые указанной роли: студенты видят
// только опубликованные, управляющие роли - все.
func (c *Course) VisibleUnits(role user.Role) []Unit {
	if role.IsManagement() {
		return c.Units
	}
	visible := make([]Unit, 0, len(c.Units))
	for _, u := range c.Units {
		if u.IsPublished {
			visible = append(visible, u)
		}
	}
	return visible
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ / ASSESSMENT
// ══════════════════════════════════════════════════════════════════════════════

// QuizKind различает квиз (привязан к странице/юниту) и ассессмент
// (итоговая проверка по курсу). Семантика начислений одинаковая.
type QuizKind string

const (
	QuizKindQuiz       QuizKind = "quiz"
	QuizKindAssessment QuizKind = "assessment"
)

// Question - вопрос с вариантами ответа и индексом правильного.
type Question struct {
	// ID - уникальный идентификатор вопроса.
	ID string

	// Text - текст вопроса.
	Text string

	// Options - варианты ответа.
	Options []string

	// CorrectIndex - индекс правильного варианта.
	CorrectIndex int
}

// Quiz - квиз или ассессмент с вопросами и проходным баллом.
type Quiz struct {
	// ID - уникальный идентификатор.
	ID string

	// Kind - квиз или ассессмент.
	Kind QuizKind

	// Title - название.
	Title string

	// Subject - предмет (наследуется от курса).
	Subject Subject

	// CourseID - курс, к которому привязан квиз.
	CourseID string

	// UnitID - юнит (опционально).
	UnitID string

	// PageID - страница (опционально).
	PageID string

	// Category - экзаменационная категория, если задана.
	Category user.Category

	// Audience - снимок аудитории родительского курса.
	Audience access.Audience

	// IsActive - активен ли квиз.
	IsActive bool

	// Questions - вопросы квиза.
	Questions []Question

	// PassingScore - проходной балл в процентах.
	PassingScore int

	// AttemptCount - количество попыток по всем пользователям.
	AttemptCount int

	// AverageScore - скользящее среднее результатов (проценты).
	AverageScore int

	// CreatedBy - ID создателя.
	CreatedBy string

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// AccessItem приводит квиз к элементу авторизации.
// Квизы, как и курсы, проверяются по OR-правилу.
func (q *Quiz) AccessItem() access.Item {
	return access.Item{
		Audience: q.Audience,
		IsActive: q.IsActive,
		Match:    access.MatchAny,
		Category: q.Category,
	}
}

// CorrectIndexes возвращает индексы правильных ответов по порядку вопросов.
func (q *Quiz) CorrectIndexes() []int {
	correct := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		correct[i] = question.CorrectIndex
	}
	return correct
}

// RecordAttempt фиксирует попытку и пересчитывает скользящее среднее.
// Формула: round(((old*(n-1)) + new) / n), где n - счётчик после инкремента.
func (q *Quiz) RecordAttempt(score int) {
	q.AttemptCount++
	n := q.AttemptCount
	q.AverageScore = roundDiv(q.AverageScore*(n-1)+score, n)
	q.UpdatedAt = time.Now().UTC()
}

// roundDiv делит с округлением до ближайшего целого.
func roundDiv(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return (numerator + denominator/2) / denominator
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCES
// ══════════════════════════════════════════════════════════════════════════════

// ResourceFolder - папка ресурсов.
// Единственный тип контента, который subadmin проверяет по AND-правилу
// (MatchAll). Расхождение историческое и закреплено тестами.
type ResourceFolder struct {
	// ID - уникальный идентификатор.
	ID string

	// Name - название папки.
	Name string

	// Category - экзаменационная категория, если задана.
	Category user.Category

	// Audience - ограничение видимости.
	Audience access.Audience

	// IsActive - активна ли папка.
	IsActive bool

	// CreatedBy - ID создателя.
	CreatedBy string

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// AccessItem приводит папку к элементу авторизации с AND-режимом.
func (f *ResourceFolder) AccessItem() access.Item {
	return access.Item{
		Audience: f.Audience,
		IsActive: f.IsActive,
		Match:    access.MatchAll,
		Category: f.Category,
	}
}

// NewResourceFolder создаёт папку ресурсов.
func NewResourceFolder(id, name string, category user.Category, audience access.Audience, createdBy string) (*ResourceFolder, error) {
	if id == "" {
		return nil, errors.New("folder id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 200 {
		return nil, ErrInvalidTitle
	}

	now := time.Now().UTC()

	return &ResourceFolder{
		ID:        id,
		Name:      name,
		Category:  category,
		Audience:  audience.Clone(),
		IsActive:  true,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Resource - учебный ресурс (файл, ссылка) внутри папки.
type Resource struct {
	// ID - уникальный идентификатор.
	ID string

	// FolderID - папка ресурса.
	FolderID string

	// Title - название ресурса.
	Title string

	// URL - ссылка на содержимое (blob-хранилище - внешняя забота).
	URL string

	// Category - экзаменационная категория, если задана.
	Category user.Category

	// Audience - снимок аудитории родительской папки.
	Audience access.Audience

	// IsActive - активен ли ресурс.
	IsActive bool

	// CreatedBy - ID создателя.
	CreatedBy string

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// AccessItem приводит ресурс к элементу авторизации.
// Сами ресурсы (в отличие от папок) проверяются по OR-правилу.
func (r *Resource) AccessItem() access.Item {
	return access.Item{
		Audience: r.Audience,
		IsActive: r.IsActive,
		Match:    access.MatchAny,
		Category: r.Category,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTitle - невалидное название.
	ErrInvalidTitle = errors.New("invalid title: must be 1-200 chars")

	// ErrInvalidSubject - невалидный предмет.
	ErrInvalidSubject = errors.New("invalid subject: must be 2-50 chars")

	// ErrInvalidPassingScore - проходной балл вне диапазона.
	ErrInvalidPassingScore = errors.New("invalid passing score: must be 0-100")

	// ErrNoQuestions - квиз без вопросов.
	ErrNoQuestions = errors.New("quiz must have at least one question")

	// ErrInvalidCorrectIndex - индекс правильного ответа вне вариантов.
	ErrInvalidCorrectIndex = errors.New("correct index out of options range")

	// ErrCourseNotFound - курс не найден.
	ErrCourseNotFound = errors.New("course not found")

	// ErrUnitNotFound - юнит не найден.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrPageNotFound - страница не найдена.
	ErrPageNotFound = errors.New("page not found")

	// ErrQuizNotFound - квиз не найден.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrResourceNotFound - ресурс не найден.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrFolderNotFound - папка не найдена.
	ErrFolderNotFound = errors.New("resource folder not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewCourseParams содержит параметры для создания курса.
type NewCourseParams struct {
	ID          string
	Title       string
	Description string
	Subject     Subject
	Category    user.Category
	Audience    access.Audience
	CreatedBy   string
}

// NewCourse создаёт новый курс с валидацией.
func NewCourse(params NewCourseParams) (*Course, error) {
	if params.ID == "" {
		return nil, errors.New("course id is required")
	}

	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}

	if !params.Subject.IsValid() {
		return nil, ErrInvalidSubject
	}

	now := time.Now().UTC()

	return &Course{
		ID:          params.ID,
		Title:       title,
		Description: params.Description,
		Subject:     params.Subject,
		Category:    params.Category,
		Audience:    params.Audience.Clone(),
		IsActive:    true,
		Units:       nil,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewQuizParams содержит параметры для создания квиза.
type NewQuizParams struct {
	ID           string
	Kind         QuizKind
	Title        string
	CourseID     string
	UnitID       string
	PageID       string
	Questions    []Question
	PassingScore int
	CreatedBy    string
}

// NewQuiz создаёт квиз, наследуя предмет, категорию и аудиторию курса.
// Аудитория копируется как снимок: последующие изменения курса квиз
// не затрагивают.
func NewQuiz(params NewQuizParams, parent *Course) (*Quiz, error) {
	if params.ID == "" {
		return nil, errors.New("quiz id is required")
	}
	if parent == nil {
		return nil, ErrCourseNotFound
	}

	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}

	if params.PassingScore < 0 || params.PassingScore > 100 {
		return nil, ErrInvalidPassingScore
	}

	if len(params.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	for _, q := range params.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, ErrInvalidCorrectIndex
		}
	}

	kind := params.Kind
	if kind == "" {
		kind = QuizKindQuiz
	}

	now := time.Now().UTC()

	return &Quiz{
		ID:           params.ID,
		Kind:         kind,
		Title:        title,
		Subject:      parent.Subject,
		CourseID:     parent.ID,
		UnitID:       params.UnitID,
		PageID:       params.PageID,
		Category:     parent.Category,
		Audience:     parent.Audience.Clone(),
		IsActive:     true,
		Questions:    params.Questions,
		PassingScore: params.PassingScore,
		AttemptCount: 0,
		AverageScore: 0,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewResource создаёт ресурс, наследуя категорию и аудиторию папки.
func NewResource(id, title, url, createdBy string, folder *ResourceFolder) (*Resource, error) {
	if id == "" {
		return nil, errors.New("resource id is required")
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}

	title = strings.TrimSpace(title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}

	now := time.Now().UTC()

	return &Resource{
		ID:        id,
		FolderID:  folder.ID,
		Title:     title,
		URL:       url,
		Category:  folder.Category,
		Audience:  folder.Audience.Clone(),
		IsActive:  true,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
