package content

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем контента.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository определяет операции над курсами.
type CourseRepository interface {
	// Create создаёт новый курс вместе с юнитами и страницами.
	Create(ctx context.Context, c *Course) error

	// GetByID возвращает курс c юнитами и страницами.
	// Возвращает ErrCourseNotFound, если курс не найден.
	GetByID(ctx context.Context, id string) (*Course, error)

	// Update обновляет курс (включая структуру юнитов).
	Update(ctx context.Context, c *Course) error

	// Delete удаляет курс.
	Delete(ctx context.Context, id string) error

	// List возвращает все курсы (фильтрация по аудитории - забота
	// слоя приложения через access.Policy).
	List(ctx context.Context, opts ListOptions) ([]*Course, error)
}

// QuizRepository определяет операции над квизами и ассессментами.
type QuizRepository interface {
	// Create создаёт новый квиз.
	Create(ctx context.Context, q *Quiz) error

	// GetByID возвращает квиз с вопросами.
	// Возвращает ErrQuizNotFound, если квиз не найден.
	GetByID(ctx context.Context, id string) (*Quiz, error)

	// Update обновляет квиз (включая статистику попыток).
	Update(ctx context.Context, q *Quiz) error

	// Delete удаляет квиз.
	Delete(ctx context.Context, id string) error

	// ListByCourse возвращает квизы курса.
	ListByCourse(ctx context.Context, courseID string) ([]*Quiz, error)

	// ListBySubject возвращает квизы предмета.
	ListBySubject(ctx context.Context, subject Subject, opts ListOptions) ([]*Quiz, error)
}

// ResourceRepository определяет операции над ресурсами и папками.
type ResourceRepository interface {
	// CreateFolder создаёт папку ресурсов.
	CreateFolder(ctx context.Context, f *ResourceFolder) error

	// GetFolderByID возвращает папку.
	// Возвращает ErrFolderNotFound, если папка не найдена.
	GetFolderByID(ctx context.Context, id string) (*ResourceFolder, error)

	// UpdateFolder обновляет папку.
	UpdateFolder(ctx context.Context, f *ResourceFolder) error

	// DeleteFolder удаляет папку вместе с ресурсами.
	DeleteFolder(ctx context.Context, id string) error

	// ListFolders возвращает все папки.
	ListFolders(ctx context.Context, opts ListOptions) ([]*ResourceFolder, error)

	// CreateResource создаёт ресурс в папке.
	CreateResource(ctx context.Context, r *Resource) error

	// GetResourceByID возвращает ресурс.
	// Возвращает ErrResourceNotFound, если ресурс не найден.
	GetResourceByID(ctx context.Context, id string) (*Resource, error)

	// DeleteResource удаляет ресурс.
	DeleteResource(ctx context.Context, id string) error

	// ListByFolder возвращает ресурсы папки.
	ListByFolder(ctx context.Context, folderID string) ([]*Resource, error)
}

// ListOptions содержит параметры для пагинации.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// IncludeInactive - включать неактивные элементы (для управляющих ролей).
	IncludeInactive bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset: 0,
		Limit:  50,
	}
}
