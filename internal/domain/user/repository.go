package user

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет основные операции CRUD для пользователей.
type Repository interface {
	// Create создаёт нового пользователя.
	// Возвращает ErrUserAlreadyExists, если пользователь уже существует.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по внутреннему ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail возвращает пользователя по почте.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update обновляет данные пользователя (роль, scope, анкету, имя).
	// Баланс через Update не изменяется: им владеет ledger.
	Update(ctx context.Context, u *User) error

	// GetByIDs возвращает пользователей по списку ID.
	GetByIDs(ctx context.Context, ids []string) ([]*User, error)

	// List возвращает пользователей с пагинацией.
	List(ctx context.Context, opts ListOptions) ([]*User, error)

	// Count возвращает общее количество пользователей.
	Count(ctx context.Context) (int, error)

	// Exists проверяет существование пользователя по ID.
	Exists(ctx context.Context, id string) (bool, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// Role - фильтр по роли (пустая строка = без фильтра).
	Role Role

	// SortDesc - сортировка по убыванию баланса.
	SortDesc bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:   0,
		Limit:    50,
		SortDesc: true,
	}
}

// WithOffset устанавливает смещение.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithRole устанавливает фильтр по роли.
func (o ListOptions) WithRole(role Role) ListOptions {
	o.Role = role
	return o
}
