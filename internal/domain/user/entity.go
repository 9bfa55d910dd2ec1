// Package user содержит доменную модель пользователя платформы TestMancer.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Category представляет экзаменационную категорию для category-admin.
type Category string

const (
	// CategoryWAEC - категория экзамена WAEC.
	CategoryWAEC Category = "waec"
	// CategoryJAMB - категория экзамена JAMB.
	CategoryJAMB Category = "jamb"
	// CategoryNone - категория отсутствует (для остальных ролей).
	CategoryNone Category = ""
)

// IsValid проверяет корректность категории.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWAEC, CategoryJAMB, CategoryNone:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление категории.
func (c Category) String() string {
	return string(c)
}

// Gems представляет баланс драгоценных камней пользователя.
// Баланс изменяется только через Reward Ledger, никогда напрямую.
type Gems int

// IsValid проверяет, что баланс неотрицательный.
func (g Gems) IsValid() bool {
	return g >= 0
}

// Add прибавляет начисленную сумму к балансу.
func (g Gems) Add(amount int) Gems {
	return g + Gems(amount)
}

// Int возвращает числовое значение баланса.
func (g Gems) Int() int {
	return int(g)
}

// Scope представляет территорию, закреплённую за subadmin.
// Четыре множества строк; пустое множество означает отсутствие
// назначений по этому полю.
type Scope struct {
	Universities []string
	Faculties    []string
	Departments  []string
	Levels       []string
}

// IsEmpty возвращает true, если ни одно поле не заполнено.
func (s Scope) IsEmpty() bool {
	return len(s.Universities) == 0 &&
		len(s.Faculties) == 0 &&
		len(s.Departments) == 0 &&
		len(s.Levels) == 0
}

// ContainsUniversity проверяет наличие университета в scope.
func (s Scope) ContainsUniversity(v string) bool {
	return containsString(s.Universities, v)
}

// ContainsFaculty проверяет наличие факультета в scope.
func (s Scope) ContainsFaculty(v string) bool {
	return containsString(s.Faculties, v)
}

// ContainsDepartment проверяет наличие кафедры в scope.
func (s Scope) ContainsDepartment(v string) bool {
	return containsString(s.Departments, v)
}

// ContainsLevel проверяет наличие уровня в scope.
func (s Scope) ContainsLevel(v string) bool {
	return containsString(s.Levels, v)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Profile представляет анкету студента: по одному значению на поле.
// Значимо только для роли студента.
type Profile struct {
	University string
	Faculty    string
	Department string
	Level      string
}

// IsComplete возвращает true, если все четыре поля заполнены.
// Неполная анкета блокирует доступ к любому непубличному контенту.
func (p Profile) IsComplete() bool {
	return p.University != "" &&
		p.Faculty != "" &&
		p.Department != "" &&
		p.Level != ""
}

// ══════════════════════════════════════════════════════════════════════════════
// ROLE
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя в системе. Закрытое множество:
// поведение авторизации для каждой роли реализовано в domain/access.
type Role string

const (
	// RoleStudent - обычный студент, видит контент по своей анкете.
	RoleStudent Role = "user"
	// RoleAdmin - полный доступ ко всему контенту.
	RoleAdmin Role = "admin"
	// RoleSubAdmin - администратор закреплённой территории (scope).
	RoleSubAdmin Role = "subadmin"
	// RoleCategoryAdmin - администратор экзаменационной категории (waec/jamb).
	RoleCategoryAdmin Role = "category-admin"
)

// IsValid проверяет корректность роли.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleSubAdmin, RoleCategoryAdmin:
		return true
	default:
		return false
	}
}

// IsManagement возвращает true для ролей, видящих неопубликованные юниты.
func (r Role) IsManagement() bool {
	return r == RoleAdmin || r == RoleSubAdmin || r == RoleCategoryAdmin
}

// String возвращает строковое представление роли.
func (r Role) String() string {
	return string(r)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User - центральная сущность системы.
type User struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Email - почта пользователя.
	Email string

	// PasswordHash - bcrypt-хеш пароля (заполняется инфраструктурой).
	PasswordHash string

	// DisplayName - отображаемое имя.
	DisplayName string

	// Role - роль пользователя.
	Role Role

	// Category - экзаменационная категория (только для category-admin).
	Category Category

	// Scope - территория subadmin (только для subadmin).
	Scope Scope

	// Profile - анкета студента (только для роли студента).
	Profile Profile

	// GemBalance - текущий баланс камней. Инвариант: равен сумме всех
	// начислений ledger; ни один другой компонент его не изменяет.
	GemBalance Gems

	// LastActivityAt - время последней активности (для стриков и рейтинга).
	LastActivityAt time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidRole - невалидная роль.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidCategory - невалидная категория.
	ErrInvalidCategory = errors.New("invalid category: must be waec or jamb")

	// ErrCategoryRequired - для category-admin категория обязательна.
	ErrCategoryRequired = errors.New("category is required for category-admin")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("invalid display name: must be 1-100 chars")

	// ErrInvalidEmail - невалидная почта.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrNegativeBalance - баланс не может быть отрицательным.
	ErrNegativeBalance = errors.New("gem balance cannot be negative")

	// ErrUserNotFound - пользователь не найден.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists - пользователь уже существует.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewUserParams содержит параметры для создания нового пользователя.
type NewUserParams struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Category    Category
	Scope       Scope
	Profile     Profile
}

// NewUser создаёт нового пользователя с валидацией всех полей.
// Пользователь создаётся с нулевым балансом и пустыми ledger.
func NewUser(params NewUserParams) (*User, error) {
	if params.ID == "" {
		return nil, errors.New("user id is required")
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	if !params.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	if params.Role == RoleCategoryAdmin {
		if params.Category == CategoryNone {
			return nil, ErrCategoryRequired
		}
		if !params.Category.IsValid() {
			return nil, ErrInvalidCategory
		}
	} else if params.Category != CategoryNone {
		return nil, ErrInvalidCategory
	}

	now := time.Now().UTC()

	return &User{
		ID:             params.ID,
		Email:          email,
		DisplayName:    displayName,
		Role:           params.Role,
		Category:       params.Category,
		Scope:          params.Scope,
		Profile:        params.Profile,
		GemBalance:     0,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsStudent возвращает true для роли студента.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// HasCompleteProfile возвращает true, если анкета студента заполнена.
func (u *User) HasCompleteProfile() bool {
	return u.Profile.IsComplete()
}

// CreditGems отражает начисление, уже зафиксированное в ledger.
// Единственная легальная точка изменения баланса в доменной модели.
func (u *User) CreditGems(amount int) error {
	if amount < 0 {
		return ErrNegativeBalance
	}
	u.GemBalance = u.GemBalance.Add(amount)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateProfile обновляет анкету студента.
func (u *User) UpdateProfile(profile Profile) {
	u.Profile = profile
	u.UpdatedAt = time.Now().UTC()
}

// Touch обновляет время последней активности.
func (u *User) Touch(at time.Time) {
	if at.After(u.LastActivityAt) {
		u.LastActivityAt = at
	}
	u.UpdatedAt = time.Now().UTC()
}

// String возвращает строковое представление пользователя для логирования.
func (u *User) String() string {
	return fmt.Sprintf(
		"User{ID: %s, Role: %s, Gems: %d}",
		u.ID, u.Role, u.GemBalance,
	)
}

// Clone создаёт глубокую копию пользователя.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.Scope = Scope{
		Universities: append([]string(nil), u.Scope.Universities...),
		Faculties:    append([]string(nil), u.Scope.Faculties...),
		Departments:  append([]string(nil), u.Scope.Departments...),
		Levels:       append([]string(nil), u.Scope.Levels...),
	}
	return &clone
}
