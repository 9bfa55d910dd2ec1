// Package access содержит движок авторизации по аудитории.
// Чистая функция от (принципал, элемент контента, операция) к решению
// allow/deny - без внешних зависимостей и разделяемого состояния, поэтому
// безопасна при любой конкурентности.
//
// Семантика намеренно асимметрична: subadmin получает "мягкое" OR-совпадение
// (достаточно одного пересекающегося поля), студент - "строгое" AND-совпадение
// по каждому заполненному полю плюс требование полной анкеты. Это осознанное
// решение, а не случайность: subadmin управляет широкой территорией, студент
// не должен видеть узко адресованный контент вне своей аудитории.
package access

import (
	"errors"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Audience представляет ограничение видимости элемента контента.
// Пустой список в поле означает "нет ограничения по этому полю".
type Audience struct {
	Universities []string
	Faculties    []string
	Departments  []string
	Levels       []string
}

// IsPublic возвращает true, если все четыре поля пусты.
// Публичный элемент видят все роли без учёта анкеты.
func (a Audience) IsPublic() bool {
	return len(a.Universities) == 0 &&
		len(a.Faculties) == 0 &&
		len(a.Departments) == 0 &&
		len(a.Levels) == 0
}

// Clone создаёт независимую копию аудитории.
// Используется при наследовании аудитории от родителя: копия-снимок,
// не живая ссылка.
func (a Audience) Clone() Audience {
	return Audience{
		Universities: append([]string(nil), a.Universities...),
		Faculties:    append([]string(nil), a.Faculties...),
		Departments:  append([]string(nil), a.Departments...),
		Levels:       append([]string(nil), a.Levels...),
	}
}

// Operation определяет вид операции над контентом.
type Operation string

const (
	// OpView - просмотр элемента.
	OpView Operation = "view"
	// OpManage - создание/изменение/удаление элемента.
	OpManage Operation = "manage"
)

// IsValid проверяет корректность операции.
func (o Operation) IsValid() bool {
	return o == OpView || o == OpManage
}

// MatchMode определяет режим совпадения scope subadmin-а с аудиторией.
// Исторически папки ресурсов проверяются по AND, остальной контент по OR.
// Режим вынесен в явный параметр; каждый тип контента закрепляет свой
// режим регрессионными тестами.
type MatchMode string

const (
	// MatchAny - достаточно пересечения по любому заполненному полю (OR).
	MatchAny MatchMode = "any"
	// MatchAll - требуется пересечение по каждому заполненному полю (AND).
	MatchAll MatchMode = "all"
)

// IsValid проверяет корректность режима.
func (m MatchMode) IsValid() bool {
	return m == MatchAny || m == MatchAll
}

// Item описывает проверяемый элемент контента с точки зрения авторизации.
// Контентные типы приводят себя к Item, закрепляя свой исторический режим.
type Item struct {
	// Audience - ограничение видимости.
	Audience Audience

	// IsActive - активен ли элемент. Неактивные элементы доступны
	// только управляющим ролям.
	IsActive bool

	// Match - режим совпадения для проверок subadmin.
	Match MatchMode

	// Category - экзаменационная категория элемента (waec/jamb), если есть.
	// Учитывается только при включённом ограничении category-admin.
	Category user.Category
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidOperation - неизвестная операция.
	ErrInvalidOperation = errors.New("invalid operation: must be view or manage")

	// ErrInvalidMatchMode - неизвестный режим совпадения.
	ErrInvalidMatchMode = errors.New("invalid match mode: must be any or all")

	// ErrNilPrincipal - принципал не задан.
	ErrNilPrincipal = errors.New("principal is nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// PRINCIPAL VARIANTS
// Роль выбирается один раз при создании принципала, а не ветвится
// заново в каждой точке вызова.
// ══════════════════════════════════════════════════════════════════════════════

// Principal - принципал, способный ответить на вопрос о доступе.
type Principal interface {
	// CanAccess возвращает true, если операция над элементом разрешена.
	CanAccess(item Item, op Operation) bool

	// Role возвращает роль принципала.
	Role() user.Role
}

// Admin - полный доступ ко всему, включая неактивные элементы.
type Admin struct{}

// CanAccess реализует Principal: admin всегда allow.
func (Admin) CanAccess(Item, Operation) bool { return true }

// Role реализует Principal.
func (Admin) Role() user.Role { return user.RoleAdmin }

// CategoryAdmin - администратор экзаменационной категории.
// Исторически доступ не ограничен; ограничение по категории включается
// конфигурационным флагом и по умолчанию выключено.
type CategoryAdmin struct {
	Category user.Category

	// Restricted включает фильтрацию по категории элемента.
	Restricted bool
}

// CanAccess реализует Principal.
func (c CategoryAdmin) CanAccess(item Item, _ Operation) bool {
	if !c.Restricted {
		return true
	}
	return item.Category == user.CategoryNone || item.Category == c.Category
}

// Role реализует Principal.
func (CategoryAdmin) Role() user.Role { return user.RoleCategoryAdmin }

// SubAdmin - администратор закреплённой территории.
// Для view и manage действует одно и то же правило: отдельного правила
// просмотра для subadmin в системе нет.
type SubAdmin struct {
	Scope user.Scope
}

// CanAccess реализует Principal.
func (s SubAdmin) CanAccess(item Item, _ Operation) bool {
	if item.Audience.IsPublic() {
		return true
	}

	switch item.Match {
	case MatchAll:
		return s.matchAll(item.Audience)
	default:
		return s.matchAny(item.Audience)
	}
}

// matchAny: достаточно пересечения scope с любым заполненным полем аудитории.
func (s SubAdmin) matchAny(a Audience) bool {
	if len(a.Universities) > 0 && intersects(a.Universities, s.Scope.Universities) {
		return true
	}
	if len(a.Faculties) > 0 && intersects(a.Faculties, s.Scope.Faculties) {
		return true
	}
	if len(a.Departments) > 0 && intersects(a.Departments, s.Scope.Departments) {
		return true
	}
	if len(a.Levels) > 0 && intersects(a.Levels, s.Scope.Levels) {
		return true
	}
	return false
}

// matchAll: каждое заполненное поле аудитории должно пересекаться со scope.
func (s SubAdmin) matchAll(a Audience) bool {
	if len(a.Universities) > 0 && !intersects(a.Universities, s.Scope.Universities) {
		return false
	}
	if len(a.Faculties) > 0 && !intersects(a.Faculties, s.Scope.Faculties) {
		return false
	}
	if len(a.Departments) > 0 && !intersects(a.Departments, s.Scope.Departments) {
		return false
	}
	if len(a.Levels) > 0 && !intersects(a.Levels, s.Scope.Levels) {
		return false
	}
	return true
}

// Role реализует Principal.
func (SubAdmin) Role() user.Role { return user.RoleSubAdmin }

// Student - студент с анкетой.
// Непубличный контент требует полной анкеты и совпадения по каждому
// заполненному полю аудитории. Неактивные элементы студенту недоступны.
type Student struct {
	Profile user.Profile
}

// CanAccess реализует Principal.
func (st Student) CanAccess(item Item, op Operation) bool {
	if op == OpManage {
		return false
	}
	if item.Audience.IsPublic() {
		return item.IsActive
	}
	if !item.IsActive {
		return false
	}
	if !st.Profile.IsComplete() {
		return false
	}

	a := item.Audience
	if len(a.Universities) > 0 && !containsString(a.Universities, st.Profile.University) {
		return false
	}
	if len(a.Faculties) > 0 && !containsString(a.Faculties, st.Profile.Faculty) {
		return false
	}
	if len(a.Departments) > 0 && !containsString(a.Departments, st.Profile.Department) {
		return false
	}
	if len(a.Levels) > 0 && !containsString(a.Levels, st.Profile.Level) {
		return false
	}
	return true
}

// Role реализует Principal.
func (Student) Role() user.Role { return user.RoleStudent }

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy создаёт принципалов из пользователей с учётом конфигурации.
type Policy struct {
	// RestrictCategoryAdmins включает фильтрацию category-admin по
	// категории элемента. По умолчанию выключено: исторически доступ
	// category-admin не ограничивался.
	RestrictCategoryAdmins bool
}

// PrincipalFor возвращает вариант принципала для пользователя.
// Выбор роли происходит здесь один раз за запрос.
func (p Policy) PrincipalFor(u *user.User) Principal {
	switch u.Role {
	case user.RoleAdmin:
		return Admin{}
	case user.RoleCategoryAdmin:
		return CategoryAdmin{Category: u.Category, Restricted: p.RestrictCategoryAdmins}
	case user.RoleSubAdmin:
		return SubAdmin{Scope: u.Scope}
	default:
		return Student{Profile: u.Profile}
	}
}

// CanAccess - удобная форма для одноразовых проверок.
func (p Policy) CanAccess(u *user.User, item Item, op Operation) bool {
	return p.PrincipalFor(u).CanAccess(item, op)
}

// intersects возвращает true, если списки имеют хотя бы один общий элемент.
func intersects(a, b []string) bool {
	for _, v := range a {
		if containsString(b, v) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
