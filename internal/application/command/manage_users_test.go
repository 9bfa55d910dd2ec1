package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

func newUserEnv(t *testing.T) (*UserHandler, *memory.UserRepository, *user.User, *user.User) {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	admin := newTestAdmin(t, "adm-1")
	student := newTestStudent(t, "stu-1")
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, users.Create(ctx, student))

	return NewUserHandler(users, &capturePublisher{}), users, admin, student
}

func TestUserHandler_AssignRoleRequiresAdmin(t *testing.T) {
	handler, _, _, student := newUserEnv(t)

	_, err := handler.AssignRole(context.Background(), AssignRoleCommand{
		ActorID: student.ID,
		UserID:  student.ID,
		Role:    user.RoleAdmin,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserHandler_AssignCategoryAdmin(t *testing.T) {
	handler, users, admin, student := newUserEnv(t)
	ctx := context.Background()

	// Category is mandatory for the role.
	_, err := handler.AssignRole(ctx, AssignRoleCommand{
		ActorID: admin.ID,
		UserID:  student.ID,
		Role:    user.RoleCategoryAdmin,
	})
	assert.ErrorIs(t, err, user.ErrCategoryRequired)

	updated, err := handler.AssignRole(ctx, AssignRoleCommand{
		ActorID:  admin.ID,
		UserID:   student.ID,
		Role:     user.RoleCategoryAdmin,
		Category: user.CategoryWAEC,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleCategoryAdmin, updated.Role)
	assert.Equal(t, user.CategoryWAEC, updated.Category)

	stored, err := users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleCategoryAdmin, stored.Role)
}

func TestUserHandler_AssignSubAdminCarriesScope(t *testing.T) {
	handler, _, admin, student := newUserEnv(t)

	scope := user.Scope{
		Universities: []string{"unilag", "ui"},
		Levels:       []string{"200"},
	}
	updated, err := handler.AssignRole(context.Background(), AssignRoleCommand{
		ActorID: admin.ID,
		UserID:  student.ID,
		Role:    user.RoleSubAdmin,
		Scope:   scope,
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSubAdmin, updated.Role)
	assert.Equal(t, scope, updated.Scope)
	assert.Equal(t, user.CategoryNone, updated.Category)
}

func TestUserHandler_RoleSwitchClearsOldFields(t *testing.T) {
	handler, _, admin, student := newUserEnv(t)
	ctx := context.Background()

	_, err := handler.AssignRole(ctx, AssignRoleCommand{
		ActorID: admin.ID,
		UserID:  student.ID,
		Role:    user.RoleSubAdmin,
		Scope:   user.Scope{Universities: []string{"unilag"}},
	})
	require.NoError(t, err)

	// Demote back to student: the old scope must not survive.
	updated, err := handler.AssignRole(ctx, AssignRoleCommand{
		ActorID: admin.ID,
		UserID:  student.ID,
		Role:    user.RoleStudent,
	})
	require.NoError(t, err)
	assert.True(t, updated.Scope.IsEmpty())
	assert.Equal(t, user.CategoryNone, updated.Category)
}

func TestUserHandler_AssignInvalidRole(t *testing.T) {
	handler, _, admin, student := newUserEnv(t)

	_, err := handler.AssignRole(context.Background(), AssignRoleCommand{
		ActorID: admin.ID,
		UserID:  student.ID,
		Role:    user.Role("superuser"),
	})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	handler, users, _, student := newUserEnv(t)
	ctx := context.Background()

	profile := user.Profile{
		University: "ui",
		Faculty:    "arts",
		Department: "history",
		Level:      "300",
	}
	updated, err := handler.UpdateProfile(ctx, UpdateProfileCommand{
		UserID:  student.ID,
		Profile: profile,
	})
	require.NoError(t, err)
	assert.Equal(t, profile, updated.Profile)
	assert.Equal(t, student.DisplayName, updated.DisplayName, "empty display name keeps the old one")

	stored, err := users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, stored.Profile)
}

func TestUserHandler_UpdateProfileRenames(t *testing.T) {
	handler, _, _, student := newUserEnv(t)

	updated, err := handler.UpdateProfile(context.Background(), UpdateProfileCommand{
		UserID:      student.ID,
		DisplayName: "Ada L.",
		Profile:     student.Profile,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.DisplayName)
}
