package command

import (
	"context"
	"errors"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER MANAGEMENT COMMANDS
// Role and scope assignment is admin-only. Profile updates are done by
// the account owner and feed the student audience checks.
// ══════════════════════════════════════════════════════════════════════════════

// UserHandler handles user management commands.
type UserHandler struct {
	users     user.Repository
	publisher shared.EventPublisher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users user.Repository, publisher shared.EventPublisher) *UserHandler {
	return &UserHandler{users: users, publisher: publisher}
}

// AssignRoleCommand changes a user's role, with the role-specific
// fields that come with it.
type AssignRoleCommand struct {
	// ActorID must be an admin.
	ActorID string

	// UserID is the account being changed.
	UserID string

	// Role is the new role.
	Role user.Role

	// Category is required when Role is category-admin, empty otherwise.
	Category user.Category

	// Scope is the assigned territory when Role is subadmin.
	Scope user.Scope
}

// AssignRole changes a user's role. Only admins may do this.
func (h *UserHandler) AssignRole(ctx context.Context, cmd AssignRoleCommand) (*user.User, error) {
	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != user.RoleAdmin {
		return nil, shared.ErrForbidden
	}

	if !cmd.Role.IsValid() {
		return nil, user.ErrInvalidRole
	}
	if cmd.Role == user.RoleCategoryAdmin && cmd.Category == user.CategoryNone {
		return nil, user.ErrCategoryRequired
	}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	u.Role = cmd.Role
	u.Category = user.CategoryNone
	u.Scope = user.Scope{}
	switch cmd.Role {
	case user.RoleCategoryAdmin:
		u.Category = cmd.Category
	case user.RoleSubAdmin:
		u.Scope = cmd.Scope
	}

	if err := h.users.Update(ctx, u); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewUserUpdatedEvent(u.ID, "role"))
	}
	return u, nil
}

// UpdateProfileCommand updates the owner's audience profile.
type UpdateProfileCommand struct {
	UserID      string
	DisplayName string
	Profile     user.Profile
}

// Validate validates the command.
func (c UpdateProfileCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("update_profile: user_id is required")
	}
	return nil
}

// UpdateProfile updates display name and audience profile fields.
// A student gains access to audience-restricted content only once all
// four profile fields are filled.
func (h *UserHandler) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.DisplayName != "" {
		u.DisplayName = cmd.DisplayName
	}
	u.UpdateProfile(cmd.Profile)

	if err := h.users.Update(ctx, u); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewUserUpdatedEvent(u.ID, "profile"))
	}
	return u, nil
}
