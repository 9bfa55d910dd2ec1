package command

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH COMMANDS
// Registration and login. Passwords are stored as bcrypt hashes;
// sessions are opaque bearer tokens kept in Redis with a TTL.
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidCredentials is returned on a bad email/password pair.
// One error for both cases so responses do not leak which was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// SessionWriter stores bearer-token sessions.
type SessionWriter interface {
	Put(ctx context.Context, token, userID, role string) error
	Delete(ctx context.Context, token string) error
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users      user.Repository
	sessions   SessionWriter
	bcryptCost int
	publisher  shared.EventPublisher
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users user.Repository, sessions SessionWriter, bcryptCost int, publisher shared.EventPublisher) *AuthHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		publisher:  publisher,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Register
// ─────────────────────────────────────────────────────────────────────────────

// RegisterCommand creates a new student account.
type RegisterCommand struct {
	Email       string
	Password    string
	DisplayName string
	Profile     user.Profile
}

// Validate validates the command.
func (c RegisterCommand) Validate() error {
	if c.Email == "" {
		return errors.New("register: email is required")
	}
	if len(c.Password) < 8 {
		return errors.New("register: password must be at least 8 characters")
	}
	if c.DisplayName == "" {
		return errors.New("register: display_name is required")
	}
	return nil
}

// RegisterResult contains the created user and an initial session.
type RegisterResult struct {
	User  *user.User
	Token string
}

// Register creates a student account and opens a session.
// New accounts always start as students; role changes are a separate
// admin operation.
func (h *AuthHandler) Register(ctx context.Context, cmd RegisterCommand) (*RegisterResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := user.NewUser(user.NewUserParams{
		ID:          uuid.NewString(),
		Email:       cmd.Email,
		DisplayName: cmd.DisplayName,
		Role:        user.RoleStudent,
		Profile:     cmd.Profile,
	})
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), h.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := h.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := h.openSession(ctx, u)
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewUserRegisteredEvent(u.ID, string(u.Role)))
	}

	return &RegisterResult{User: u, Token: token}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Login / Logout
// ─────────────────────────────────────────────────────────────────────────────

// LoginCommand authenticates an existing account.
type LoginCommand struct {
	Email    string
	Password string
}

// LoginResult contains the authenticated user and a fresh session.
type LoginResult struct {
	User  *user.User
	Token string
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if cmd.Email == "" || cmd.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := h.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cmd.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := h.openSession(ctx, u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: u, Token: token}, nil
}

// Logout revokes a session token.
func (h *AuthHandler) Logout(ctx context.Context, token string) error {
	return h.sessions.Delete(ctx, token)
}

func (h *AuthHandler) openSession(ctx context.Context, u *user.User) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	if err := h.sessions.Put(ctx, token, u.ID, string(u.Role)); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// newSessionToken returns 32 bytes of entropy, hex encoded.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
