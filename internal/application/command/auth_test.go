package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/shared"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
	"github.com/RoyalPrince700/testmancernew-sub000/internal/infrastructure/persistence/memory"
)

func newAuthEnv(t *testing.T) (*AuthHandler, *memory.UserRepository, *memory.SessionStore) {
	t.Helper()
	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore(time.Minute)
	events := &capturePublisher{}
	return NewAuthHandler(users, sessions, bcrypt.MinCost, events), users, sessions
}

func TestAuthHandler_RegisterOpensSession(t *testing.T) {
	handler, _, sessions := newAuthEnv(t)
	ctx := context.Background()

	result, err := handler.Register(ctx, RegisterCommand{
		Email:       "Ada@Test.NG",
		Password:    "correct-horse",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Equal(t, "ada@test.ng", result.User.Email, "email is normalized")
	assert.Equal(t, user.RoleStudent, result.User.Role, "new accounts are always students")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("correct-horse")))

	sess, err := sessions.Get(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, sess.UserID)
	assert.Equal(t, string(user.RoleStudent), sess.Role)
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	handler, _, _ := newAuthEnv(t)
	ctx := context.Background()
	cmd := RegisterCommand{Email: "ada@test.ng", Password: "correct-horse", DisplayName: "Ada"}

	_, err := handler.Register(ctx, cmd)
	require.NoError(t, err)

	_, err = handler.Register(ctx, cmd)
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
}

func TestAuthHandler_RegisterRejectsWeakPassword(t *testing.T) {
	handler, _, _ := newAuthEnv(t)

	_, err := handler.Register(context.Background(), RegisterCommand{
		Email: "ada@test.ng", Password: "short", DisplayName: "Ada",
	})
	assert.Error(t, err)
}

func TestAuthHandler_LoginRoundTrip(t *testing.T) {
	handler, _, sessions := newAuthEnv(t)
	ctx := context.Background()

	registered, err := handler.Register(ctx, RegisterCommand{
		Email: "ada@test.ng", Password: "correct-horse", DisplayName: "Ada",
	})
	require.NoError(t, err)

	login, err := handler.Login(ctx, LoginCommand{Email: "ada@test.ng", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, login.User.ID)
	assert.NotEqual(t, registered.Token, login.Token, "each login issues a fresh token")

	sess, err := sessions.Get(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, sess.UserID)
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	handler, _, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := handler.Register(ctx, RegisterCommand{
		Email: "ada@test.ng", Password: "correct-horse", DisplayName: "Ada",
	})
	require.NoError(t, err)

	_, err = handler.Login(ctx, LoginCommand{Email: "ada@test.ng", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts fail with the same error so responses do not
	// reveal whether the email exists.
	_, err = handler.Login(ctx, LoginCommand{Email: "ghost@test.ng", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthHandler_LogoutRevokesToken(t *testing.T) {
	handler, _, sessions := newAuthEnv(t)
	ctx := context.Background()

	result, err := handler.Register(ctx, RegisterCommand{
		Email: "ada@test.ng", Password: "correct-horse", DisplayName: "Ada",
	})
	require.NoError(t, err)

	require.NoError(t, handler.Logout(ctx, result.Token))

	_, err = sessions.Get(ctx, result.Token)
	assert.ErrorIs(t, err, memory.ErrSessionNotFound)
}

func TestAuthHandler_RegisterPublishesEvent(t *testing.T) {
	users := memory.NewUserRepository()
	events := &capturePublisher{}
	handler := NewAuthHandler(users, memory.NewSessionStore(time.Minute), bcrypt.MinCost, events)

	_, err := handler.Register(context.Background(), RegisterCommand{
		Email: "ada@test.ng", Password: "correct-horse", DisplayName: "Ada",
	})
	require.NoError(t, err)

	registered := events.byType(shared.EventUserRegistered)
	require.Len(t, registered, 1)
	assert.Equal(t, string(user.RoleStudent), registered[0].(shared.UserRegisteredEvent).Role)
}
