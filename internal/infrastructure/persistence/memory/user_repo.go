package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"
)

// UserRepository is an in-memory user.Repository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]string
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

// Create implements user.Repository.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, ok := r.byID[u.ID]; ok {
		return user.ErrUserAlreadyExists
	}
	if _, ok := r.byEmail[email]; ok {
		return user.ErrUserAlreadyExists
	}

	r.byID[u.ID] = u.Clone()
	r.byEmail[email] = u.ID
	return nil
}

// GetByID implements user.Repository.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetByEmail implements user.Repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return r.byID[id].Clone(), nil
}

// Update implements user.Repository. The stored gem balance is kept:
// only the ledger moves it.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}

	updated := u.Clone()
	updated.GemBalance = existing.GemBalance
	r.byID[u.ID] = updated
	return nil
}

// SetBalance force-sets a balance, mirroring a ledger write. Test helper.
func (r *UserRepository) SetBalance(id string, balance user.Gems) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		u.GemBalance = balance
	}
}

// GetByIDs implements user.Repository.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			users = append(users, u.Clone())
		}
	}
	return users, nil
}

// List implements user.Repository.
func (r *UserRepository) List(ctx context.Context, opts user.ListOptions) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*user.User
	for _, u := range r.byID {
		if opts.Role != "" && u.Role != opts.Role {
			continue
		}
		users = append(users, u.Clone())
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].GemBalance != users[j].GemBalance {
			if opts.SortDesc {
				return users[i].GemBalance > users[j].GemBalance
			}
			return users[i].GemBalance < users[j].GemBalance
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	if opts.Offset >= len(users) {
		return nil, nil
	}
	users = users[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(users) {
		users = users[:opts.Limit]
	}
	return users, nil
}

// Count implements user.Repository.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

// Exists implements user.Repository.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ user.Repository = (*UserRepository)(nil)
