// Package postgres implements the PostgreSQL persistence layer for TestMancer.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RoyalPrince700/testmancernew-sub000/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const userColumns = `id, email, password_hash, display_name, role, category,
	   scope_universities, scope_faculties, scope_departments, scope_levels,
	   profile_university, profile_faculty, profile_department, profile_level,
	   gem_balance, last_activity_at, created_at, updated_at`

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, display_name, role, category,
			scope_universities, scope_faculties, scope_departments, scope_levels,
			profile_university, profile_faculty, profile_department, profile_level,
			gem_balance, last_activity_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		string(u.Role),
		string(u.Category),
		u.Scope.Universities,
		u.Scope.Faculties,
		u.Scope.Departments,
		u.Scope.Levels,
		u.Profile.University,
		u.Profile.Faculty,
		u.Profile.Department,
		u.Profile.Level,
		u.GemBalance.Int(),
		u.LastActivityAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	row := r.conn.QueryRow(ctx, query, id)
	return r.scanUser(row)
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	row := r.conn.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return r.scanUser(row)
}

// Update updates a user's mutable fields. The gem balance is deliberately
// absent: only the ledger moves it.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			email = $1,
			password_hash = $2,
			display_name = $3,
			role = $4,
			category = $5,
			scope_universities = $6,
			scope_faculties = $7,
			scope_departments = $8,
			scope_levels = $9,
			profile_university = $10,
			profile_faculty = $11,
			profile_department = $12,
			profile_level = $13,
			last_activity_at = $14,
			updated_at = $15
		WHERE id = $16
	`

	result, err := r.conn.Exec(ctx, query,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		string(u.Role),
		string(u.Category),
		u.Scope.Universities,
		u.Scope.Faculties,
		u.Scope.Departments,
		u.Scope.Levels,
		u.Profile.University,
		u.Profile.Faculty,
		u.Profile.Department,
		u.Profile.Level,
		u.LastActivityAt,
		time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByIDs returns users by a list of IDs.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE id IN (%s)",
		userColumns, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// List returns users with pagination.
func (r *UserRepository) List(ctx context.Context, opts user.ListOptions) ([]*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users", userColumns)
	args := []interface{}{}

	if opts.Role != "" {
		args = append(args, string(opts.Role))
		query += fmt.Sprintf(" WHERE role = $%d", len(args))
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY gem_balance %s, created_at ASC", direction)

	args = append(args, opts.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Exists checks if a user exists by ID.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanUser scans a single user from a row.
func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role, category string
	var balance int

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&role,
		&category,
		&u.Scope.Universities,
		&u.Scope.Faculties,
		&u.Scope.Departments,
		&u.Scope.Levels,
		&u.Profile.University,
		&u.Profile.Faculty,
		&u.Profile.Department,
		&u.Profile.Level,
		&balance,
		&u.LastActivityAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Role = user.Role(role)
	u.Category = user.Category(category)
	u.GemBalance = user.Gems(balance)

	return &u, nil
}

// scanUsers scans multiple users from rows.
func (r *UserRepository) scanUsers(rows pgx.Rows) ([]*user.User, error) {
	var users []*user.User

	for rows.Next() {
		var u user.User
		var role, category string
		var balance int

		err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.DisplayName,
			&role,
			&category,
			&u.Scope.Universities,
			&u.Scope.Faculties,
			&u.Scope.Departments,
			&u.Scope.Levels,
			&u.Profile.University,
			&u.Profile.Faculty,
			&u.Profile.Department,
			&u.Profile.Level,
			&balance,
			&u.LastActivityAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.Role = user.Role(role)
		u.Category = user.Category(category)
		u.GemBalance = user.Gems(balance)

		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}
