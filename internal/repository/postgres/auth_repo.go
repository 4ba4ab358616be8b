// internal/repository/postgres/auth_repo.go
package postgres

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/auth"
	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, hashed_password, full_name, role, is_premium, created_at, updated_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.IsPremium, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. A duplicate email (case-insensitive) yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (email, hashed_password, full_name, role, is_premium)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, u.Email, u.HashedPassword, u.FullName, u.Role, u.IsPremium).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err, "failed to create user")
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find user")
	}
	return u, nil
}

// FindByEmail retrieves a user by email, ignoring case
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, mapError(err, "failed to find user")
	}
	return u, nil
}

// UpdatePrivileges sets role and premium flag.
func (r *UserRepository) UpdatePrivileges(ctx context.Context, id int64, role auth.Role, isPremium bool) error {
	query := `UPDATE users SET role = $2, is_premium = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, role, isPremium)
	if err != nil {
		return fmt.Errorf("failed to update user privileges: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ExistsByRole reports whether any user holds role.
func (r *UserRepository) ExistsByRole(ctx context.Context, role auth.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// List returns every user, oldest account first.
func (r *UserRepository) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*auth.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
