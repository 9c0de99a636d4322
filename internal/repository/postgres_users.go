package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tilp-connect/internal/domain"
)

// PostgresUsersRepository users table on Postgres.
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository creates the users repository.
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	username,
	COALESCE(password, ''),
	COALESCE(role, ''),
	COALESCE(child_link, '')`

// Authenticate plaintext username/password lookup. Accounts with an empty
// password (parents created from the child form) cannot log in.
func (r *PostgresUsersRepository) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrNotFound)
	}

	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND password = $2`,
		username, password,
	).Scan(&u.Username, &u.Password, &u.Role, &u.ChildLink)
	if err != nil {
		return nil, storeError("authenticate", err)
	}
	return &u, nil
}

// GetUser fetches one user by username.
func (r *PostgresUsersRepository) GetUser(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("get user: %w", domain.ErrNotFound)
	}

	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	).Scan(&u.Username, &u.Password, &u.Role, &u.ChildLink)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by username.
func (r *PostgresUsersRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.ChildLink); err != nil {
			return nil, storeError("scan user", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return out, nil
}

const upsertUserSQL = `INSERT INTO users (username, password, role, child_link)
	 VALUES ($1, $2, $3, $4)
	 ON CONFLICT (username)
	 DO UPDATE SET password = EXCLUDED.password,
	               role = EXCLUDED.role,
	               child_link = EXCLUDED.child_link`

// UpsertUser insert-or-replace keyed by username. All fields are overwritten.
func (r *PostgresUsersRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("upsert user: username is required: %w", domain.ErrInvalidArgument)
	}

	_, err := r.db.ExecContext(ctx, upsertUserSQL,
		user.Username, user.Password, user.Role, user.ChildLink,
	)
	if err != nil {
		return storeError("upsert user", err)
	}
	return nil
}

// DeleteUser removes the user row.
func (r *PostgresUsersRepository) DeleteUser(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return storeError("delete user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete user %q: %w", username, domain.ErrNotFound)
	}
	return nil
}
