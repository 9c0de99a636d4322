package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tilp-connect/internal/domain"
)

// PostgresChildrenRepository children table on Postgres.
type PostgresChildrenRepository struct {
	db *sql.DB
}

// NewPostgresChildrenRepository creates the children repository.
func NewPostgresChildrenRepository(db *sql.DB) *PostgresChildrenRepository {
	return &PostgresChildrenRepository{db: db}
}

var _ ChildrenRepository = (*PostgresChildrenRepository)(nil)

const childColumns = `id, child_name, parent_username, date_of_birth`

const upsertChildSQL = `INSERT INTO children (child_name, parent_username, date_of_birth)
	 VALUES ($1, $2, $3::date)
	 ON CONFLICT (child_name)
	 DO UPDATE SET parent_username = EXCLUDED.parent_username,
	               date_of_birth = EXCLUDED.date_of_birth`

// GetChild fetches one child by name.
func (r *PostgresChildrenRepository) GetChild(ctx context.Context, childName string) (*domain.Child, error) {
	if childName == "" {
		return nil, fmt.Errorf("get child: %w", domain.ErrNotFound)
	}

	var c domain.Child
	err := r.db.QueryRowContext(ctx,
		`SELECT `+childColumns+` FROM children WHERE child_name = $1`,
		childName,
	).Scan(&c.ID, &c.ChildName, &c.ParentUsername, &c.DateOfBirth)
	if err != nil {
		return nil, storeError("get child", err)
	}
	return &c, nil
}

// ListChildren returns all children in id order.
func (r *PostgresChildrenRepository) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+childColumns+` FROM children ORDER BY id`)
	if err != nil {
		return nil, storeError("list children", err)
	}
	defer rows.Close()

	var out []*domain.Child
	for rows.Next() {
		var c domain.Child
		if err := rows.Scan(&c.ID, &c.ChildName, &c.ParentUsername, &c.DateOfBirth); err != nil {
			return nil, storeError("scan child", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list children", err)
	}
	return out, nil
}

// UpsertChild inserts or updates the mutable fields in place. child_name
// itself is never changed.
func (r *PostgresChildrenRepository) UpsertChild(ctx context.Context, child *domain.Child) error {
	if child == nil || child.ChildName == "" {
		return fmt.Errorf("upsert child: child_name is required: %w", domain.ErrInvalidArgument)
	}

	_, err := r.db.ExecContext(ctx, upsertChildSQL,
		child.ChildName, child.ParentUsername, nullDateArg(child.DateOfBirth),
	)
	if err != nil {
		return storeError("upsert child", err)
	}
	return nil
}

// SaveChildWithParent upserts the child and its parent user in one
// transaction; neither row is written if either statement fails.
func (r *PostgresChildrenRepository) SaveChildWithParent(ctx context.Context, child *domain.Child, parent *domain.User) error {
	if child == nil || child.ChildName == "" {
		return fmt.Errorf("save child: child_name is required: %w", domain.ErrInvalidArgument)
	}
	if parent == nil || parent.Username == "" {
		return fmt.Errorf("save child: parent username is required: %w", domain.ErrInvalidArgument)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertChildSQL,
		child.ChildName, child.ParentUsername, nullDateArg(child.DateOfBirth),
	); err != nil {
		return storeError("upsert child", err)
	}
	if _, err := tx.ExecContext(ctx, upsertUserSQL,
		parent.Username, parent.Password, parent.Role, parent.ChildLink,
	); err != nil {
		return storeError("link parent", err)
	}

	if err := tx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

// DeleteChild unlinks users first, then deletes the child, in one transaction.
func (r *PostgresChildrenRepository) DeleteChild(ctx context.Context, childName string) ([]string, error) {
	if childName == "" {
		return nil, fmt.Errorf("delete child: %w", domain.ErrNotFound)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`UPDATE users SET child_link = $1 WHERE child_link = $2 RETURNING username`,
		domain.ChildLinkNone, childName,
	)
	if err != nil {
		return nil, storeError("unlink users", err)
	}
	var unlinked []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			rows.Close()
			return nil, storeError("scan unlinked user", err)
		}
		unlinked = append(unlinked, username)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storeError("unlink users", err)
	}
	rows.Close()

	res, err := tx.ExecContext(ctx, `DELETE FROM children WHERE child_name = $1`, childName)
	if err != nil {
		return nil, storeError("delete child", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("delete child %q: %w", childName, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeError("commit transaction", err)
	}
	return unlinked, nil
}

// nullDateArg renders a nullable date as a YYYY-MM-DD argument or NULL.
func nullDateArg(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format(domain.DateLayout)
}
