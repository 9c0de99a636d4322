package domain

import "database/sql"

// Child maps the children table.
// ChildName is the natural key used by progress.child_name and
// users.child_link; it cannot be renamed once created.
type Child struct {
	ID             int64          `db:"id"`
	ChildName      string         `db:"child_name"`      // UNIQUE
	ParentUsername sql.NullString `db:"parent_username"` // nullable
	DateOfBirth    sql.NullTime   `db:"date_of_birth"`   // nullable
}
