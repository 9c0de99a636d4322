package repository

import (
	"context"

	"tilp-connect/internal/domain"
)

// Record is one raw row: column name -> value. Dates are rendered as
// YYYY-MM-DD strings, NULLs as nil.
type Record map[string]any

// TablesRepository raw whole-table reads used by the admin table view.
type TablesRepository interface {
	// ReadAll returns every row of table in a fixed order. Tables outside the
	// allow-list fail with domain.ErrUnknownTable without touching the store.
	ReadAll(ctx context.Context, table domain.Table) ([]Record, error)
}

// Store bundles every repository of the clinic schema.
type Store interface {
	UsersRepository
	ChildrenRepository
	ListsRepository
	ProgressRepository
	SessionPlansRepository
	TablesRepository
}
