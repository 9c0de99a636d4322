package repository

import (
	"context"

	"tilp-connect/internal/domain"
)

// ListsRepository access to the disciplines and goal_areas lookup sets.
// Every method rejects lists outside the allow-list with domain.ErrUnknownList
// before touching the store.
type ListsRepository interface {
	ListItems(ctx context.Context, list domain.LookupList) ([]string, error)
	// UpsertListItem inserts name if absent.
	UpsertListItem(ctx context.Context, list domain.LookupList, name string) error
	DeleteListItem(ctx context.Context, list domain.LookupList, name string) error
}
