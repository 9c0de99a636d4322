package repository

import (
	"context"

	"tilp-connect/internal/domain"
)

// ChildrenRepository access to the children table.
type ChildrenRepository interface {
	GetChild(ctx context.Context, childName string) (*domain.Child, error)
	ListChildren(ctx context.Context) ([]*domain.Child, error)
	// UpsertChild inserts the child, or updates parent_username and
	// date_of_birth in place when child_name already exists.
	UpsertChild(ctx context.Context, child *domain.Child) error
	// SaveChildWithParent upserts the child and replaces the parent user row
	// in one transaction.
	SaveChildWithParent(ctx context.Context, child *domain.Child, parent *domain.User) error
	// DeleteChild resets child_link to "None" for every user linked to the
	// child, then removes the child row, in one transaction. Progress rows are
	// kept. Returns the usernames that were unlinked.
	DeleteChild(ctx context.Context, childName string) ([]string, error)
}
