package repository

import (
	"context"

	"tilp-connect/internal/domain"
)

// UsersRepository access to the users table.
type UsersRepository interface {
	// Authenticate matches username and password exactly (plaintext).
	// Returns domain.ErrNotFound when no row matches.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// UpsertUser inserts or replaces every field of the row keyed by username.
	UpsertUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, username string) error
}
