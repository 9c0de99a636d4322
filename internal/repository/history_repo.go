package repository

import (
	"context"

	"tilp-connect/internal/domain"
)

// ProgressRepository append-only access to the progress table.
type ProgressRepository interface {
	// AppendProgressEntry stores the entry as given; MediaPath must already
	// point at a durably written file or be empty.
	AppendProgressEntry(ctx context.Context, entry *domain.ProgressEntry) error
	// ListProgressEntries returns every row in insertion (id) order.
	ListProgressEntries(ctx context.Context) ([]*domain.ProgressEntry, error)
}

// SessionPlansRepository append-only access to the session_plans table.
type SessionPlansRepository interface {
	AppendSessionPlan(ctx context.Context, plan *domain.SessionPlan) error
	ListSessionPlans(ctx context.Context) ([]*domain.SessionPlan, error)
}
