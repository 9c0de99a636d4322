package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tilp-connect/internal/domain"
)

// PostgresHistoryRepository append-only progress and session_plans tables.
// There are no update or delete statements on either table.
type PostgresHistoryRepository struct {
	db *sql.DB
}

// NewPostgresHistoryRepository creates the history repository.
func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

var (
	_ ProgressRepository     = (*PostgresHistoryRepository)(nil)
	_ SessionPlansRepository = (*PostgresHistoryRepository)(nil)
)

// AppendProgressEntry inserts one progress row.
func (r *PostgresHistoryRepository) AppendProgressEntry(ctx context.Context, entry *domain.ProgressEntry) error {
	if entry == nil {
		return fmt.Errorf("append progress entry: %w", domain.ErrInvalidArgument)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (date, child_name, discipline, goal_area, status, notes, media_path)
		 VALUES ($1::date, $2, $3, $4, $5, $6, $7)`,
		entry.Date.Format(domain.DateLayout),
		entry.ChildName,
		entry.Discipline,
		entry.GoalArea,
		string(entry.Status),
		entry.Notes,
		entry.MediaPath,
	)
	if err != nil {
		return storeError("append progress entry", err)
	}
	return nil
}

// ListProgressEntries returns every progress row in id order.
func (r *PostgresHistoryRepository) ListProgressEntries(ctx context.Context) ([]*domain.ProgressEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			date,
			COALESCE(child_name, ''),
			COALESCE(discipline, ''),
			COALESCE(goal_area, ''),
			COALESCE(status, ''),
			COALESCE(notes, ''),
			COALESCE(media_path, '')
		FROM progress
		ORDER BY id`)
	if err != nil {
		return nil, storeError("list progress entries", err)
	}
	defer rows.Close()

	var out []*domain.ProgressEntry
	for rows.Next() {
		var e domain.ProgressEntry
		var date sql.NullTime
		var status string
		if err := rows.Scan(&e.ID, &date, &e.ChildName, &e.Discipline, &e.GoalArea, &status, &e.Notes, &e.MediaPath); err != nil {
			return nil, storeError("scan progress entry", err)
		}
		if date.Valid {
			e.Date = date.Time
		}
		e.Status = domain.Status(status)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list progress entries", err)
	}
	return out, nil
}

// AppendSessionPlan inserts one session plan row.
func (r *PostgresHistoryRepository) AppendSessionPlan(ctx context.Context, plan *domain.SessionPlan) error {
	if plan == nil {
		return fmt.Errorf("append session plan: %w", domain.ErrInvalidArgument)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_plans (
			date, lead_staff, support_staff, warm_up, learning_block,
			regulation_break, social_play, closing_routine, materials_needed, internal_notes
		) VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		plan.Date.Format(domain.DateLayout),
		plan.LeadStaff,
		plan.SupportStaff,
		plan.WarmUp,
		plan.LearningBlock,
		plan.RegulationBreak,
		plan.SocialPlay,
		plan.ClosingRoutine,
		plan.MaterialsNeeded,
		plan.InternalNotes,
	)
	if err != nil {
		return storeError("append session plan", err)
	}
	return nil
}

// ListSessionPlans returns every session plan in id order.
func (r *PostgresHistoryRepository) ListSessionPlans(ctx context.Context) ([]*domain.SessionPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			date,
			COALESCE(lead_staff, ''),
			COALESCE(support_staff, ''),
			COALESCE(warm_up, ''),
			COALESCE(learning_block, ''),
			COALESCE(regulation_break, ''),
			COALESCE(social_play, ''),
			COALESCE(closing_routine, ''),
			COALESCE(materials_needed, ''),
			COALESCE(internal_notes, '')
		FROM session_plans
		ORDER BY id`)
	if err != nil {
		return nil, storeError("list session plans", err)
	}
	defer rows.Close()

	var out []*domain.SessionPlan
	for rows.Next() {
		var p domain.SessionPlan
		var date sql.NullTime
		if err := rows.Scan(
			&p.ID, &date, &p.LeadStaff, &p.SupportStaff, &p.WarmUp, &p.LearningBlock,
			&p.RegulationBreak, &p.SocialPlay, &p.ClosingRoutine, &p.MaterialsNeeded, &p.InternalNotes,
		); err != nil {
			return nil, storeError("scan session plan", err)
		}
		if date.Valid {
			p.Date = date.Time
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list session plans", err)
	}
	return out, nil
}
