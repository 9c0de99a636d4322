package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tilp-connect/internal/domain"
)

// PostgresTablesRepository raw whole-table reads.
type PostgresTablesRepository struct {
	db *sql.DB
}

// NewPostgresTablesRepository creates the raw table reader.
func NewPostgresTablesRepository(db *sql.DB) *PostgresTablesRepository {
	return &PostgresTablesRepository{db: db}
}

var _ TablesRepository = (*PostgresTablesRepository)(nil)

// readAllQueries holds the only query text ReadAll can run.
var readAllQueries = map[domain.Table]string{
	domain.TableUsers: `SELECT username, password, role, child_link
		FROM users ORDER BY username`,
	domain.TableChildren: `SELECT id, child_name, parent_username, date_of_birth
		FROM children ORDER BY id`,
	domain.TableDisciplines: `SELECT name FROM disciplines ORDER BY name`,
	domain.TableGoalAreas:   `SELECT name FROM goal_areas ORDER BY name`,
	domain.TableProgress: `SELECT id, date, child_name, discipline, goal_area, status, notes, media_path
		FROM progress ORDER BY id`,
	domain.TableSessionPlans: `SELECT id, date, lead_staff, support_staff, warm_up, learning_block,
		regulation_break, social_play, closing_routine, materials_needed, internal_notes
		FROM session_plans ORDER BY id`,
}

// ReadAll returns every row of an allow-listed table.
func (r *PostgresTablesRepository) ReadAll(ctx context.Context, table domain.Table) ([]Record, error) {
	query, ok := readAllQueries[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTable, string(table))
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError("read "+string(table), err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, storeError("read "+string(table)+" columns", err)
	}

	out := []Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storeError("scan "+string(table), err)
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			rec[col] = normalizeValue(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("read "+string(table), err)
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(domain.DateLayout)
	default:
		return val
	}
}
