package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tilp-connect/internal/domain"
)

// PostgresListsRepository disciplines and goal_areas on Postgres.
type PostgresListsRepository struct {
	db *sql.DB
}

// NewPostgresListsRepository creates the lookup list repository.
func NewPostgresListsRepository(db *sql.DB) *PostgresListsRepository {
	return &PostgresListsRepository{db: db}
}

var _ ListsRepository = (*PostgresListsRepository)(nil)

type listQueries struct {
	selectAll string
	insert    string
	delete    string
}

// One fixed query set per allow-listed list; the list name never reaches
// query text any other way.
var lookupListQueries = map[domain.LookupList]listQueries{
	domain.ListDisciplines: {
		selectAll: `SELECT name FROM disciplines WHERE name IS NOT NULL ORDER BY name`,
		insert:    `INSERT INTO disciplines (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		delete:    `DELETE FROM disciplines WHERE name = $1`,
	},
	domain.ListGoalAreas: {
		selectAll: `SELECT name FROM goal_areas WHERE name IS NOT NULL ORDER BY name`,
		insert:    `INSERT INTO goal_areas (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		delete:    `DELETE FROM goal_areas WHERE name = $1`,
	},
}

func queriesFor(list domain.LookupList) (listQueries, error) {
	q, ok := lookupListQueries[list]
	if !ok {
		return listQueries{}, fmt.Errorf("%w: %q", domain.ErrUnknownList, string(list))
	}
	return q, nil
}

// ListItems returns the names of list ordered by name.
func (r *PostgresListsRepository) ListItems(ctx context.Context, list domain.LookupList) ([]string, error) {
	q, err := queriesFor(list)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q.selectAll)
	if err != nil {
		return nil, storeError("list "+string(list), err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeError("scan "+string(list), err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list "+string(list), err)
	}
	return names, nil
}

// UpsertListItem inserts name if absent.
func (r *PostgresListsRepository) UpsertListItem(ctx context.Context, list domain.LookupList, name string) error {
	q, err := queriesFor(list)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("upsert %s item: name is required: %w", list, domain.ErrInvalidArgument)
	}

	if _, err := r.db.ExecContext(ctx, q.insert, name); err != nil {
		return storeError("insert "+string(list)+" item", err)
	}
	return nil
}

// DeleteListItem removes name from list.
func (r *PostgresListsRepository) DeleteListItem(ctx context.Context, list domain.LookupList, name string) error {
	q, err := queriesFor(list)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q.delete, name)
	if err != nil {
		return storeError("delete "+string(list)+" item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete %s item %q: %w", list, name, domain.ErrNotFound)
	}
	return nil
}
