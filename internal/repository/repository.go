package repository

import "database/sql"

// PostgresStore bundles the Postgres repositories behind the Store interface.
type PostgresStore struct {
	*PostgresUsersRepository
	*PostgresChildrenRepository
	*PostgresListsRepository
	*PostgresHistoryRepository
	*PostgresTablesRepository
}

// NewPostgresStore wires every repository onto the same pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		PostgresUsersRepository:    NewPostgresUsersRepository(db),
		PostgresChildrenRepository: NewPostgresChildrenRepository(db),
		PostgresListsRepository:    NewPostgresListsRepository(db),
		PostgresHistoryRepository:  NewPostgresHistoryRepository(db),
		PostgresTablesRepository:   NewPostgresTablesRepository(db),
	}
}

var _ Store = (*PostgresStore)(nil)
