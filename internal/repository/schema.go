package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tilp-connect/internal/domain"
)

// schemaStatements create every table if absent. The progress table is
// created in its pre-migration shape; media_path is added by columnMigrations
// so fresh and upgraded stores go through the same path.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		password   TEXT,
		role       TEXT,
		child_link TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS children (
		id              SERIAL PRIMARY KEY,
		child_name      TEXT UNIQUE,
		parent_username TEXT,
		date_of_birth   DATE
	)`,
	`CREATE TABLE IF NOT EXISTS disciplines (
		name TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS goal_areas (
		name TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS progress (
		id         SERIAL PRIMARY KEY,
		date       DATE,
		child_name TEXT,
		discipline TEXT,
		goal_area  TEXT,
		status     TEXT CHECK (status IN ('Regression', 'Stable', 'Progress')),
		notes      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS session_plans (
		id               SERIAL PRIMARY KEY,
		date             DATE,
		lead_staff       TEXT,
		support_staff    TEXT,
		warm_up          TEXT,
		learning_block   TEXT,
		regulation_break TEXT,
		social_play      TEXT,
		closing_routine  TEXT,
		materials_needed TEXT,
		internal_notes   TEXT
	)`,
}

// columnMigration adds one column to an existing table when it is missing.
type columnMigration struct {
	table  domain.Table
	column string
	ddl    string
}

var columnMigrations = []columnMigration{
	{
		table:  domain.TableProgress,
		column: "media_path",
		ddl:    `ALTER TABLE progress ADD COLUMN media_path TEXT DEFAULT ''`,
	},
}

const columnExistsQuery = `
	SELECT EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name = $1
		  AND column_name = $2
	)`

// DefaultAdmin is the bootstrap login. The plaintext password ships with the
// code; disable with SEED_ADMIN=false once real accounts exist.
var DefaultAdmin = domain.User{
	Username:  "adminuser",
	Password:  "admin123",
	Role:      domain.RoleAdmin,
	ChildLink: domain.ChildLinkAll,
}

// DemoUsers are the staff and parent logins the clinic started with.
var DemoUsers = []domain.User{
	{Username: "lead_ot", Password: "ot123", Role: domain.RoleOT, ChildLink: domain.ChildLinkAll},
	{Username: "slp_staff", Password: "slp123", Role: domain.RoleSLP, ChildLink: domain.ChildLinkAll},
	{Username: "ece_lead", Password: "ece123", Role: domain.RoleECE, ChildLink: domain.ChildLinkAll},
	{Username: "assistant", Password: "staff123", Role: domain.RoleAssistant, ChildLink: domain.ChildLinkAll},
	{Username: "parent_tony", Password: "tonypass", Role: domain.RoleParent, ChildLink: "Tony Smith"},
	{Username: "parent_sara", Password: "sarapass", Role: domain.RoleParent, ChildLink: "Sara Jones"},
}

// DemoChildren pairs each demo child with its parent login.
var DemoChildren = []struct {
	ChildName string
	Parent    string
}{
	{ChildName: "Tony Smith", Parent: "parent_tony"},
	{ChildName: "Sara Jones", Parent: "parent_sara"},
}

// SeedOptions selects which seed rows InitSchema inserts.
type SeedOptions struct {
	Admin bool
	Demo  bool
}

const (
	seedUserSQL       = `INSERT INTO users (username, password, role, child_link) VALUES ($1, $2, $3, $4) ON CONFLICT (username) DO NOTHING`
	seedDisciplineSQL = `INSERT INTO disciplines (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	seedGoalAreaSQL   = `INSERT INTO goal_areas (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	seedChildSQL      = `INSERT INTO children (child_name, parent_username) VALUES ($1, $2) ON CONFLICT (child_name) DO NOTHING`
)

// InitSchema creates missing tables, runs column migrations and inserts seed
// rows, all in one transaction. Safe to run on every startup: nothing is
// duplicated and existing rows are never overwritten.
func InitSchema(ctx context.Context, db *sql.DB, seed SeedOptions) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin schema transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storeError("create table", err)
		}
	}

	for _, m := range columnMigrations {
		var exists bool
		if err := tx.QueryRowContext(ctx, columnExistsQuery, string(m.table), m.column).Scan(&exists); err != nil {
			return storeError(fmt.Sprintf("check column %s.%s", m.table, m.column), err)
		}
		if exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
			return storeError(fmt.Sprintf("add column %s.%s", m.table, m.column), err)
		}
	}

	if seed.Admin {
		if err := seedUser(ctx, tx, DefaultAdmin); err != nil {
			return err
		}
	}
	for _, name := range domain.SeedDisciplines {
		if _, err := tx.ExecContext(ctx, seedDisciplineSQL, name); err != nil {
			return storeError("seed discipline", err)
		}
	}
	for _, name := range domain.SeedGoalAreas {
		if _, err := tx.ExecContext(ctx, seedGoalAreaSQL, name); err != nil {
			return storeError("seed goal area", err)
		}
	}
	if seed.Demo {
		for _, u := range DemoUsers {
			if err := seedUser(ctx, tx, u); err != nil {
				return err
			}
		}
		for _, c := range DemoChildren {
			if _, err := tx.ExecContext(ctx, seedChildSQL, c.ChildName, c.Parent); err != nil {
				return storeError("seed child", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError("commit schema transaction", err)
	}
	return nil
}

func seedUser(ctx context.Context, tx *sql.Tx, u domain.User) error {
	if _, err := tx.ExecContext(ctx, seedUserSQL, u.Username, u.Password, u.Role, u.ChildLink); err != nil {
		return storeError("seed user", err)
	}
	return nil
}
