package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilp-connect/internal/domain"
)

var childRowColumns = []string{"id", "child_name", "parent_username", "date_of_birth"}

func TestGetChild_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	dob := time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, child_name, parent_username, date_of_birth FROM children WHERE child_name = \$1`).
		WithArgs("Tony Smith").
		WillReturnRows(sqlmock.NewRows(childRowColumns).AddRow(int64(1), "Tony Smith", "parent_tony", dob))

	child, err := repo.GetChild(context.Background(), "Tony Smith")

	require.NoError(t, err)
	assert.Equal(t, int64(1), child.ID)
	assert.True(t, child.ParentUsername.Valid)
	assert.Equal(t, "parent_tony", child.ParentUsername.String)
	assert.True(t, child.DateOfBirth.Valid)
	assert.Equal(t, dob, child.DateOfBirth.Time)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChild_NullableColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectQuery(`SELECT .* FROM children WHERE child_name = \$1`).
		WithArgs("Sara Jones").
		WillReturnRows(sqlmock.NewRows(childRowColumns).AddRow(int64(2), "Sara Jones", nil, nil))

	child, err := repo.GetChild(context.Background(), "Sara Jones")

	require.NoError(t, err)
	assert.False(t, child.ParentUsername.Valid)
	assert.False(t, child.DateOfBirth.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChild_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectQuery(`SELECT .* FROM children`).
		WithArgs("Nobody").
		WillReturnError(sql.ErrNoRows)

	child, err := repo.GetChild(context.Background(), "Nobody")

	assert.Nil(t, child)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChild_DateAndParent(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectExec(`INSERT INTO children .* ON CONFLICT \(child_name\)`).
		WithArgs("Tony Smith", "parent_tony", "2019-04-02").
		WillReturnResult(sqlmock.NewResult(1, 1))

	child := &domain.Child{ChildName: "Tony Smith"}
	child.ParentUsername = sql.NullString{String: "parent_tony", Valid: true}
	child.DateOfBirth = sql.NullTime{Time: time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC), Valid: true}

	require.NoError(t, repo.UpsertChild(context.Background(), child))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChild_NullDate(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectExec(`INSERT INTO children`).
		WithArgs("Sara Jones", nil, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.UpsertChild(context.Background(), &domain.Child{ChildName: "Sara Jones"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChild_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectExec(`INSERT INTO children`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

	err := repo.UpsertChild(context.Background(), &domain.Child{ChildName: "Tony Smith"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChild_UnlinksUsersBeforeDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users SET child_link = \$1 WHERE child_link = \$2 RETURNING username`).
		WithArgs("None", "Tony Smith").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("parent_tony"))
	mock.ExpectExec(`DELETE FROM children WHERE child_name = \$1`).
		WithArgs("Tony Smith").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	unlinked, err := repo.DeleteChild(context.Background(), "Tony Smith")

	require.NoError(t, err)
	assert.Equal(t, []string{"parent_tony"}, unlinked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChild_AbsentRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users SET child_link`).
		WithArgs("None", "Nobody").
		WillReturnRows(sqlmock.NewRows([]string{"username"}))
	mock.ExpectExec(`DELETE FROM children`).
		WithArgs("Nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	unlinked, err := repo.DeleteChild(context.Background(), "Nobody")

	assert.Nil(t, unlinked)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChildWithParent_OneTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO children .* ON CONFLICT \(child_name\)`).
		WithArgs("Mia Chen", "parent_mia", nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO users .* ON CONFLICT \(username\)`).
		WithArgs("parent_mia", "", "parent", "Mia Chen").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	child := &domain.Child{ChildName: "Mia Chen"}
	child.ParentUsername = sql.NullString{String: "parent_mia", Valid: true}
	parent := &domain.User{Username: "parent_mia", Role: domain.RoleParent, ChildLink: "Mia Chen"}

	require.NoError(t, repo.SaveChildWithParent(context.Background(), child, parent))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChildWithParent_ParentFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO children`).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})
	mock.ExpectRollback()

	child := &domain.Child{ChildName: "Mia Chen"}
	child.ParentUsername = sql.NullString{String: "parent_mia", Valid: true}
	parent := &domain.User{Username: "parent_mia", Role: domain.RoleParent, ChildLink: "Mia Chen"}

	err := repo.SaveChildWithParent(context.Background(), child, parent)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChildWithParent_RequiresParent(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresChildrenRepository(db)

	err := repo.SaveChildWithParent(context.Background(), &domain.Child{ChildName: "Mia Chen"}, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.NoError(t, mock.ExpectationsWereMet())
}
