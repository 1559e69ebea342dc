package catalog

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"eduledger/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalogMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlx.NewDb(conn, "sqlmock"), mock
}

func TestGetContainer(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, parent_id, lecturer_id, title, price, created_at FROM containers WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "lecturer_id", "title", "price", "created_at"}).
			AddRow(3, 1, 7, "Algebra", 120, time.Now()))

	c, err := NewRepository().GetContainer(context.Background(), q, 3)
	require.NoError(t, err)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, int64(1), *c.ParentID)
	assert.Equal(t, int64(120), c.Price)
}

func TestGetContainer_Missing(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM containers WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewRepository().GetContainer(context.Background(), q, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetPackage_LoadsGrants(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM packages WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(2, "Bundle", 500))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT lecturer_id, points FROM package_grants WHERE package_id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"lecturer_id", "points"}).AddRow(7, 200).AddRow(8, 300))

	p, err := NewRepository().GetPackage(context.Background(), q, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Price)
	assert.Equal(t, []PackageGrant{{LecturerID: 7, Points: 200}, {LecturerID: 8, Points: 300}}, p.Grants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLesson(t *testing.T) {
	q, mock := setupCatalogMock(t)
	starts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lecturer_id", "subject_id", "level_id", "center_id", "starts_at"}).
			AddRow(11, 7, 2, 3, 4, starts))

	l, err := NewRepository().GetLesson(context.Background(), q, 11)
	require.NoError(t, err)
	assert.Equal(t, Lesson{ID: 11, LecturerID: 7, SubjectID: 2, LevelID: 3, CenterID: 4, StartsAt: starts}, *l)
}

func TestParentChain(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM chain WHERE depth > 0 ORDER BY depth")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(1))

	chain, err := NewRepository().ParentChain(context.Background(), q, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, chain)
}

func TestIsAncestor(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM chain WHERE id = $1)")).
		WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := NewRepository().IsAncestor(context.Background(), q, 1, 5)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSetParent_Missing(t *testing.T) {
	q, mock := setupCatalogMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE containers SET parent_id = $2 WHERE id = $1")).
		WithArgs(int64(9), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRepository().SetParent(context.Background(), q, 9, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
