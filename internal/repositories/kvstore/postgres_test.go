package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	pgSelect       = `^SELECT value FROM kv WHERE key = \$1$`
	pgSelectLocked = `^SELECT value FROM kv WHERE key = \$1 FOR UPDATE$`
	pgUpsert       = `(?s)INSERT INTO kv \(key, value, updated_at\) VALUES \(\$1, \$2, now\(\)\)\s+ON CONFLICT \(key\) DO UPDATE`
	pgDelete       = `^DELETE FROM kv WHERE key = \$1$`
)

func TestPostgres_Get_Found(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgSelect).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[]`))

	v, err := repo.Get(context.Background(), "users")
	require.NoError(t, err)
	require.Equal(t, `[]`, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Get_NotFound(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgSelect).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Get_DBError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(pgSelect).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "k")
	require.Error(t, err)
	require.Regexp(t, regexp.MustCompile(`failed to get kv\[k\]: .*db down`), err.Error())
}

func TestPostgres_Set(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectExec(pgUpsert).WithArgs("k", "v").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Set_DBError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectExec(pgUpsert).WithArgs("k", "v").WillReturnError(errors.New("disk full"))

	err := repo.Set(context.Background(), "k", "v")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to set kv[k]")
}

func TestPostgres_Remove(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectExec(pgDelete).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_CommitsOnSuccess(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgSelectLocked).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("a"))
	mock.ExpectExec(pgUpsert).WithArgs("users", "ab").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "users", func(cur string, found bool) (string, error) {
		require.True(t, found)
		return cur + "b", nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_MissingKey(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgSelectLocked).WithArgs("users").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(pgUpsert).WithArgs("users", "fresh").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "users", func(cur string, found bool) (string, error) {
		require.False(t, found)
		return "fresh", nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update_RollsBackOnFnError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(pgSelectLocked).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("a"))
	mock.ExpectRollback()

	boom := errors.New("conflict")
	err := repo.Update(context.Background(), "users", func(string, bool) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
