package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupKV(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kv (key, value) VALUES ('@users', '[]')`)
	require.NoError(t, err)
	return db
}

func value(t *testing.T, db DBTX, key string) string {
	t.Helper()
	var v string
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, key).Scan(&v))
	return v
}

func put(ctx context.Context, tx DBTX, key, v string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, v)
	return err
}

func TestWithTx_CommitsReadModifyWrite(t *testing.T) {
	db := setupKV(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		cur := value(t, tx, "@users")
		require.Equal(t, "[]", cur)
		return put(ctx, tx, "@users", `[{"email":"a@x.com"}]`)
	})

	require.NoError(t, err)
	assert.Equal(t, `[{"email":"a@x.com"}]`, value(t, db, "@users"))
}

func TestWithTx_RollsBackOnConflict(t *testing.T) {
	db := setupKV(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, put(ctx, tx, "@users", `[{"email":"a@x.com"},{"email":"A@X.com"}]`))
		return fmt.Errorf("insert user: %w", common.ErrEmailAlreadyRegistered)
	})

	require.ErrorIs(t, err, common.ErrEmailAlreadyRegistered)
	assert.Equal(t, "[]", value(t, db, "@users"), "the write inside the failed tx must not survive")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := setupKV(t)

	defer func() {
		r := recover()
		require.Equal(t, "corrupt users", r, "panic must propagate")
		assert.Equal(t, "[]", value(t, db, "@users"))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, put(ctx, tx, "@users", "garbage"))
		panic("corrupt users")
	})
}

func TestWithTx_CommitErrorIsReturned(t *testing.T) {
	db := setupKV(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		// Ending the tx inside fn makes the deferred Commit fail.
		return tx.(*sql.Tx).Rollback()
	})

	assert.ErrorIs(t, err, sql.ErrTxDone)
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupKV(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called, "fn must not run without a tx")
}
