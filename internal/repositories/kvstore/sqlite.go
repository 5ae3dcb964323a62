package kvstore

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sessionkeeper/internal/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	sqlRepository
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Updater    = (*SQLiteRepository)(nil)
)

var sqliteQueries = sqlQueries{
	get:       `SELECT value FROM kv WHERE key = ?`,
	getLocked: `SELECT value FROM kv WHERE key = ?`,
	set: `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	remove: `DELETE FROM kv WHERE key = ?`,
}

// NewSQLiteRepository wraps an already migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository{db: db, q: sqliteQueries}}
}

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// embedded migrations. SQLite allows one writer, so the pool is capped at a
// single connection; this also keeps ":memory:" databases shared.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteRepository(db), nil
}

func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, goose.DialectSQLite3, db, migrations.SQLite, "sqlite")
}
