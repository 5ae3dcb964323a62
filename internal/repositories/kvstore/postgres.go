package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepository struct {
	sqlRepository
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Updater    = (*PostgresRepository)(nil)
)

var postgresQueries = sqlQueries{
	get:       `SELECT value FROM kv WHERE key = $1`,
	getLocked: `SELECT value FROM kv WHERE key = $1 FOR UPDATE`,
	set: `
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
	remove: `DELETE FROM kv WHERE key = $1`,
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{sqlRepository{db: db, q: postgresQueries}}
}

// OpenPostgres connects through the pgx stdlib driver, checks the connection
// and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(ctx, goose.DialectPostgres, db, migrations.Postgres, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresRepository(db), nil
}
