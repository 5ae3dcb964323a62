package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/pressly/goose/v3"
)

type sqlQueries struct {
	get       string
	getLocked string
	set       string
	remove    string
}

// sqlRepository holds the logic shared by the SQLite and Postgres backends;
// only the query text differs between them.
type sqlRepository struct {
	db *sql.DB
	q  sqlQueries
}

func (r *sqlRepository) Get(ctx context.Context, key string) (string, error) {
	return getValue(ctx, r.db, r.q.get, key)
}

func (r *sqlRepository) Set(ctx context.Context, key string, value string) error {
	return setValue(ctx, r.db, r.q.set, key, value)
}

func (r *sqlRepository) Remove(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.remove, key); err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

// Update reads and rewrites key inside one transaction.
func (r *sqlRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := getValue(ctx, tx, r.q.getLocked, key)
		found := true
		if errors.Is(err, common.ErrorNotFound) {
			found = false
		} else if err != nil {
			return err
		}

		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		return setValue(ctx, tx, r.q.set, key, next)
	})
}

func (r *sqlRepository) Close() error {
	return r.db.Close()
}

func getValue(ctx context.Context, db dbx.DBTX, query, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func setValue(ctx context.Context, db dbx.DBTX, query, key, value string) error {
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

// runMigrations applies every pending migration in fsys.
func runMigrations(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
