package kvstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/filex"
)

// Open returns the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		path, err := filex.EnsureParentDir(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, path)
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN)
	case config.BackendRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "sessionkeeper:")
	case config.BackendS3:
		return OpenS3(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
		})
	case config.BackendMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
