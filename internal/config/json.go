package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Empty fields keep the
// value from the previous stage.
type JsonConfig struct {
	StoreBackend      string         `json:"store_backend"`
	SQLitePath        string         `json:"sqlite_path"`
	PostgresDSN       string         `json:"postgres_dsn"`
	RedisAddr         string         `json:"redis_addr"`
	RedisPassword     string         `json:"redis_password"`
	RedisDB           int            `json:"redis_db"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Prefix          string         `json:"s3_prefix"`
	StorageTimeout    timex.Duration `json:"storage_timeout"`
	SecretScheme      string         `json:"secret_scheme"`
	SessionSigningKey string         `json:"session_signing_key"`
	LogLevel          string         `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFromArgs(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&cfg.StoreBackend, jc.StoreBackend)
	setString(&cfg.SQLitePath, jc.SQLitePath)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	if jc.RedisDB != 0 {
		cfg.RedisDB = jc.RedisDB
	}
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	if jc.StorageTimeout.Duration != 0 {
		cfg.StorageTimeout = jc.StorageTimeout.Duration
	}
	setString(&cfg.SecretScheme, jc.SecretScheme)
	setString(&cfg.SessionSigningKey, jc.SessionSigningKey)
	setString(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
