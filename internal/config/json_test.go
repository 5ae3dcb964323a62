package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"store_backend":   "redis",
		"redis_addr":      "cache:6379",
		"redis_db":        3,
		"storage_timeout": "2s",
		"secret_scheme":   "argon2",
	})

	t.Run("loads from -config", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, BackendRedis, cfg.StoreBackend)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
		assert.Equal(t, "argon2", cfg.SecretScheme)
		// absent keys keep their defaults
		assert.Equal(t, "data/sessionkeeper.db", cfg.SQLitePath)
	})

	t.Run("no flag → no changes", func(t *testing.T) {
		cfg := &Config{StoreBackend: "memory", StorageTimeout: 42 * time.Second}
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "memory", cfg.StoreBackend)
		assert.Equal(t, 42*time.Second, cfg.StorageTimeout)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, []string{"-c", filepath.Join(dir, "absent.json")})
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJson(&Config{}, []string{"-c", bad})
		require.Error(t, err)
	})
}

func TestLoad_JsonThenFlags(t *testing.T) {
	path := writeTempJSON(t, t.TempDir(), "cfg.json", map[string]any{"store_backend": "redis"})

	cfg, err := load([]string{"-c", path, "-s", "memory"})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
}
