package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, "data/sessionkeeper.db", c.SQLitePath)
	assert.Equal(t, 5*time.Second, c.StorageTimeout)
	assert.Equal(t, "plain", c.SecretScheme)
	assert.NotEmpty(t, c.SessionSigningKey)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSourcesKeepsDefaults(t *testing.T) {
	cfg, err := load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SESSIONKEEPER_STORE_BACKEND", "memory")
	t.Setenv("SESSIONKEEPER_STORAGE_TIMEOUT", "750ms")

	cfg, err := load(nil)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 750*time.Millisecond, cfg.StorageTimeout)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SESSIONKEEPER_STORE_BACKEND", "memory")

	cfg, err := load([]string{"-s", "redis", "-t", "9"})
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 9*time.Second, cfg.StorageTimeout)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("SESSIONKEEPER_REDIS_DB", "not-an-int")

	_, err := load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "floppy" }},
		{name: "zero timeout", mutate: func(c *Config) { c.StorageTimeout = 0 }},
		{name: "empty signing key", mutate: func(c *Config) { c.SessionSigningKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
