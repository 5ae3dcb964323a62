package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
)

var knownFlags = []string{"-s", "-d", "-p", "-r", "-t", "-m", "-k", "-l"}

// parseFlags overlays cfg with the flags listed in the package doc. Other
// arguments (such as -c) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "storage backend")
	fs.StringVar(&cfg.SQLitePath, "d", cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	timeout := fs.Int("t", int(cfg.StorageTimeout.Seconds()), "storage timeout (in seconds)")
	fs.StringVar(&cfg.SecretScheme, "m", cfg.SecretScheme, "secret scheme")
	fs.StringVar(&cfg.SessionSigningKey, "k", cfg.SessionSigningKey, "session signing key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.StorageTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
