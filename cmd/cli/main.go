package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sessionkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/sessionkeeper/internal/cli"
	"github.com/dmitrijs2005/sessionkeeper/internal/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/credentials"
	"github.com/dmitrijs2005/sessionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/repositories/kvstore"
	"github.com/dmitrijs2005/sessionkeeper/internal/session"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel).With("backend", cfg.StoreBackend)

	repo, err := kvstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer repo.Close()

	scheme, err := cryptox.SchemeByName(cfg.SecretScheme)
	if err != nil {
		log.Fatalf("%v", err)
	}

	manager := session.NewManager(
		credentials.NewStore(repo),
		scheme,
		cryptox.NewTokenSigner([]byte(cfg.SessionSigningKey)),
		session.WithLogger(logger),
		session.WithStorageTimeout(cfg.StorageTimeout),
	)

	app := cli.NewApp(manager, os.Stdin, os.Stdout, logger)
	// Restore may publish before Run subscribes; Run's initial Navigate reads
	// the state directly, so an early result is still shown.
	go manager.RestoreSession(ctx)

	app.Run(ctx)
}
