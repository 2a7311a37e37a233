package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/kjsb25/kjsb25.github.io/internal/adapter/driven/artifact"
	"github.com/kjsb25/kjsb25.github.io/internal/adapter/driven/configfile"
	githubadapter "github.com/kjsb25/kjsb25.github.io/internal/adapter/driven/github"
	"github.com/kjsb25/kjsb25.github.io/internal/application"
	"github.com/kjsb25/kjsb25.github.io/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration. A .env file is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"github_username", cfg.GitHubUsername,
		"config_path", cfg.ConfigPath,
		"output_path", cfg.OutputPath,
		"include_forks", cfg.IncludeForks,
	)
	if cfg.GitHubToken == "" {
		slog.Warn("no GitHub token configured, unauthenticated quota is 60 req/hr instead of 5000")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire adapters and the enrichment service.
	client := githubadapter.NewClient(cfg.GitHubToken, cfg.GitHubUsername, cfg.IncludeForks)
	store := configfile.NewStore(cfg.ConfigPath)
	svc := application.NewEnrichService(client)

	// 4. Discovery. This is the only fatal remote call: nothing is
	// persisted before it succeeds.
	slog.Info("discovering repositories", "username", cfg.GitHubUsername)
	snapshot, err := svc.Discover(ctx)
	if err != nil {
		return err
	}
	slog.Info("discovery complete", "repos", len(snapshot))

	// 5. Reconcile and persist the visibility config before enrichment,
	// so this run's classification only affects the next run.
	include, exclude, err := store.Load()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(snapshot))
	for name := range snapshot {
		known[name] = true
	}
	include, exclude = configfile.Reconcile(known, include, exclude)

	if err := store.Save(include, exclude); err != nil {
		return err
	}
	slog.Info("config reconciled", "include", len(include), "exclude", len(exclude))

	// 6. Enrich every included repo and write the artifact in one shot.
	records := svc.Enrich(ctx, include, snapshot)

	if err := artifact.Write(cfg.OutputPath, records); err != nil {
		return err
	}
	slog.Info("artifact written", "path", cfg.OutputPath, "repos", len(records))

	return nil
}
