package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/server"
	"github.com/jonathan/fitplan/internal/server/ratelimit"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start an HTTP server that generates, stores and serves training plans for authenticated users.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, port int) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if port > 0 {
		cfg.Server.Port = port
	}
	if err := cfg.JWT.Validate(); err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == string(llm.ProviderGemini) {
		return fmt.Errorf("llm.api_key is required (set FITPLAN_LLM_API_KEY or GEMINI_API_KEY)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := llm.NewClient(ctx, cfg.LLMClientConfig(), cfg.LLM.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	plans := newPlanner(cfg, client, store, logger)
	jwtService := server.NewJWTService(&cfg.JWT)

	var catalog server.Catalog
	if store.Catalog != nil {
		catalog = store.Catalog
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Health:          store.Ping,
		RateLimit: ratelimit.NewConfig(ratelimit.Settings{
			Enabled:        cfg.RateLimit.Enabled,
			GenerateLimit:  cfg.RateLimit.GenerateLimit,
			GenerateWindow: cfg.RateLimit.GenerateWindow,
			DefaultLimit:   cfg.RateLimit.DefaultLimit,
			DefaultWindow:  cfg.RateLimit.DefaultWindow,
			Allowlist:      cfg.RateLimit.Allowlist,
			Denylist:       cfg.RateLimit.Denylist,
		}),
	}, plans, catalog, jwtService.AsTokenValidator(), logger.Named("http"))

	logger.Info("fitplan starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("model", cfg.LLM.Model))
	return srv.Start(ctx)
}
