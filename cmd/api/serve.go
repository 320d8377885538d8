package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Overland-East-Bay/club-roster/internal/adapters/httpapi"
	memidempotency "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/idempotency"
	memmemberrepo "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/memberrepo"
	memrosterfeed "github.com/Overland-East-Bay/club-roster/internal/adapters/memory/rosterfeed"
	"github.com/Overland-East-Bay/club-roster/internal/adapters/seedfile"
	"github.com/Overland-East-Bay/club-roster/internal/app/roster"
	platformclock "github.com/Overland-East-Bay/club-roster/internal/platform/clock"
	"github.com/Overland-East-Bay/club-roster/internal/platform/config"
	"github.com/Overland-East-Bay/club-roster/internal/platform/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the roster API server",
	Long: `Start the roster API server.

The roster starts from the built-in two-member seed unless --seed (or
ROSTER_SEED_FILE) names a YAML seed file. The server runs until it receives
SIGINT or SIGTERM, then drains requests and closes open streams.

Example:
  api serve
  api serve --port 9090 --seed roster.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "listen port (overrides PORT)")
	serveCmd.Flags().String("seed", "", "YAML seed file (overrides ROSTER_SEED_FILE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("seed") {
		cfg.SeedFile, _ = cmd.Flags().GetString("seed")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, api, err := buildAPI(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(api.CloseStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Int("port", cfg.Port).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("shutdown incomplete")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("shutdown complete")
	return nil
}

// buildAPI wires the in-memory adapters, the roster store and the router.
func buildAPI(ctx context.Context, cfg config.Config, logger zerolog.Logger) (http.Handler, *httpapi.Server, error) {
	opts := []roster.Option{roster.WithLogger(logger)}
	if cfg.SeedFile != "" {
		seed, err := seedfile.Load(cfg.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("file", cfg.SeedFile).Int("members", len(seed)).Msg("seed loaded")
		opts = append(opts, roster.WithSeed(seed...))
	}

	clk := platformclock.NewSystemClock()
	feed := memrosterfeed.NewFeed()
	store, err := roster.NewStore(ctx, memmemberrepo.NewRepo(), feed, clk, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("init roster: %w", err)
	}

	api := httpapi.NewServer(store, feed, memidempotency.NewStore(clk, cfg.IdempotencyTTL), clk)
	api.StreamWriteTimeout = cfg.StreamWriteTimeout

	return httpapi.NewRouter(api, httpapi.RouterOptions{Logger: logger}), api, nil
}
