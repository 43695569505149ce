package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/vpngraph/internal/config"
	"github.com/edvin/vpngraph/internal/db"
	"github.com/edvin/vpngraph/internal/graph"
	"github.com/edvin/vpngraph/internal/inventory"
	"github.com/edvin/vpngraph/internal/logging"
	"github.com/edvin/vpngraph/internal/metrics"
	vpnsync "github.com/edvin/vpngraph/internal/sync"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	intervalFlag := flag.Duration("interval", 0, "Time between sync runs; 0 runs once and exits")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.InventoryDatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewInventoryPool(ctx, cfg.InventoryDatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to inventory database")
	}
	defer pool.Close()
	metrics.RegisterInventoryPoolMetrics(pool)

	loader := inventory.NewLoader(pool, logger)
	statusSvc := inventory.NewSyncStatusService(pool)

	httpServer := metrics.NewServer(cfg.MetricsListenAddr, statusSvc, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// Stopping the signal context tears down the metrics server once the
		// sync work is done.
		defer stop()

		if *intervalFlag <= 0 {
			return runSync(gctx, cfg, loader, statusSvc, logger)
		}

		ticker := time.NewTicker(*intervalFlag)
		defer ticker.Stop()
		for {
			// Scheduled mode keeps running through failed runs; the failure
			// is recorded in the status table and the metrics.
			if err := runSync(gctx, cfg, loader, statusSvc, logger); err != nil {
				logger.Error().Err(err).Msg("sync run failed")
			}
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("service failed")
	}
}

// runSync performs one full sync against a fresh graph connection. The
// connection is verified before any write and released on every exit path.
func runSync(ctx context.Context, cfg *config.Config, loader *inventory.Loader, statusSvc *inventory.SyncStatusService, logger zerolog.Logger) error {
	start := time.Now()

	store, err := graph.Open(ctx, graph.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, logger)
	if err != nil {
		metrics.ObserveRunFailure(time.Since(start))
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to close graph connection")
		}
	}()

	runner := vpnsync.NewRunner(loader, store, statusSvc, logger)
	summary, err := runner.Run(ctx)
	if err != nil {
		metrics.ObserveRunFailure(time.Since(start))
		return err
	}

	metrics.ObserveRunSuccess(time.Since(start),
		summary.DeviceGroupNodes+summary.ManualPeerNodes, summary.Edges, summary.SkippedTunnels)
	return nil
}
