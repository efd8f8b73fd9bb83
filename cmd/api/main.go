package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/denisok6893-rgb/property-underwriting/internal/config"
	httpapi "github.com/denisok6893-rgb/property-underwriting/internal/http"
	"github.com/denisok6893-rgb/property-underwriting/internal/logger"
	"github.com/denisok6893-rgb/property-underwriting/internal/storage"
	"github.com/denisok6893-rgb/property-underwriting/internal/underwriting"
)

func main() {
	if err := runMain(); err != nil {
		os.Exit(1)
	}
}

// runMain never exits the process itself; its deferred store close must run.
func runMain() error {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{})
		bootLog.Error().Err(err).Msg("load config")
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	assumptions, err := underwriting.LoadAssumptionsFromFile(cfg.AssumptionsPath)
	if err != nil {
		log.Warn().Err(err).Msg("using default assumptions")
	}

	repo, closeRepo, err := openRepo(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("open listings")
		return err
	}
	defer closeRepo()

	engine := underwriting.NewEngine(assumptions, cfg.ScoreWorkers, log)
	srv := httpapi.NewServer(engine, repo, httpapi.Defaults{
		Strategy:     cfg.DefaultStrategy,
		HorizonYears: cfg.DefaultHorizonYears,
	}, log)

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, httpServer, log); err != nil {
		log.Error().Err(err).Msg("server error")
		return err
	}
	return nil
}

// serve runs the server until ctx is done, then shuts it down gracefully. A
// listen failure is returned to the caller.
func serve(ctx context.Context, httpServer *http.Server, log zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// openRepo builds the listing repository: SQLite when DB_PATH is set, memory
// otherwise. Either way it is seeded from PROPERTIES_PATH if that file exists.
func openRepo(cfg *config.Config, log zerolog.Logger) (httpapi.PropertiesRepo, func(), error) {
	seed, err := storage.LoadPropertiesFromFile(cfg.PropertiesPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.PropertiesPath).Msg("no seed listings")
		seed = nil
	}

	if cfg.DBPath == "" {
		log.Info().Int("listings", len(seed)).Msg("using in-memory listings")
		return httpapi.NewMemoryPropertiesRepo(seed), func() {}, nil
	}

	store, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if len(seed) > 0 {
		if err := store.UpsertMany(seed); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}
	n, _ := store.CountProperties()
	log.Info().Str("path", cfg.DBPath).Int("listings", n).Msg("using sqlite listings")

	return &httpapi.SQLitePropertiesRepo{Store: store}, func() { _ = store.Close() }, nil
}
