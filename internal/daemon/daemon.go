// Package daemon assembles the long-running muraai process: catalog
// store, translation cache, pipeline, background workflow and the HTTP
// API, guarded by a single-instance file lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"muraai/internal/api"
	"muraai/internal/config"
	"muraai/internal/heritage"
	"muraai/internal/kvstore"
	"muraai/internal/logging"
	"muraai/internal/pipeline"
	"muraai/internal/services/gemini"
	"muraai/internal/services/translate"
	"muraai/internal/translatecache"
	"muraai/internal/workflow"
)

const lockFileName = "muraaid.lock"

// ErrAlreadyRunning is returned when another daemon instance holds the
// lock.
var ErrAlreadyRunning = errors.New("daemon already running")

// Daemon owns every long-lived component of the muraai service.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lock       *flock.Flock
	store      *heritage.Store
	cacheStore *kvstore.Store
	cache      *translatecache.Cache
	manager    *workflow.Manager
	server     *http.Server
}

// New acquires the instance lock and wires all components. Callers must
// Close the daemon to release resources.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "daemon"))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	store, err := heritage.Open(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	cacheStore, err := kvstore.Open(cfg.TranslationCache.Path)
	if err != nil {
		_ = store.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("open translation cache: %w", err)
	}

	geminiClient := gemini.NewClient(gemini.Config(cfg.GetGemini()))
	translateClient := translate.NewClient(translate.Config(cfg.GetTranslate()))
	cache := translatecache.New(ctx, translateClient, cacheStore, logger)

	pipe := pipeline.New(store, geminiClient, geminiClient, logger)
	manager := workflow.NewManager(cfg, store, pipe, logger)

	handler := api.NewHandler(store, pipe, cache, logger)
	server := &http.Server{
		Addr:              cfg.Paths.APIBind,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		lock:       lock,
		store:      store,
		cacheStore: cacheStore,
		cache:      cache,
		manager:    manager,
		server:     server,
	}, nil
}

// Run starts the workflow and HTTP API, then blocks until the context is
// cancelled or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.manager.Start(ctx); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		d.logger.Info("api listening", logging.String("addr", d.server.Addr))
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		d.logger.Info("shutdown requested")
		return d.shutdown()
	case err := <-serverErr:
		d.manager.Stop()
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	}
}

func (d *Daemon) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var errs []error
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown api server: %w", err))
	}
	d.manager.Stop()
	return errors.Join(errs...)
}

// Close releases every resource held by the daemon.
func (d *Daemon) Close() error {
	var errs []error
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close catalog: %w", err))
		}
	}
	if d.cacheStore != nil {
		if err := d.cacheStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close translation cache: %w", err))
		}
	}
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release instance lock: %w", err))
		}
	}
	return errors.Join(errs...)
}
