package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/config"
	"github.com/haukened/ipmon/internal/ipmon/gateways/notify"
	"github.com/haukened/ipmon/internal/ipmon/gateways/upstream"
	"github.com/haukened/ipmon/internal/ipmon/repos/metricscache"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex/bloom"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex/bolt"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex/lru"
	"github.com/haukened/ipmon/internal/ipmon/repos/snapshot"
	"github.com/haukened/ipmon/internal/ipmon/services/history"
)

const (
	metricsCacheFile = "metrics.db"
	prefixIndexFile  = "prefix-index.db"
)

// application holds the components shared by the commands. Fields are
// built lazily; closers release the databases opened along the way.
type application struct {
	config  *config.AppConfig
	clock   clock.Clock
	logger  log.Logger
	snaps   *snapshot.Repository
	closers []func() error
}

func newApplication(cfg *config.AppConfig) (*application, error) {
	logger := log.GetLogger()
	snaps, err := snapshot.New(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot repository: %w", err)
	}
	return &application{
		config: cfg,
		clock:  &clock.RealClock{},
		logger: logger,
		snaps:  snaps,
	}, nil
}

// Close releases every database opened by the application.
func (app *application) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(map[string]any{"error": err.Error()}, "error closing resource")
		}
	}
	app.closers = nil
}

func (app *application) cachePath(name string) (string, error) {
	if err := os.MkdirAll(app.config.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", app.config.CacheDir, err)
	}
	return filepath.Join(app.config.CacheDir, name), nil
}

// buildIndex opens the prefix index: bbolt store, LRU sighting cache and
// bloom prefilter.
func (app *application) buildIndex() (*prefixindex.Repository, error) {
	path, err := app.cachePath(prefixIndexFile)
	if err != nil {
		return nil, err
	}
	store, err := bolt.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefix index %s: %w", path, err)
	}
	cache, err := lru.New(app.config.IndexCacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create sighting cache: %w", err)
	}
	index, err := prefixindex.NewRepository(prefixindex.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		FPRate:  app.config.BloomFPRate,
		Clock:   app.clock,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load prefix index: %w", err)
	}
	app.closers = append(app.closers, index.Close)

	stats := index.Stats()
	app.logger.Info(map[string]any{
		"path":       path,
		"prefixes":   stats.Store.Prefixes,
		"last_date":  stats.Store.LastDate,
		"cache_size": app.config.IndexCacheSize,
	}, "prefix index opened")
	return index, nil
}

func (app *application) buildMetricsCache() (*metricscache.Cache, error) {
	path, err := app.cachePath(metricsCacheFile)
	if err != nil {
		return nil, err
	}
	cache, err := metricscache.Open(path)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, cache.Close)
	return cache, nil
}

// buildHistory wires the history service to the snapshot repository and
// the bbolt metrics cache.
func (app *application) buildHistory() (*history.Service, error) {
	cache, err := app.buildMetricsCache()
	if err != nil {
		return nil, err
	}
	return history.NewService(history.ServiceOptions{
		Cache:   cache,
		Clock:   app.clock,
		Logger:  app.logger,
		Source:  app.snaps,
		Version: version,
	})
}

func (app *application) buildFetcher() (*upstream.Fetcher, error) {
	sources, err := app.config.ParsedSources()
	if err != nil {
		return nil, err
	}
	fetcher, err := upstream.NewFetcher(upstream.Options{
		Sources: sources,
		Timeout: app.config.FetchTimeout,
		Logger:  app.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream fetcher: %w", err)
	}
	app.logger.Info(map[string]any{
		"sources": len(sources),
		"timeout": app.config.FetchTimeout.String(),
	}, "upstream fetcher configured")
	return fetcher, nil
}

func (app *application) buildNotifier() *notify.Telegram {
	n := notify.NewTelegram(notify.Options{
		Token:  app.config.TelegramToken,
		ChatID: app.config.TelegramChatID,
		Logger: app.logger,
	})
	app.logger.Info(map[string]any{"enabled": n.Enabled()}, "telegram notifier configured")
	return n
}
