package app

import (
	"context"
	"fmt"
	"log"

	"BandWatch/internal/analysis"
	"BandWatch/internal/cache"
	"BandWatch/internal/collector"
	"BandWatch/internal/config"
	"BandWatch/internal/recorder"
)

// App bundles the components shared by the entry points.
type App struct {
	Fetcher  collector.Fetcher
	Recorder recorder.Recorder
	Analyzer *analysis.Analyzer

	closers []func() error
}

// New wires the fetcher, optional cache, recorder and analyzer from cfg.
// A failing SQLite or Redis falls back to the no-op recorder or no cache.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	switch cfg.DataSource.Provider {
	case "rest":
		a.Fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "yahoo":
		a.Fetcher = collector.NewYahooFetcher(cfg.Proxy)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Provider)
	}

	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			log.Printf("[WARN] init redis cache failed, continuing without cache: %v", err)
		} else {
			a.Fetcher = collector.NewCachedFetcher(a.Fetcher, store, cfg.Cache.TTL)
			a.closers = append(a.closers, store.Close)
		}
	case "memory":
		a.Fetcher = collector.NewCachedFetcher(a.Fetcher, cache.NewMemoryStore(), cfg.Cache.TTL)
	}
	log.Printf("[INFO] data source: %s", a.Fetcher.Name())

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			a.Recorder = recorder.NewNoopRecorder()
		} else {
			a.Recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	} else {
		a.Recorder = recorder.NewNoopRecorder()
	}

	a.Analyzer = analysis.NewAnalyzer(collector.NewConstructor(a.Fetcher), a.Recorder, cfg.Params())
	return a, nil
}

// Close releases the recorder and cache connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
}
