// Package app wires the engine to its persistence, event and metrics backends
// from a loaded configuration. Both the API server and the terminal dashboard
// start through it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MrJamesThe3rd/billroom/internal/config"
	"github.com/MrJamesThe3rd/billroom/internal/database"
	"github.com/MrJamesThe3rd/billroom/internal/engine"
	"github.com/MrJamesThe3rd/billroom/internal/events"
	"github.com/MrJamesThe3rd/billroom/internal/metrics"
	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/persist/store"
)

type App struct {
	Engine  *engine.Engine
	Metrics *metrics.Metrics
	Clock   clockwork.Clock

	log    *slog.Logger
	writer *persist.Writer
	kafka  *events.Kafka
	db     *sql.DB
}

// New opens the configured backends and restores persisted state. With the
// database disabled state lives in memory for the lifetime of the process.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{log: log, Clock: clockwork.NewRealClock()}

	repo, err := a.openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.writer = persist.NewWriter(repo, log)

	var pub events.Publisher = events.Discard
	if cfg.Kafka.Enabled {
		a.kafka = events.NewKafka(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), log)
		pub = a.kafka
		log.Info("publishing transaction events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(reg)

	engCfg, err := engine.FromConfig(cfg)
	if err != nil {
		a.closeDB()
		return nil, fmt.Errorf("engine config: %w", err)
	}

	a.Engine = engine.New(engCfg, engine.Deps{
		Clock:   a.Clock,
		Sink:    a.writer,
		Metrics: a.Metrics,
		Events:  pub,
		Log:     log,
		Online:  true,
	})

	a.Engine.Restore(ctx, repo)

	return a, nil
}

func (a *App) openRepository(ctx context.Context, cfg *config.Config) (persist.Repository, error) {
	if !cfg.DB.Enabled {
		a.log.Info("database disabled, keeping state in memory")
		return persist.NewMemory(), nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := store.New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	a.db = db

	return s, nil
}

// Run drives the engine and the background writers until ctx is cancelled.
// Pending snapshots and queued events are flushed before it returns.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Go(func() { a.writer.Run(ctx) })

	if a.kafka != nil {
		wg.Go(func() {
			if err := a.kafka.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("event publisher stopped", "error", err)
			}
		})
	}

	err := a.Engine.Run(ctx)

	wg.Wait()
	a.closeDB()

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (a *App) closeDB() {
	if a.db == nil {
		return
	}

	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
}
