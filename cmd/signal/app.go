package main

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/journal"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/scanner/engine"
	enginev1 "github.com/rxtech-lab/argo-signal/internal/scanner/engine/engine_v1"
	"github.com/rxtech-lab/argo-signal/internal/server"
	"github.com/rxtech-lab/argo-signal/internal/snapshot"
	"go.uber.org/zap"
)

// app is the fully wired process: scanner plus its collaborators.
type app struct {
	config  *config.Config
	log     *logger.Logger
	scanner engine.Scanner
	journal journal.Journal
	metrics *metrics.Metrics
	server  *server.Server
}

// newApp builds every component from cfg. In live mode the scanner announces itself on start
// and the status server is created unless cfg.MetricsAddr is empty.
func newApp(cfg *config.Config, log *logger.Logger, live bool) (*app, error) {
	dataProvider, err := cfg.DataProvider()
	if err != nil {
		return nil, err
	}

	snapshotConfig, err := cfg.SnapshotConfig()
	if err != nil {
		return nil, err
	}

	builder, err := snapshot.NewBuilder(dataProvider, snapshotConfig, log)
	if err != nil {
		return nil, err
	}

	notifier, err := notification.New(cfg.NotificationConfig(), log)
	if err != nil {
		return nil, err
	}

	j, err := journal.NewDuckDBJournal(log)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	scanner := enginev1.NewScannerV1(log)

	err = scanner.Initialize(engine.Config{
		Symbols:          cfg.Symbols,
		PollInterval:     cfg.PollInterval(),
		CooldownWindow:   cfg.CooldownWindow(),
		MaxConcurrency:   cfg.MaxConcurrency,
		RequestTimeout:   cfg.RequestTimeout(),
		JournalRetention: cfg.JournalRetention(),
		Params:           cfg.StrategyParams(),
		AnnounceOnStart:  live,
	})
	if err != nil {
		closeJournal(j, log)

		return nil, err
	}

	for _, wire := range []func() error{
		func() error { return scanner.SetSnapshotBuilder(builder) },
		func() error { return scanner.SetNotifier(notifier) },
		func() error { return scanner.SetJournal(j) },
		func() error { return scanner.SetMetrics(m) },
	} {
		if err := wire(); err != nil {
			closeJournal(j, log)

			return nil, err
		}
	}

	a := &app{
		config:  cfg,
		log:     log,
		scanner: scanner,
		journal: j,
		metrics: m,
		server:  nil,
	}

	if live && cfg.MetricsAddr != "" {
		a.server = server.New(cfg.MetricsAddr, m, j, scanner.Health, log)
	}

	return a, nil
}

// run starts the status server and blocks in the polling loop until ctx is cancelled.
func (a *app) run(ctx context.Context, callbacks engine.Callbacks) error {
	if a.server != nil {
		a.server.Start()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := a.server.Shutdown(shutdownCtx); err != nil {
				a.log.Warn("Failed to shut down status server", zap.Error(err))
			}
		}()
	}

	return a.scanner.Run(ctx, callbacks)
}

func (a *app) close() {
	closeJournal(a.journal, a.log)
}

func closeJournal(j journal.Journal, log *logger.Logger) {
	if err := j.Close(); err != nil {
		log.Warn("Failed to close journal", zap.Error(err))
	}
}
