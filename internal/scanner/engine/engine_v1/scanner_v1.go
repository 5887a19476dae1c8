package engine_v1

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signal/internal/cooldown"
	"github.com/rxtech-lab/argo-signal/internal/journal"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/scanner/engine"
	"github.com/rxtech-lab/argo-signal/internal/strategy"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default configuration values.
const (
	DefaultPollInterval   = 300 * time.Second
	DefaultMaxConcurrency = 1
	// staleCycles is how many poll intervals may pass without a finished cycle before Health fails
	staleCycles = 3
)

// ScannerV1 implements engine.Scanner as a ticker-driven batch loop.
type ScannerV1 struct {
	config      engine.Config
	builder     engine.SnapshotBuilder
	notifier    notification.Notifier
	journal     journal.Journal
	metrics     *metrics.Metrics
	dedup       *cooldown.Deduplicator
	clock       cooldown.Clock
	evaluators  []strategy.Evaluator
	log         *logger.Logger
	newID       func() string
	initialized bool

	mu     sync.RWMutex
	status engine.Status
}

// cycle accumulates the report of one polling cycle across workers.
type cycle struct {
	mu     sync.Mutex
	report engine.CycleReport
}

func (c *cycle) count(outcome types.SignalOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch outcome {
	case types.SignalOutcomeEmitted:
		c.report.Emitted++
	case types.SignalOutcomeSuppressed:
		c.report.Suppressed++
	case types.SignalOutcomeDeliveryFailed:
		c.report.DeliveryFailed++
	}
}

func (c *cycle) fail(symbol string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report.Errors[symbol] = err
}

// NewScannerV1 creates a scanner with the default rule evaluators and the system clock.
func NewScannerV1(log *logger.Logger) engine.Scanner {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ScannerV1{
		config:      engine.Config{}, //nolint:exhaustruct // initialized via Initialize()
		builder:     nil,
		notifier:    nil,
		journal:     nil,
		metrics:     nil,
		dedup:       nil,
		clock:       cooldown.SystemClock{},
		evaluators:  strategy.DefaultEvaluators(),
		log:         log.Named("scanner"),
		newID:       uuid.NewString,
		initialized: false,
		status:      engine.Status{}, //nolint:exhaustruct // zero status before Run
	}
}

// Initialize implements engine.Scanner.
func (s *ScannerV1) Initialize(config engine.Config) error {
	if len(config.Symbols) == 0 {
		return errors.New(errors.ErrCodeEngineNoSymbols, "no symbols configured")
	}

	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	if config.CooldownWindow <= 0 {
		config.CooldownWindow = cooldown.DefaultWindow
	}

	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}

	if err := config.Params.Validate(); err != nil {
		return err
	}

	s.config = config
	s.dedup = cooldown.NewDeduplicator(config.CooldownWindow, s.clock)
	s.initialized = true

	s.log.Debug("Scanner initialized",
		zap.Strings("symbols", config.Symbols),
		zap.Duration("poll_interval", config.PollInterval),
		zap.Duration("cooldown", config.CooldownWindow),
		zap.Int("max_concurrency", config.MaxConcurrency),
	)

	return nil
}

// SetSnapshotBuilder implements engine.Scanner.
func (s *ScannerV1) SetSnapshotBuilder(builder engine.SnapshotBuilder) error {
	s.builder = builder

	return nil
}

// SetNotifier implements engine.Scanner.
func (s *ScannerV1) SetNotifier(notifier notification.Notifier) error {
	s.notifier = notifier

	return nil
}

// SetJournal implements engine.Scanner.
func (s *ScannerV1) SetJournal(j journal.Journal) error {
	s.journal = j

	return nil
}

// SetMetrics implements engine.Scanner.
func (s *ScannerV1) SetMetrics(m *metrics.Metrics) error {
	s.metrics = m

	return nil
}

// SetClock implements engine.Scanner. Replacing the clock after Initialize resets the cooldown ledger.
func (s *ScannerV1) SetClock(clock cooldown.Clock) error {
	if clock == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "clock must not be nil")
	}

	s.clock = clock
	if s.dedup != nil {
		s.dedup = cooldown.NewDeduplicator(s.dedup.Window(), clock)
	}

	return nil
}

// Status implements engine.Scanner.
func (s *ScannerV1) Status() engine.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Health implements engine.Scanner.
func (s *ScannerV1) Health() error {
	status := s.Status()
	if !status.Running {
		return errors.New(errors.ErrCodeEngineNotInitialized, "scanner is not running")
	}

	last := status.LastCycleAt
	if last.IsZero() {
		last = status.StartedAt
	}

	if age := s.clock.Now().Sub(last); age > staleCycles*s.config.PollInterval {
		return errors.Newf(errors.ErrCodeEngineStalled, "no cycle finished for %s", age.Round(time.Second))
	}

	return nil
}

// Run implements engine.Scanner.
func (s *ScannerV1) Run(ctx context.Context, callbacks engine.Callbacks) error {
	var runErr error

	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()

		if callbacks.OnEngineStop != nil {
			(*callbacks.OnEngineStop)(runErr)
		}
	}()

	if err := s.preRunCheck(); err != nil {
		runErr = err

		return err
	}

	s.mu.Lock()
	s.status.Running = true
	s.status.StartedAt = s.clock.Now()
	s.mu.Unlock()

	if s.config.AnnounceOnStart {
		announceCtx, cancel := s.withTimeout(ctx)
		if err := notification.Announce(announceCtx, s.notifier, s.config.Symbols, s.config.PollInterval); err != nil {
			s.log.Warn("Failed to send startup announcement", zap.Error(err))
		}
		cancel()
	}

	if callbacks.OnEngineStart != nil {
		if err := (*callbacks.OnEngineStart)(s.config.Symbols, s.config.PollInterval); err != nil {
			runErr = errors.Wrap(errors.ErrCodeCallbackFailed, "OnEngineStart callback failed", err)

			return runErr
		}
	}

	s.log.Info("Scanner started",
		zap.Strings("symbols", s.config.Symbols),
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.String("notifier", s.notifier.Name()),
	)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()

			return runErr
		default:
		}

		if _, err := s.ScanOnce(ctx, callbacks); err != nil {
			runErr = err

			return runErr
		}

		select {
		case <-ctx.Done():
			runErr = ctx.Err()

			return runErr
		case <-ticker.C:
		}
	}
}

// ScanOnce implements engine.Scanner.
func (s *ScannerV1) ScanOnce(ctx context.Context, callbacks engine.Callbacks) (engine.CycleReport, error) {
	if err := s.preRunCheck(); err != nil {
		return engine.CycleReport{}, err //nolint:exhaustruct // no cycle ran
	}

	started := time.Now()
	c := &cycle{
		report: engine.CycleReport{
			CycleID:     s.newID(),
			StartedAt:   s.clock.Now(),
			Instruments: len(s.config.Symbols),
			Errors:      make(map[string]error),
		},
	}

	if callbacks.OnCycleStart != nil {
		if err := (*callbacks.OnCycleStart)(c.report.CycleID, c.report.StartedAt); err != nil {
			return c.report, errors.Wrap(errors.ErrCodeCallbackFailed, "OnCycleStart callback failed", err)
		}
	}

	s.log.Debug("Cycle started", zap.String("cycle_id", c.report.CycleID))

	var group errgroup.Group

	group.SetLimit(s.config.MaxConcurrency)

	for _, symbol := range s.config.Symbols {
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			if err := s.scanInstrument(ctx, c, symbol, callbacks); err != nil {
				s.handleInstrumentError(ctx, c, symbol, err, callbacks)
			}

			return nil
		})
	}

	_ = group.Wait()

	s.prune()

	c.report.Duration = time.Since(started)
	finished := s.clock.Now()

	s.metrics.ObserveCycle(c.report.Duration, finished)

	s.mu.Lock()
	s.status.Cycles++
	s.status.LastCycleID = c.report.CycleID
	s.status.LastCycleAt = finished
	s.mu.Unlock()

	s.log.Info("Cycle finished",
		zap.String("cycle_id", c.report.CycleID),
		zap.Duration("duration", c.report.Duration),
		zap.Int("emitted", c.report.Emitted),
		zap.Int("suppressed", c.report.Suppressed),
		zap.Int("delivery_failed", c.report.DeliveryFailed),
		zap.Int("skipped", len(c.report.Errors)),
	)

	if callbacks.OnCycleEnd != nil {
		(*callbacks.OnCycleEnd)(c.report)
	}

	if err := ctx.Err(); err != nil {
		return c.report, err
	}

	return c.report, nil
}

// scanInstrument builds, evaluates and dispatches one symbol. Panics become ErrCodePanic errors.
func (s *ScannerV1) scanInstrument(ctx context.Context, c *cycle, symbol string, callbacks engine.Callbacks) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodePanic, "panic while scanning %s: %v", symbol, r)
		}
	}()

	started := time.Now()
	snapshot, err := s.builder.Build(ctx, symbol)
	s.metrics.ObserveSnapshot(symbol, time.Since(started))

	if err != nil {
		return err
	}

	if snapshot == nil {
		return errors.Newf(errors.ErrCodeDataUnavailable, "no snapshot for %s", symbol)
	}

	assessment, candidates := strategy.Evaluate(snapshot, s.config.Params, s.evaluators...)

	s.log.Debug("Instrument evaluated",
		zap.String("symbol", symbol),
		zap.String("regime", string(assessment.Regime)),
		zap.String("bias", string(assessment.Bias)),
		zap.Bool("sufficient_volatility", assessment.SufficientVolatility),
		zap.Int("candidates", len(candidates)),
	)

	for _, candidate := range candidates {
		candidate.ID = s.newID()
		c.count(s.dispatch(ctx, c.report.CycleID, candidate, callbacks))
	}

	return nil
}

// dispatch admits and delivers one candidate. Admission is recorded before delivery,
// so a failed delivery is not retried inside the cooldown window.
func (s *ScannerV1) dispatch(ctx context.Context, cycleID string, signal types.Signal, callbacks engine.Callbacks) types.SignalOutcome {
	now := s.clock.Now()
	record := types.SignalRecord{
		CycleID:    cycleID,
		Signal:     signal,
		Outcome:    types.SignalOutcomeSuppressed,
		Error:      "",
		RecordedAt: now,
	}

	fields := []zap.Field{
		zap.String("symbol", signal.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.String("strategy", string(signal.Strategy)),
		zap.String("signal_id", signal.ID),
	}

	if !s.dedup.Admit(signal, now) {
		s.log.Debug("Signal suppressed by cooldown", fields...)
	} else {
		sendCtx, cancel := s.withTimeout(ctx)
		err := s.notifier.Send(sendCtx, signal)
		cancel()

		if err != nil {
			record.Outcome = types.SignalOutcomeDeliveryFailed
			record.Error = err.Error()
			s.log.Warn("Signal delivery failed", append(fields, zap.Error(err))...)
		} else {
			record.Outcome = types.SignalOutcomeEmitted
			s.log.Info("Signal emitted", append(fields,
				zap.Float64("price", signal.Price),
				zap.String("confidence", string(signal.Confidence)),
			)...)
		}
	}

	if s.journal != nil {
		if err := s.journal.Record(record); err != nil {
			s.log.Warn("Failed to record signal", append(fields, zap.Error(err))...)
			s.metrics.ObserveError(signal.Symbol, metrics.ErrorKindJournal)
		}
	}

	s.metrics.ObserveSignal(signal, record.Outcome)

	if callbacks.OnSignal != nil {
		(*callbacks.OnSignal)(record)
	}

	return record.Outcome
}

func (s *ScannerV1) handleInstrumentError(ctx context.Context, c *cycle, symbol string, err error, callbacks engine.Callbacks) {
	// Failures after cancellation are not reported against the instrument.
	if ctx.Err() != nil {
		return
	}

	c.fail(symbol, err)

	switch {
	case errors.IsDataUnavailable(err):
		s.log.Warn("Skipping instrument, data unavailable", zap.String("symbol", symbol), zap.Error(err))
		s.metrics.ObserveError(symbol, metrics.ErrorKindDataUnavailable)
	case errors.HasCode(err, errors.ErrCodePanic):
		s.log.Error("Recovered panic while scanning instrument", zap.String("symbol", symbol), zap.Error(err))
		s.metrics.ObserveError(symbol, metrics.ErrorKindPanic)
	default:
		s.log.Error("Failed to evaluate instrument", zap.String("symbol", symbol), zap.Error(err))
		s.metrics.ObserveError(symbol, metrics.ErrorKindEvaluation)
	}

	if callbacks.OnInstrumentError != nil {
		(*callbacks.OnInstrumentError)(symbol, err)
	}
}

// prune drops expired cooldown entries and old journal records.
func (s *ScannerV1) prune() {
	now := s.clock.Now()

	if removed := s.dedup.Prune(now); removed > 0 {
		s.log.Debug("Pruned cooldown entries", zap.Int("removed", removed))
	}

	if s.journal == nil || s.config.JournalRetention <= 0 {
		return
	}

	if _, err := s.journal.Prune(now.Add(-s.config.JournalRetention)); err != nil {
		s.log.Warn("Failed to prune journal", zap.Error(err))
	}
}

func (s *ScannerV1) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

// preRunCheck validates that all required components are configured before running.
func (s *ScannerV1) preRunCheck() error {
	if !s.initialized {
		return errors.New(errors.ErrCodeEngineNotInitialized, "scanner not initialized - call Initialize() first")
	}

	if s.builder == nil {
		return errors.New(errors.ErrCodeEngineNoProvider, "snapshot builder not set - call SetSnapshotBuilder() first")
	}

	if s.notifier == nil {
		return errors.New(errors.ErrCodeEngineNoNotifier, "notifier not set - call SetNotifier() first")
	}

	return nil
}

// Verify ScannerV1 implements engine.Scanner interface.
var _ engine.Scanner = (*ScannerV1)(nil)
