package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/cooldown"
	"github.com/rxtech-lab/argo-signal/internal/journal"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/strategy"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Lifecycle callback types for the polling loop.
// Callbacks with an error return abort the loop when they fail.

// OnEngineStartCallback is called once before the first cycle.
type OnEngineStartCallback func(symbols []string, interval time.Duration) error

// OnEngineStopCallback is called when Run exits (always called via defer).
type OnEngineStopCallback func(err error)

// OnCycleStartCallback is called before each polling cycle.
type OnCycleStartCallback func(cycleID string, startedAt time.Time) error

// OnCycleEndCallback is called after each polling cycle with its report.
type OnCycleEndCallback func(report CycleReport)

// OnSignalCallback is called for every candidate signal once its outcome is known.
type OnSignalCallback func(record types.SignalRecord)

// OnInstrumentErrorCallback is called when one instrument is skipped for the cycle.
type OnInstrumentErrorCallback func(symbol string, err error)

// Callbacks holds the lifecycle callbacks of the scanner.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnEngineStart     *OnEngineStartCallback
	OnEngineStop      *OnEngineStopCallback
	OnCycleStart      *OnCycleStartCallback
	OnCycleEnd        *OnCycleEndCallback
	OnSignal          *OnSignalCallback
	OnInstrumentError *OnInstrumentErrorCallback
}

// Config holds the runtime settings of the scanner.
type Config struct {
	Symbols      []string
	PollInterval time.Duration
	// CooldownWindow is the deduplication window per (symbol, direction, strategy)
	CooldownWindow time.Duration
	// MaxConcurrency bounds how many instruments are evaluated at once
	MaxConcurrency int
	// RequestTimeout bounds each notifier call; zero leaves the cycle deadline alone
	RequestTimeout time.Duration
	// JournalRetention prunes journal records older than this each cycle; zero keeps all
	JournalRetention time.Duration
	Params           strategy.Params
	// AnnounceOnStart sends the startup message through the notifier
	AnnounceOnStart bool
}

// CycleReport summarises one polling cycle.
type CycleReport struct {
	CycleID        string
	StartedAt      time.Time
	Duration       time.Duration
	Instruments    int
	Emitted        int
	Suppressed     int
	DeliveryFailed int
	// Errors maps each skipped symbol to the reason it was skipped
	Errors map[string]error
}

// Signals is the number of candidate signals the cycle produced.
func (r CycleReport) Signals() int {
	return r.Emitted + r.Suppressed + r.DeliveryFailed
}

// Status is a point-in-time view of the scanner.
type Status struct {
	Running     bool
	StartedAt   time.Time
	Cycles      int
	LastCycleID string
	LastCycleAt time.Time
}

// SnapshotBuilder assembles the market snapshot of one symbol.
type SnapshotBuilder interface {
	Build(ctx context.Context, symbol string) (*types.MarketSnapshot, error)
}

// Scanner runs the signal polling loop.
//
//nolint:interfacebloat // Scanner is a core interface that naturally requires multiple methods
type Scanner interface {
	// Initialize validates the configuration and prepares the deduplicator.
	Initialize(config Config) error
	// SetSnapshotBuilder sets where market snapshots come from.
	SetSnapshotBuilder(builder SnapshotBuilder) error
	// SetNotifier sets the sink emitted signals are delivered to.
	SetNotifier(notifier notification.Notifier) error
	// SetJournal sets the optional signal journal.
	SetJournal(j journal.Journal) error
	// SetMetrics sets the optional metrics instruments.
	SetMetrics(m *metrics.Metrics) error
	// SetClock replaces the time source used for admission and journal timestamps.
	SetClock(clock cooldown.Clock) error
	// ScanOnce runs a single polling cycle over every symbol.
	ScanOnce(ctx context.Context, callbacks Callbacks) (CycleReport, error)
	// Run polls every PollInterval until ctx is cancelled.
	Run(ctx context.Context, callbacks Callbacks) error
	// Status returns the current scanner status.
	Status() Status
	// Health returns an error when the loop is not running or has stalled.
	Health() error
}
