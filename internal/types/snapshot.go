package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// MarketSnapshot holds every indicator reading needed for one symbol in one
// evaluation cycle. It is built fresh each cycle and must be treated as read-only.
// Undefined readings (insufficient history) are optional.None, never zero.
type MarketSnapshot struct {
	Symbol  string
	TakenAt time.Time
	// Price is the current ticker price
	Price float64
	// EMAs holds the EMA of each configured timeframe
	EMAs map[marketdata.Timespan]optional.Option[float64]
	// ADXOneHour and ADXFourHour drive regime classification
	ADXOneHour  optional.Option[float64]
	ADXFourHour optional.Option[float64]
	// RSI on the reference timeframe
	RSI optional.Option[float64]
	// ATR and ATRAverage on the reference timeframe
	ATR        optional.Option[float64]
	ATRAverage optional.Option[float64]
	// BreakoutHigh and BreakoutLow are the rolling max/min of prior closes,
	// excluding the still-forming bar
	BreakoutHigh optional.Option[float64]
	BreakoutLow  optional.Option[float64]
}

// Assessment is the per-cycle market state shared by all rule evaluators.
type Assessment struct {
	Regime               Regime
	Bias                 Bias
	SufficientVolatility bool
}

// SignalRecord is an audit entry describing the fate of one candidate signal.
type SignalRecord struct {
	CycleID    string
	Signal     Signal
	Outcome    SignalOutcome
	Error      string
	RecordedAt time.Time
}
