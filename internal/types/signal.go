package types

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
)

// Direction is the side of a trade signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// StrategyName identifies the rule family that produced a signal.
type StrategyName string

const (
	StrategyRSIMeanReversion StrategyName = "RSI Mean Reversion"
	StrategyBreakout         StrategyName = "Breakout"
)

// Regime is the market behavior classification derived from ADX.
type Regime string

const (
	RegimeTrending Regime = "TRENDING"
	RegimeRanging  Regime = "RANGING"
)

// Bias is the directional lean derived from price versus the multi-timeframe EMAs.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// Confidence grades a signal.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
)

// Signal is an immutable trade alert produced by a rule evaluator.
type Signal struct {
	// ID is a unique identifier for this signal instance
	ID string
	// Time is when the signal was generated
	Time time.Time
	// Symbol is the instrument the signal refers to
	Symbol string
	// Direction is BUY or SELL
	Direction Direction
	// Strategy is the rule family that fired
	Strategy StrategyName
	// Price is the current price at evaluation time
	Price float64
	// Regime is the regime the instrument was in when the rule fired
	Regime Regime
	// Bias is the multi-timeframe alignment at evaluation time
	Bias Bias
	// Confidence is HIGH or MEDIUM
	Confidence Confidence
	// RSI is set for RSI mean reversion signals
	RSI optional.Option[float64]
	// BreakoutLevel is set for breakout signals
	BreakoutLevel optional.Option[float64]
}

// SignalKey identifies signals that share a cooldown window.
type SignalKey struct {
	Symbol    string
	Direction Direction
	Strategy  StrategyName
}

// String renders the key as symbol_direction_strategy.
func (k SignalKey) String() string {
	return fmt.Sprintf("%s_%s_%s", k.Symbol, k.Direction, k.Strategy)
}

// Key returns the cooldown key of the signal.
func (s Signal) Key() SignalKey {
	return SignalKey{
		Symbol:    s.Symbol,
		Direction: s.Direction,
		Strategy:  s.Strategy,
	}
}

// SignalOutcome records what happened to a candidate signal after deduplication.
type SignalOutcome string

const (
	SignalOutcomeEmitted        SignalOutcome = "emitted"
	SignalOutcomeSuppressed     SignalOutcome = "suppressed"
	SignalOutcomeDeliveryFailed SignalOutcome = "delivery_failed"
)
