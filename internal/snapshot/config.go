package snapshot

import (
	"slices"
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// Config holds the timeframes and indicator periods used to build a snapshot.
type Config struct {
	// Timeframes whose EMA feeds trend alignment
	Timeframes []marketdata.Timespan
	// ReferenceTimeframe carries RSI, ATR and the breakout bounds
	ReferenceTimeframe marketdata.Timespan
	EMAPeriod          int
	RSIPeriod          int
	ADXPeriod          int
	ATRPeriod          int
	ATRAveragePeriod   int
	BreakoutPeriod     int
	// RequestTimeout bounds each provider call; zero leaves the caller's deadline alone
	RequestTimeout time.Duration
}

// DefaultConfig returns the stock multi-timeframe setup.
func DefaultConfig() Config {
	return Config{
		Timeframes:         slices.Clone(marketdata.DefaultTimeframes),
		ReferenceTimeframe: marketdata.TimespanOneHour,
		EMAPeriod:          200,
		RSIPeriod:          14,
		ADXPeriod:          14,
		ATRPeriod:          14,
		ATRAveragePeriod:   50,
		BreakoutPeriod:     20,
		RequestTimeout:     15 * time.Second,
	}
}

// Validate checks the timeframes and periods.
func (c Config) Validate() error {
	if len(c.Timeframes) == 0 {
		return errors.New(errors.ErrCodeInvalidTimeframe, "at least one timeframe is required")
	}

	for _, tf := range c.Timeframes {
		if !tf.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", tf)
		}
	}

	if !c.ReferenceTimeframe.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported reference timeframe %q", c.ReferenceTimeframe)
	}

	periods := map[string]int{
		"ema_period":         c.EMAPeriod,
		"rsi_period":         c.RSIPeriod,
		"adx_period":         c.ADXPeriod,
		"atr_period":         c.ATRPeriod,
		"atr_average_period": c.ATRAveragePeriod,
		"breakout_period":    c.BreakoutPeriod,
	}
	for name, period := range periods {
		if period <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be positive, got %d", name, period)
		}
	}

	if c.RequestTimeout < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "request timeout must not be negative, got %s", c.RequestTimeout)
	}

	return nil
}

// FetchLimit is the number of bars requested per timeframe: enough for the EMA
// plus warm-up, and never fewer than 250.
func (c Config) FetchLimit() int {
	return max(c.EMAPeriod+50, 250, c.ATRPeriod+c.ATRAveragePeriod+1, 2*c.ADXPeriod+1)
}

// RequiredTimeframes returns the configured timeframes plus 1h, 4h and the
// reference timeframe, without duplicates, in a stable order.
func (c Config) RequiredTimeframes() []marketdata.Timespan {
	out := make([]marketdata.Timespan, 0, len(c.Timeframes)+3)

	for _, tf := range append(slices.Clone(c.Timeframes), marketdata.TimespanOneHour, marketdata.TimespanFourHours, c.ReferenceTimeframe) {
		if !slices.Contains(out, tf) {
			out = append(out, tf)
		}
	}

	return out
}
