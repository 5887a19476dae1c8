package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// EMA represents the Exponential Moving Average of closes.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 200, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
	period, err := parsePeriod(params, 1)
	if err != nil {
		return err
	}

	e.period = period

	return nil
}

// Value returns the EMA at the newest close. It is undefined while fewer than period closes exist.
func (e *EMA) Value(series types.CandleSeries) (optional.Option[float64], error) {
	if len(series) < e.period {
		return insufficient(e.Name(), e.period, len(series))
	}

	return lastValue(talib.Ema(series.Closes(), e.period)), nil
}
