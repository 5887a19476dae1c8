package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// RSI represents the Relative Strength Index indicator (Wilder smoothing).
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	period, err := parsePeriod(params, 2)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Value returns the RSI at the newest close. The first reading needs period+1 closes.
func (r *RSI) Value(series types.CandleSeries) (optional.Option[float64], error) {
	required := r.period + 1
	if len(series) < required {
		return insufficient(r.Name(), required, len(series))
	}

	return lastValue(talib.Rsi(series.Closes(), r.period)), nil
}
