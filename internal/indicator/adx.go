package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// ADX represents the Average Directional Index, used to tell trending from ranging markets.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator with default configuration.
func NewADX() Indicator {
	return &ADX{
		period: 14,
	}
}

// Name returns the name of the indicator.
func (a *ADX) Name() types.IndicatorType {
	return types.IndicatorTypeADX
}

// Config configures the ADX indicator. Expected parameters: period (int).
func (a *ADX) Config(params ...any) error {
	period, err := parsePeriod(params, 2)
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// Value returns the ADX at the newest bar. DX is smoothed twice, so 2*period+1 bars are required.
func (a *ADX) Value(series types.CandleSeries) (optional.Option[float64], error) {
	required := 2*a.period + 1
	if len(series) < required {
		return insufficient(a.Name(), required, len(series))
	}

	return lastValue(talib.Adx(series.Highs(), series.Lows(), series.Closes(), a.period)), nil
}
