package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// RollingExtreme is the highest or lowest close over the period bars before the newest one.
// The newest bar is still forming, so it never takes part in its own breakout level.
type RollingExtreme struct {
	period  int
	highest bool
}

// NewRollingMax creates the shifted rolling maximum of closes.
func NewRollingMax() Indicator {
	return &RollingExtreme{period: 20, highest: true}
}

// NewRollingMin creates the shifted rolling minimum of closes.
func NewRollingMin() Indicator {
	return &RollingExtreme{period: 20, highest: false}
}

// Name returns the name of the indicator.
func (r *RollingExtreme) Name() types.IndicatorType {
	if r.highest {
		return types.IndicatorTypeRollingMax
	}

	return types.IndicatorTypeRollingMin
}

// Config configures the window. Expected parameters: period (int).
func (r *RollingExtreme) Config(params ...any) error {
	period, err := parsePeriod(params, 2)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Value returns the extreme of closes[n-1-period : n-1].
func (r *RollingExtreme) Value(series types.CandleSeries) (optional.Option[float64], error) {
	required := r.period + 1
	if len(series) < required {
		return insufficient(r.Name(), required, len(series))
	}

	prior := series.Closes()[:len(series)-1]
	if r.highest {
		return lastValue(talib.Max(prior, r.period)), nil
	}

	return lastValue(talib.Min(prior, r.period)), nil
}
