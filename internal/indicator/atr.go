package indicator

import (
	talib "github.com/markcheno/go-talib"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// ATR represents the Average True Range indicator.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with default configuration.
func NewATR() Indicator {
	return &ATR{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Config configures the ATR indicator. Expected parameters: period (int).
func (a *ATR) Config(params ...any) error {
	period, err := parsePeriod(params, 2)
	if err != nil {
		return err
	}

	a.period = period

	return nil
}

// Value returns the ATR at the newest bar.
func (a *ATR) Value(series types.CandleSeries) (optional.Option[float64], error) {
	values, err := atrSeries(series, a.period)
	if err != nil {
		return optional.None[float64](), err
	}

	return lastValue(values), nil
}

// atrSeries returns only the defined part of the ATR series. The first ATR sits at index period.
func atrSeries(series types.CandleSeries, period int) ([]float64, error) {
	required := period + 1
	if len(series) < required {
		_, err := insufficient(types.IndicatorTypeATR, required, len(series))

		return nil, err
	}

	out := talib.Atr(series.Highs(), series.Lows(), series.Closes(), period)

	return out[period:], nil
}

// ATRAverage is the simple moving average of ATR, the baseline for the volatility filter.
type ATRAverage struct {
	atrPeriod     int
	averagePeriod int
}

// NewATRAverage creates a new SMA-of-ATR indicator with default configuration.
func NewATRAverage() Indicator {
	return &ATRAverage{
		atrPeriod:     14,
		averagePeriod: 50,
	}
}

// Name returns the name of the indicator.
func (a *ATRAverage) Name() types.IndicatorType {
	return types.IndicatorTypeATRAverage
}

// Config configures the indicator. Expected parameters: atrPeriod (int), averagePeriod (int).
func (a *ATRAverage) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: atrPeriod (int), averagePeriod (int)")
	}

	atrPeriod, err := parsePeriod(params[:1], 2)
	if err != nil {
		return err
	}

	averagePeriod, err := parsePeriod(params[1:], 1)
	if err != nil {
		return err
	}

	a.atrPeriod = atrPeriod
	a.averagePeriod = averagePeriod

	return nil
}

// Value returns the SMA of the defined ATR readings, including the newest one.
func (a *ATRAverage) Value(series types.CandleSeries) (optional.Option[float64], error) {
	required := a.atrPeriod + a.averagePeriod
	if len(series) < required {
		return insufficient(a.Name(), required, len(series))
	}

	values, err := atrSeries(series, a.atrPeriod)
	if err != nil {
		return optional.None[float64](), err
	}

	if a.averagePeriod == 1 {
		return lastValue(values), nil
	}

	return lastValue(talib.Sma(values, a.averagePeriod)), nil
}
