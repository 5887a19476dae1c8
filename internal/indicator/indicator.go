package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Indicator interface defines methods that any technical indicator must implement.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters
	Config(params ...any) error
	// Value returns the indicator reading at the newest bar of the series.
	// A series too short for the indicator yields None together with an
	// *errors.InsufficientDataError; a NaN or infinite reading yields None and no error.
	Value(series types.CandleSeries) (optional.Option[float64], error)
}

// lastValue returns the newest element of a talib output slice, None when it is not finite.
func lastValue(out []float64) optional.Option[float64] {
	if len(out) == 0 {
		return optional.None[float64]()
	}

	v := out[len(out)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

func insufficient(indicator types.IndicatorType, required, actual int) (optional.Option[float64], error) {
	return optional.None[float64](), errors.NewInsufficientDataErrorf(
		required, actual, string(indicator),
		"%s requires at least %d bars, got %d", indicator, required, actual,
	)
}

// parsePeriod validates a single positive int parameter of at least minPeriod.
func parsePeriod(params []any, minPeriod int) (int, error) {
	if len(params) != 1 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period < minPeriod {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be at least %d, got %d", minPeriod, period)
	}

	return period, nil
}
