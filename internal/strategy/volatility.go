package strategy

import "github.com/moznion/go-optional"

// SufficientVolatility reports whether ATR is strictly above its own moving average.
func SufficientVolatility(atr, average optional.Option[float64]) bool {
	if atr.IsNone() || average.IsNone() {
		return false
	}

	return atr.Unwrap() > average.Unwrap()
}
