package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// ClassifyRegime returns TRENDING only when both ADX readings are defined and strictly above threshold.
// Undefined input falls back to RANGING, which keeps the breakout rule switched off.
func ClassifyRegime(adxOneHour, adxFourHour optional.Option[float64], threshold float64) types.Regime {
	if adxOneHour.IsNone() || adxFourHour.IsNone() {
		return types.RegimeRanging
	}

	if adxOneHour.Unwrap() > threshold && adxFourHour.Unwrap() > threshold {
		return types.RegimeTrending
	}

	return types.RegimeRanging
}
