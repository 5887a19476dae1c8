package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// Align compares price with every usable EMA. Undefined, zero and non-finite EMAs are skipped;
// with nothing left to compare the bias is NEUTRAL.
func Align(price float64, emas map[marketdata.Timespan]optional.Option[float64]) types.Bias {
	considered := 0
	above := 0
	below := 0

	for _, ema := range emas {
		if ema.IsNone() {
			continue
		}

		v := ema.Unwrap()
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		considered++

		switch {
		case price > v:
			above++
		case price < v:
			below++
		}
	}

	switch {
	case considered == 0:
		return types.BiasNeutral
	case above == considered:
		return types.BiasBullish
	case below == considered:
		return types.BiasBearish
	default:
		return types.BiasNeutral
	}
}
