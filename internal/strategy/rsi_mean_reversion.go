package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// RSIMeanReversion buys oversold and sells overbought markets while the regime is RANGING.
type RSIMeanReversion struct{}

// NewRSIMeanReversion creates the RSI mean reversion rule.
func NewRSIMeanReversion() Evaluator {
	return &RSIMeanReversion{}
}

// Name returns the strategy name.
func (r *RSIMeanReversion) Name() types.StrategyName {
	return types.StrategyRSIMeanReversion
}

// Evaluate checks both directions independently.
func (r *RSIMeanReversion) Evaluate(snapshot *types.MarketSnapshot, ctx EvaluationContext) []types.Signal {
	assessment := ctx.Assessment
	if !assessment.SufficientVolatility || assessment.Regime != types.RegimeRanging || snapshot.RSI.IsNone() {
		return nil
	}

	rsi := snapshot.RSI.Unwrap()
	params := ctx.Params

	var signals []types.Signal

	if rsi < params.RSIBuyThreshold && assessment.Bias == types.BiasBullish {
		confidence := types.ConfidenceMedium
		if rsi < params.RSIStrongBuyThreshold {
			confidence = types.ConfidenceHigh
		}

		signal := newSignal(snapshot, assessment, types.DirectionBuy, r.Name(), confidence)
		signal.RSI = optional.Some(rsi)
		signals = append(signals, signal)
	}

	if rsi > params.RSISellThreshold && assessment.Bias == types.BiasBearish {
		confidence := types.ConfidenceMedium
		if rsi > params.RSIStrongSellThreshold {
			confidence = types.ConfidenceHigh
		}

		signal := newSignal(snapshot, assessment, types.DirectionSell, r.Name(), confidence)
		signal.RSI = optional.Some(rsi)
		signals = append(signals, signal)
	}

	return signals
}
