package strategy

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Breakout follows price out of its recent range while the regime is TRENDING.
type Breakout struct{}

// NewBreakout creates the breakout rule.
func NewBreakout() Evaluator {
	return &Breakout{}
}

// Name returns the strategy name.
func (b *Breakout) Name() types.StrategyName {
	return types.StrategyBreakout
}

// Evaluate compares price with the shifted rolling max and min. Confidence is always HIGH.
func (b *Breakout) Evaluate(snapshot *types.MarketSnapshot, ctx EvaluationContext) []types.Signal {
	assessment := ctx.Assessment
	if !assessment.SufficientVolatility || assessment.Regime != types.RegimeTrending {
		return nil
	}

	var signals []types.Signal

	if snapshot.BreakoutHigh.IsSome() && snapshot.Price > snapshot.BreakoutHigh.Unwrap() && assessment.Bias == types.BiasBullish {
		signal := newSignal(snapshot, assessment, types.DirectionBuy, b.Name(), types.ConfidenceHigh)
		signal.BreakoutLevel = snapshot.BreakoutHigh
		signals = append(signals, signal)
	}

	if snapshot.BreakoutLow.IsSome() && snapshot.Price < snapshot.BreakoutLow.Unwrap() && assessment.Bias == types.BiasBearish {
		signal := newSignal(snapshot, assessment, types.DirectionSell, b.Name(), types.ConfidenceHigh)
		signal.BreakoutLevel = snapshot.BreakoutLow
		signals = append(signals, signal)
	}

	return signals
}
