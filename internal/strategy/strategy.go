package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Params are the thresholds shared by the regime classifier and the rule evaluators.
type Params struct {
	ADXThreshold           float64 `validate:"gte=0,lte=100"`
	RSIBuyThreshold        float64 `validate:"gt=0,lt=100,ltfield=RSISellThreshold"`
	RSISellThreshold       float64 `validate:"gt=0,lt=100"`
	RSIStrongBuyThreshold  float64 `validate:"gt=0,ltefield=RSIBuyThreshold"`
	RSIStrongSellThreshold float64 `validate:"lt=100,gtefield=RSISellThreshold"`
	// RSIExitLong and RSIExitShort belong to position management and are carried for it only.
	RSIExitLong  float64 `validate:"gte=0,lte=100"`
	RSIExitShort float64 `validate:"gte=0,lte=100"`
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		ADXThreshold:           20,
		RSIBuyThreshold:        40,
		RSISellThreshold:       60,
		RSIStrongBuyThreshold:  35,
		RSIStrongSellThreshold: 65,
		RSIExitLong:            50,
		RSIExitShort:           50,
	}
}

// Validate checks that thresholds are in range and ordered.
func (p Params) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidThreshold, "invalid strategy thresholds", err)
	}

	return nil
}

// EvaluationContext is the per-cycle state handed to every evaluator.
type EvaluationContext struct {
	Assessment types.Assessment
	Params     Params
}

// Evaluator is a rule family. Evaluate must be a pure function of its inputs and
// return zero, one or two candidate signals.
type Evaluator interface {
	Name() types.StrategyName
	Evaluate(snapshot *types.MarketSnapshot, ctx EvaluationContext) []types.Signal
}

// DefaultEvaluators returns the RSI mean reversion and breakout rules, in that order.
func DefaultEvaluators() []Evaluator {
	return []Evaluator{NewRSIMeanReversion(), NewBreakout()}
}

// Assess classifies the regime, the trend bias and the volatility state of a snapshot.
func Assess(snapshot *types.MarketSnapshot, params Params) types.Assessment {
	return types.Assessment{
		Regime:               ClassifyRegime(snapshot.ADXOneHour, snapshot.ADXFourHour, params.ADXThreshold),
		Bias:                 Align(snapshot.Price, snapshot.EMAs),
		SufficientVolatility: SufficientVolatility(snapshot.ATR, snapshot.ATRAverage),
	}
}

// Evaluate assesses the snapshot once and collects the candidates of every evaluator in order.
// With no evaluators given the default set is used.
func Evaluate(snapshot *types.MarketSnapshot, params Params, evaluators ...Evaluator) (types.Assessment, []types.Signal) {
	if len(evaluators) == 0 {
		evaluators = DefaultEvaluators()
	}

	ctx := EvaluationContext{
		Assessment: Assess(snapshot, params),
		Params:     params,
	}

	var signals []types.Signal
	for _, evaluator := range evaluators {
		signals = append(signals, evaluator.Evaluate(snapshot, ctx)...)
	}

	return ctx.Assessment, signals
}

// newSignal fills the fields every rule shares. ID is left for the emitter.
func newSignal(snapshot *types.MarketSnapshot, assessment types.Assessment, direction types.Direction, strategy types.StrategyName, confidence types.Confidence) types.Signal {
	return types.Signal{
		Time:       snapshot.TakenAt,
		Symbol:     snapshot.Symbol,
		Direction:  direction,
		Strategy:   strategy,
		Price:      snapshot.Price,
		Regime:     assessment.Regime,
		Bias:       assessment.Bias,
		Confidence: confidence,
	}
}
