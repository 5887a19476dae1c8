package snapshot

import (
	"context"
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// requiredIndicators are the readings every snapshot takes.
var requiredIndicators = []types.IndicatorType{
	types.IndicatorTypeEMA,
	types.IndicatorTypeRSI,
	types.IndicatorTypeADX,
	types.IndicatorTypeATR,
	types.IndicatorTypeATRAverage,
	types.IndicatorTypeRollingMax,
	types.IndicatorTypeRollingMin,
}

// Builder fetches market data for one symbol and turns it into a MarketSnapshot.
type Builder struct {
	provider   provider.DataProvider
	config     Config
	indicators indicator.IndicatorRegistry
	logger     *logger.Logger
	now        func() time.Time
}

// NewBuilder creates a builder with indicators configured from config.
func NewBuilder(dataProvider provider.DataProvider, config Config, log *logger.Logger) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	registry, err := NewIndicatorRegistry(config)
	if err != nil {
		return nil, err
	}

	return NewBuilderWithRegistry(dataProvider, config, registry, log)
}

// NewBuilderWithRegistry creates a builder around a pre-populated indicator registry.
// The registry must hold every indicator type the snapshot needs.
func NewBuilderWithRegistry(dataProvider provider.DataProvider, config Config, registry indicator.IndicatorRegistry, log *logger.Logger) (*Builder, error) {
	if dataProvider == nil {
		return nil, errors.New(errors.ErrCodeEngineNoProvider, "snapshot builder requires a data provider")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		return nil, errors.New(errors.ErrCodeIndicatorNotFound, "snapshot builder requires an indicator registry")
	}

	if err := registry.Require(requiredIndicators...); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Builder{
		provider:   dataProvider,
		config:     config,
		indicators: registry,
		logger:     log.Named("snapshot"),
		now:        time.Now,
	}, nil
}

// NewIndicatorRegistry registers every indicator a snapshot needs, configured with the periods in config.
func NewIndicatorRegistry(config Config) (indicator.IndicatorRegistry, error) {
	registry := indicator.NewIndicatorRegistry()

	setup := []struct {
		indicator indicator.Indicator
		params    []any
	}{
		{indicator.NewEMA(), []any{config.EMAPeriod}},
		{indicator.NewRSI(), []any{config.RSIPeriod}},
		{indicator.NewADX(), []any{config.ADXPeriod}},
		{indicator.NewATR(), []any{config.ATRPeriod}},
		{indicator.NewATRAverage(), []any{config.ATRPeriod, config.ATRAveragePeriod}},
		{indicator.NewRollingMax(), []any{config.BreakoutPeriod}},
		{indicator.NewRollingMin(), []any{config.BreakoutPeriod}},
	}

	for _, s := range setup {
		if err := s.indicator.Config(s.params...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to configure %s", s.indicator.Name())
		}

		if err := registry.RegisterIndicator(s.indicator); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Build fetches every required timeframe and the current price, then computes all indicator readings.
// Any fetch failure or malformed series fails the whole snapshot with ErrCodeDataUnavailable;
// short history only leaves the affected readings undefined.
func (b *Builder) Build(ctx context.Context, symbol string) (*types.MarketSnapshot, error) {
	limit := b.config.FetchLimit()
	seriesByTimeframe := make(map[marketdata.Timespan]types.CandleSeries)

	for _, tf := range b.config.RequiredTimeframes() {
		series, err := b.fetchCandles(ctx, symbol, tf, limit)
		if err != nil {
			return nil, err
		}

		seriesByTimeframe[tf] = series
	}

	price, err := b.fetchPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snapshot := &types.MarketSnapshot{
		Symbol:  symbol,
		TakenAt: b.now().UTC(),
		Price:   price,
		EMAs:    make(map[marketdata.Timespan]optional.Option[float64], len(b.config.Timeframes)),
	}

	for _, tf := range b.config.Timeframes {
		if snapshot.EMAs[tf], err = b.value(types.IndicatorTypeEMA, symbol, tf, seriesByTimeframe[tf]); err != nil {
			return nil, err
		}
	}

	if snapshot.ADXOneHour, err = b.value(types.IndicatorTypeADX, symbol, marketdata.TimespanOneHour, seriesByTimeframe[marketdata.TimespanOneHour]); err != nil {
		return nil, err
	}

	if snapshot.ADXFourHour, err = b.value(types.IndicatorTypeADX, symbol, marketdata.TimespanFourHours, seriesByTimeframe[marketdata.TimespanFourHours]); err != nil {
		return nil, err
	}

	ref := b.config.ReferenceTimeframe
	reference := seriesByTimeframe[ref]

	readings := []struct {
		target *optional.Option[float64]
		name   types.IndicatorType
	}{
		{&snapshot.RSI, types.IndicatorTypeRSI},
		{&snapshot.ATR, types.IndicatorTypeATR},
		{&snapshot.ATRAverage, types.IndicatorTypeATRAverage},
		{&snapshot.BreakoutHigh, types.IndicatorTypeRollingMax},
		{&snapshot.BreakoutLow, types.IndicatorTypeRollingMin},
	}
	for _, r := range readings {
		if *r.target, err = b.value(r.name, symbol, ref, reference); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

func (b *Builder) fetchCandles(ctx context.Context, symbol string, tf marketdata.Timespan, limit int) (types.CandleSeries, error) {
	callCtx, cancel := b.withTimeout(ctx)
	defer cancel()

	series, err := b.provider.FetchCandles(callCtx, symbol, tf, limit)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch %s candles for %s", tf, symbol)
	}

	if err := validateSeries(series); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "malformed %s series for %s", tf, symbol)
	}

	return series, nil
}

func (b *Builder) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	callCtx, cancel := b.withTimeout(ctx)
	defer cancel()

	price, err := b.provider.FetchCurrentPrice(callCtx, symbol)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch current price for %s", symbol)
	}

	if !validPrice(price) {
		return 0, errors.Newf(errors.ErrCodeDataUnavailable, "invalid current price %v for %s", price, symbol)
	}

	return price, nil
}

func (b *Builder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, b.config.RequestTimeout)
}

// value reads one indicator. Insufficient history becomes None; anything else is an error.
func (b *Builder) value(name types.IndicatorType, symbol string, tf marketdata.Timespan, series types.CandleSeries) (optional.Option[float64], error) {
	ind, err := b.indicators.GetIndicator(name)
	if err != nil {
		return optional.None[float64](), err
	}

	v, err := ind.Value(series)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			b.logger.Debug("Indicator undefined",
				zap.String("symbol", symbol),
				zap.String("timeframe", string(tf)),
				zap.String("indicator", string(name)),
				zap.Error(err),
			)

			return optional.None[float64](), nil
		}

		return optional.None[float64](), errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate %s on %s for %s", name, tf, symbol)
	}

	return v, nil
}

// validateSeries rejects empty series, out-of-order bars and non-finite or non-positive prices.
func validateSeries(series types.CandleSeries) error {
	if len(series) == 0 {
		return errors.New(errors.ErrCodeDataNotFound, "empty series")
	}

	for i, c := range series {
		if i > 0 && !c.Time.After(series[i-1].Time) {
			return errors.Newf(errors.ErrCodeMarketDataParseFailed, "bar %d at %s is not after %s", i, c.Time, series[i-1].Time)
		}

		for _, p := range []float64{c.Open, c.High, c.Low, c.Close} {
			if !validPrice(p) {
				return errors.Newf(errors.ErrCodeMarketDataParseFailed, "bar %d has invalid price %v", i, p)
			}
		}

		if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
			return errors.Newf(errors.ErrCodeMarketDataParseFailed, "bar %d has invalid volume %v", i, c.Volume)
		}
	}

	return nil
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}
