package provider

import (
	"context"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// DataProvider is the read-only market data interface consumed by the snapshot builder.
// Implementations own connection setup, authentication and rate limiting; callers
// bound every call with a context deadline.
type DataProvider interface {
	// FetchCandles returns up to limit of the most recent candles, oldest first.
	// The last candle may still be forming.
	FetchCandles(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) (types.CandleSeries, error)
	// FetchCurrentPrice returns the latest traded price.
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// NewDataProvider creates a market data provider based on the provider type.
// config must be a *BinanceProviderConfig or *PolygonProviderConfig matching the type;
// a nil config is accepted for Binance (public endpoints need no key).
func NewDataProvider(providerType ProviderType, config any) (DataProvider, error) {
	switch providerType {
	case ProviderBinance:
		if config == nil {
			return NewBinanceClient(&BinanceProviderConfig{})
		}

		cfg, ok := config.(*BinanceProviderConfig)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "binance provider requires *BinanceProviderConfig")
		}

		return NewBinanceClient(cfg)
	case ProviderPolygon:
		cfg, ok := config.(*PolygonProviderConfig)
		if !ok || cfg == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires *PolygonProviderConfig")
		}

		return NewPolygonClient(cfg)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
