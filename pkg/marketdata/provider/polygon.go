package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

const (
	polygonMaxAggregates = 50000
	polygonWindowPadding = 3
)

// PolygonMaxCandles is the largest limit whose padded window fits in one aggregates page.
const PolygonMaxCandles = polygonMaxAggregates / polygonWindowPadding

// PolygonAPIClient abstracts the parts of the Polygon REST client the provider uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams) ([]models.Agg, error)
	GetLastTrade(ctx context.Context, ticker string) (float64, error)
}

// realPolygonAPIClient wraps the actual polygon.Client and drains its iterators.
type realPolygonAPIClient struct {
	client *polygon.Client
}

func (r *realPolygonAPIClient) ListAggs(ctx context.Context, params *models.ListAggsParams) ([]models.Agg, error) {
	iter := r.client.ListAggs(ctx, params)

	aggs := make([]models.Agg, 0)
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}

	if iter.Err() != nil {
		return nil, iter.Err()
	}

	return aggs, nil
}

func (r *realPolygonAPIClient) GetLastTrade(ctx context.Context, ticker string) (float64, error) {
	res, err := r.client.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: ticker})
	if err != nil {
		return 0, err
	}

	return res.Results.Price, nil
}

// PolygonClient serves aggregates and last trade prices from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

// NewPolygonClient creates a Polygon provider from config.
func NewPolygonClient(config *PolygonProviderConfig) (DataProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PolygonClient{
		apiClient: &realPolygonAPIClient{client: polygon.New(config.ApiKey)},
		now:       time.Now,
	}, nil
}

// NewPolygonClientWithAPI creates a Polygon provider around a custom API client and clock.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient, now func() time.Time) *PolygonClient {
	return &PolygonClient{apiClient: apiClient, now: now}
}

// FetchCandles requests enough calendar time to cover limit bars and keeps the newest limit.
// Equity sessions have gaps, so the window is padded threefold.
func (c *PolygonClient) FetchCandles(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) (types.CandleSeries, error) {
	if !timeframe.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe for Polygon: %s", timeframe)
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	if limit > PolygonMaxCandles {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit %d exceeds the Polygon maximum of %d bars", limit, PolygonMaxCandles)
	}

	end := c.now()
	start := end.Add(-polygonWindowPadding * time.Duration(limit) * timeframe.Duration())

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: timeframe.Multiplier(),
		Timespan:   timeframe.Timespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithOrder(models.Asc).WithLimit(polygonMaxAggregates)

	aggs, err := c.apiClient.ListAggs(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s aggregates for %s from Polygon", timeframe, symbol)
	}

	if len(aggs) > limit {
		aggs = aggs[len(aggs)-limit:]
	}

	series := make(types.CandleSeries, 0, len(aggs))
	for _, agg := range aggs {
		series = append(series, types.Candle{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	return series, nil
}

// FetchCurrentPrice returns the price of the last trade.
func (c *PolygonClient) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	price, err := c.apiClient.GetLastTrade(ctx, symbol)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch last trade for %s from Polygon", symbol)
	}

	if price <= 0 {
		return 0, errors.Newf(errors.ErrCodeDataNotFound, "no last trade price for %s", symbol)
	}

	return price, nil
}
