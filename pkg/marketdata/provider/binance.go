package provider

import (
	"context"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
)

// BinanceMaxKlines is the largest page the klines endpoint returns.
const BinanceMaxKlines = 1000

// BinanceKlinesService abstracts binance.KlinesService for testing.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinancePricesService abstracts binance.ListPricesService for testing.
type BinancePricesService interface {
	Symbol(symbol string) BinancePricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// BinanceAPIClient abstracts the parts of binance.Client the provider uses.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
	NewListPricesService() BinancePricesService
}

// realBinanceAPIClient wraps the actual binance.Client.
type realBinanceAPIClient struct {
	client *binance.Client
}

func (r *realBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &realBinanceKlinesService{service: r.client.NewKlinesService()}
}

func (r *realBinanceAPIClient) NewListPricesService() BinancePricesService {
	return &realBinancePricesService{service: r.client.NewListPricesService()}
}

type realBinanceKlinesService struct {
	service *binance.KlinesService
}

func (s *realBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *realBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *realBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service.Limit(limit)

	return s
}

func (s *realBinanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type realBinancePricesService struct {
	service *binance.ListPricesService
}

func (s *realBinancePricesService) Symbol(symbol string) BinancePricesService {
	s.service.Symbol(symbol)

	return s
}

func (s *realBinancePricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return s.service.Do(ctx)
}

// BinanceClient serves candles and ticker prices from Binance spot.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a Binance provider from config.
func NewBinanceClient(config *BinanceProviderConfig) (DataProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return &BinanceClient{
		apiClient: &realBinanceAPIClient{client: client},
	}, nil
}

// NewBinanceClientWithAPI creates a Binance provider around a custom API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

// FetchCandles returns the most recent klines, oldest first. The last kline is still forming.
func (c *BinanceClient) FetchCandles(ctx context.Context, symbol string, timeframe marketdata.Timespan, limit int) (types.CandleSeries, error) {
	if !timeframe.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe for Binance: %s", timeframe)
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	if limit > BinanceMaxKlines {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit %d exceeds the Binance maximum of %d klines", limit, BinanceMaxKlines)
	}

	klines, err := c.apiClient.NewKlinesService().
		Symbol(NormalizeBinanceSymbol(symbol)).
		Interval(string(timeframe)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s klines for %s from Binance", timeframe, symbol)
	}

	return convertKlines(symbol, klines)
}

// FetchCurrentPrice returns the latest ticker price.
func (c *BinanceClient) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := c.apiClient.NewListPricesService().
		Symbol(NormalizeBinanceSymbol(symbol)).
		Do(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch ticker price for %s from Binance", symbol)
	}

	if len(prices) == 0 || prices[0] == nil {
		return 0, errors.Newf(errors.ErrCodeDataNotFound, "no ticker price returned for %s", symbol)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid ticker price %q for %s", prices[0].Price, symbol)
	}

	return price, nil
}

// convertKlines converts Binance kline data to candles. Any unparsable number fails the whole series.
func convertKlines(symbol string, klines []*binance.Kline) (types.CandleSeries, error) {
	series := make(types.CandleSeries, 0, len(klines))

	for _, k := range klines {
		if k == nil {
			return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "nil kline in response for %s", symbol)
		}

		values := [5]float64{}
		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, symbol)
			}

			values[i] = v
		}

		series = append(series, types.Candle{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime).UTC(), // Using OpenTime as the timestamp for the bar
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return series, nil
}

// NormalizeBinanceSymbol turns pair notation like "btc/usdt" or "BTC-USDT" into "BTCUSDT".
func NormalizeBinanceSymbol(symbol string) string {
	replacer := strings.NewReplacer("/", "", "-", "", "_", "", " ", "")

	return strings.ToUpper(replacer.Replace(symbol))
}
