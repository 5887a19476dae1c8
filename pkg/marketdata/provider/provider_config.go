package provider

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// BinanceProviderConfig contains configuration for the Binance spot market data provider.
// Keys are optional: klines and ticker prices are public endpoints.
type BinanceProviderConfig struct {
	ApiKey    string `json:"apiKey" yaml:"api_key" jsonschema:"title=API Key,description=Binance API key (optional for market data)" secret:"true"`
	SecretKey string `json:"secretKey" yaml:"secret_key" jsonschema:"title=Secret Key,description=Binance API secret key (optional for market data)" secret:"true"`
	BaseURL   string `json:"baseUrl" yaml:"base_url" jsonschema:"title=Base URL,description=Override the REST endpoint (testnet or proxy)" validate:"omitempty,url"`
}

// PolygonProviderConfig contains configuration for the Polygon.io market data provider.
type PolygonProviderConfig struct {
	ApiKey string `json:"apiKey" yaml:"api_key" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" secret:"true" validate:"required"`
}

// Validate validates the BinanceProviderConfig.
func (c *BinanceProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance provider config", err)
	}

	return nil
}

// Validate validates the PolygonProviderConfig.
func (c *PolygonProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid polygon provider config", err)
	}

	return nil
}

// ParseBinanceProviderConfig parses JSON into a BinanceProviderConfig.
func ParseBinanceProviderConfig(jsonConfig string) (*BinanceProviderConfig, error) {
	var config BinanceProviderConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse binance config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParsePolygonProviderConfig parses JSON into a PolygonProviderConfig.
func ParsePolygonProviderConfig(jsonConfig string) (*PolygonProviderConfig, error) {
	var config PolygonProviderConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse polygon config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
