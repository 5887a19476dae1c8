// Package config loads the engine configuration from YAML, applies environment
// overrides for secrets and maps the result onto the component configs.
package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/snapshot"
	"github.com/rxtech-lab/argo-signal/internal/strategy"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the file.
const (
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
	EnvPolygonAPIKey    = "POLYGON_API_KEY"
	EnvBinanceAPIKey    = "BINANCE_API_KEY"
	EnvBinanceSecretKey = "BINANCE_SECRET_KEY"
	EnvWebhookURL       = "WEBHOOK_URL"
)

const redacted = "***"

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ProviderConfig selects the market data provider.
type ProviderConfig struct {
	Type    provider.ProviderType           `yaml:"type" json:"type" validate:"required,oneof=binance polygon" jsonschema:"enum=binance,enum=polygon,default=binance"`
	Binance *provider.BinanceProviderConfig `yaml:"binance,omitempty" json:"binance,omitempty"`
	Polygon *provider.PolygonProviderConfig `yaml:"polygon,omitempty" json:"polygon,omitempty"`
}

// Config is the full engine configuration. It is immutable after Load.
type Config struct {
	// Version is the release the file was written for; empty skips the check
	Version string   `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Engine version this file targets (major.minor must match)"`
	Symbols []string `yaml:"symbols" json:"symbols" validate:"required,min=1,dive,required" jsonschema:"description=Instruments to scan,minItems=1,required"`

	Timeframes         []string `yaml:"timeframes" json:"timeframes" validate:"required,min=1" jsonschema:"description=Timeframes whose EMA feeds trend alignment"`
	ReferenceTimeframe string   `yaml:"reference_timeframe" json:"reference_timeframe" validate:"required" jsonschema:"default=1h"`

	EMAPeriod              int     `yaml:"ema_period" json:"ema_period" validate:"gt=0" jsonschema:"default=200"`
	RSIPeriod              int     `yaml:"rsi_period" json:"rsi_period" validate:"gte=2" jsonschema:"default=14"`
	RSIBuyThreshold        float64 `yaml:"rsi_buy_threshold" json:"rsi_buy_threshold" jsonschema:"default=40"`
	RSISellThreshold       float64 `yaml:"rsi_sell_threshold" json:"rsi_sell_threshold" jsonschema:"default=60"`
	RSIStrongBuyThreshold  float64 `yaml:"rsi_strong_buy_threshold" json:"rsi_strong_buy_threshold" jsonschema:"default=35"`
	RSIStrongSellThreshold float64 `yaml:"rsi_strong_sell_threshold" json:"rsi_strong_sell_threshold" jsonschema:"default=65"`
	RSIExitLong            float64 `yaml:"rsi_exit_long" json:"rsi_exit_long" jsonschema:"default=50"`
	RSIExitShort           float64 `yaml:"rsi_exit_short" json:"rsi_exit_short" jsonschema:"default=50"`
	ADXPeriod              int     `yaml:"adx_period" json:"adx_period" validate:"gte=2" jsonschema:"default=14"`
	ADXThreshold           float64 `yaml:"adx_threshold" json:"adx_threshold" jsonschema:"default=20"`
	ATRPeriod              int     `yaml:"atr_period" json:"atr_period" validate:"gte=2" jsonschema:"default=14"`
	ATRAveragePeriod       int     `yaml:"atr_average_period" json:"atr_average_period" validate:"gt=0" jsonschema:"default=50"`
	BreakoutPeriod         int     `yaml:"breakout_period" json:"breakout_period" validate:"gte=2" jsonschema:"default=20"`

	CooldownSeconds       int `yaml:"cooldown_seconds" json:"cooldown_seconds" validate:"gt=0" jsonschema:"default=3600"`
	PollIntervalSeconds   int `yaml:"poll_interval_seconds" json:"poll_interval_seconds" validate:"gt=0" jsonschema:"default=300"`
	MaxConcurrency        int `yaml:"max_concurrency" json:"max_concurrency" validate:"gte=1" jsonschema:"default=1"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds" validate:"gt=0" jsonschema:"default=15"`
	// JournalRetentionHours bounds the in-memory journal; zero keeps everything
	JournalRetentionHours int `yaml:"journal_retention_hours" json:"journal_retention_hours" validate:"gte=0" jsonschema:"default=24"`

	Provider  ProviderConfig      `yaml:"provider" json:"provider"`
	Notifiers notification.Config `yaml:"notifiers" json:"notifiers"`

	// MetricsAddr is the listen address of the status server; empty disables it
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" jsonschema:"default=:9090"`
	LogLevel    string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
}

// Default returns the configuration used for every field the file omits.
func Default() Config {
	params := strategy.DefaultParams()
	snap := snapshot.DefaultConfig()

	timeframes := make([]string, 0, len(snap.Timeframes))
	for _, tf := range snap.Timeframes {
		timeframes = append(timeframes, string(tf))
	}

	return Config{
		Symbols:                []string{"BTCUSDT", "ETHUSDT"},
		Timeframes:             timeframes,
		ReferenceTimeframe:     string(snap.ReferenceTimeframe),
		EMAPeriod:              snap.EMAPeriod,
		RSIPeriod:              snap.RSIPeriod,
		RSIBuyThreshold:        params.RSIBuyThreshold,
		RSISellThreshold:       params.RSISellThreshold,
		RSIStrongBuyThreshold:  params.RSIStrongBuyThreshold,
		RSIStrongSellThreshold: params.RSIStrongSellThreshold,
		RSIExitLong:            params.RSIExitLong,
		RSIExitShort:           params.RSIExitShort,
		ADXPeriod:              snap.ADXPeriod,
		ADXThreshold:           params.ADXThreshold,
		ATRPeriod:              snap.ATRPeriod,
		ATRAveragePeriod:       snap.ATRAveragePeriod,
		BreakoutPeriod:         snap.BreakoutPeriod,
		CooldownSeconds:        3600,
		PollIntervalSeconds:    300,
		MaxConcurrency:         1,
		RequestTimeoutSeconds:  15,
		JournalRetentionHours:  24,
		Provider:               ProviderConfig{Type: provider.ProviderBinance},
		Notifiers:              notification.Config{Log: true},
		MetricsAddr:            ":9090",
		LogLevel:               "info",
	}
}

// Load reads the file at path, applies process environment overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data, os.LookupEnv)
}

// Parse decodes YAML on top of Default, applies overrides from lookup and validates.
// A nil lookup applies no overrides.
func Parse(data []byte, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if lookup != nil {
		cfg.applyEnv(lookup)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) {
	if token, ok := lookup(EnvTelegramBotToken); ok && token != "" {
		c.telegram().BotToken = token
	}

	if chatID, ok := lookup(EnvTelegramChatID); ok && chatID != "" {
		c.telegram().ChatID = chatID
	}

	if url, ok := lookup(EnvWebhookURL); ok && url != "" {
		if c.Notifiers.Webhook == nil {
			c.Notifiers.Webhook = &notification.WebhookConfig{}
		}

		c.Notifiers.Webhook.URL = url
	}

	if key, ok := lookup(EnvPolygonAPIKey); ok && key != "" {
		if c.Provider.Polygon == nil {
			c.Provider.Polygon = &provider.PolygonProviderConfig{}
		}

		c.Provider.Polygon.ApiKey = key
	}

	if key, ok := lookup(EnvBinanceAPIKey); ok && key != "" {
		c.binance().ApiKey = key
	}

	if secret, ok := lookup(EnvBinanceSecretKey); ok && secret != "" {
		c.binance().SecretKey = secret
	}
}

func (c *Config) telegram() *notification.TelegramConfig {
	if c.Notifiers.Telegram == nil {
		c.Notifiers.Telegram = &notification.TelegramConfig{}
	}

	return c.Notifiers.Telegram
}

func (c *Config) binance() *provider.BinanceProviderConfig {
	if c.Provider.Binance == nil {
		c.Provider.Binance = &provider.BinanceProviderConfig{}
	}

	return c.Provider.Binance
}

// Validate checks field constraints, version compatibility and the derived component configs.
func (c *Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.Provider.Type == provider.ProviderPolygon && c.Provider.Polygon == nil {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "polygon provider requires an api key (set provider.polygon.api_key or %s)", EnvPolygonAPIKey)
	}

	snap, err := c.SnapshotConfig()
	if err != nil {
		return err
	}

	info, err := provider.GetProviderInfo(string(c.Provider.Type))
	if err != nil {
		return err
	}

	if limit := snap.FetchLimit(); limit > info.MaxCandles {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"indicator periods need %d bars per request but %s serves at most %d; lower ema_period",
			limit, info.DisplayName, info.MaxCandles)
	}

	return c.StrategyParams().Validate()
}

// SnapshotConfig maps the file onto the snapshot builder configuration.
func (c *Config) SnapshotConfig() (snapshot.Config, error) {
	timeframes := make([]marketdata.Timespan, 0, len(c.Timeframes))

	for _, raw := range c.Timeframes {
		tf, err := marketdata.ParseTimespan(strings.TrimSpace(raw))
		if err != nil {
			return snapshot.Config{}, err
		}

		if !slices.Contains(timeframes, tf) {
			timeframes = append(timeframes, tf)
		}
	}

	reference, err := marketdata.ParseTimespan(strings.TrimSpace(c.ReferenceTimeframe))
	if err != nil {
		return snapshot.Config{}, err
	}

	cfg := snapshot.Config{
		Timeframes:         timeframes,
		ReferenceTimeframe: reference,
		EMAPeriod:          c.EMAPeriod,
		RSIPeriod:          c.RSIPeriod,
		ADXPeriod:          c.ADXPeriod,
		ATRPeriod:          c.ATRPeriod,
		ATRAveragePeriod:   c.ATRAveragePeriod,
		BreakoutPeriod:     c.BreakoutPeriod,
		RequestTimeout:     c.RequestTimeout(),
	}

	return cfg, cfg.Validate()
}

// StrategyParams maps the thresholds onto the rule evaluator parameters.
func (c *Config) StrategyParams() strategy.Params {
	return strategy.Params{
		ADXThreshold:           c.ADXThreshold,
		RSIBuyThreshold:        c.RSIBuyThreshold,
		RSISellThreshold:       c.RSISellThreshold,
		RSIStrongBuyThreshold:  c.RSIStrongBuyThreshold,
		RSIStrongSellThreshold: c.RSIStrongSellThreshold,
		RSIExitLong:            c.RSIExitLong,
		RSIExitShort:           c.RSIExitShort,
	}
}

// CooldownWindow is the deduplication window.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// PollInterval is the time between polling cycles.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RequestTimeout bounds every provider and notifier call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// JournalRetention is how long journal records are kept; zero keeps them all.
func (c *Config) JournalRetention() time.Duration {
	return time.Duration(c.JournalRetentionHours) * time.Hour
}

// NotificationConfig returns the notifier config with the request timeout as the default per-call timeout.
func (c *Config) NotificationConfig() notification.Config {
	cfg := c.Notifiers

	if cfg.Telegram != nil && cfg.Telegram.Timeout == 0 {
		telegram := *cfg.Telegram
		telegram.Timeout = c.RequestTimeout()
		cfg.Telegram = &telegram
	}

	if cfg.Webhook != nil && cfg.Webhook.Timeout == 0 {
		webhook := *cfg.Webhook
		webhook.Timeout = c.RequestTimeout()
		cfg.Webhook = &webhook
	}

	return cfg
}

// DataProvider builds the configured market data provider.
func (c *Config) DataProvider() (provider.DataProvider, error) {
	switch c.Provider.Type {
	case provider.ProviderPolygon:
		return provider.NewDataProvider(c.Provider.Type, c.Provider.Polygon)
	case provider.ProviderBinance:
		if c.Provider.Binance == nil {
			return provider.NewDataProvider(c.Provider.Type, nil)
		}

		return provider.NewDataProvider(c.Provider.Type, c.Provider.Binance)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", c.Provider.Type)
	}
}

// Redacted renders the configuration as YAML with every secret field masked.
func (c *Config) Redacted() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to reload config", err)
	}

	for _, path := range utils.SecretFields(c) {
		mask(tree, strings.Split(path, "."))
	}

	out, err := yaml.Marshal(tree)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal redacted config", err)
	}

	return string(out), nil
}

func mask(tree map[string]any, path []string) {
	value, ok := tree[path[0]]
	if !ok || value == nil {
		return
	}

	if len(path) == 1 {
		if nested, ok := value.(map[string]any); ok {
			for key := range nested {
				nested[key] = redacted
			}

			return
		}

		if s, ok := value.(string); ok && s == "" {
			return
		}

		tree[path[0]] = redacted

		return
	}

	if nested, ok := value.(map[string]any); ok {
		mask(nested, path[1:])
	}
}

// Schema returns the JSON schema of the configuration file, keyed like the YAML.
func Schema() (string, error) {
	return utils.ToYAMLSchema(Config{})
}
