package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// WebhookConfig configures delivery to a generic HTTP endpoint.
type WebhookConfig struct {
	URL     string            `yaml:"url" json:"url" validate:"required,url" jsonschema:"description=Endpoint that receives a JSON POST per signal (env WEBHOOK_URL),required"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" secret:"true"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// WebhookPayload is the JSON body posted for every signal.
type WebhookPayload struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Direction     string   `json:"direction"`
	Strategy      string   `json:"strategy"`
	Price         float64  `json:"price"`
	Regime        string   `json:"regime"`
	Bias          string   `json:"bias"`
	Confidence    string   `json:"confidence"`
	RSI           *float64 `json:"rsi,omitempty"`
	BreakoutLevel *float64 `json:"breakout_level,omitempty"`
	Time          string   `json:"time"`
	Text          string   `json:"text"`
}

// WebhookNotifier posts signals as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(config WebhookConfig) (*WebhookNotifier, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNotifier, "invalid webhook config", err)
	}

	client := resty.New().
		SetTimeout(timeoutOrDefault(config.Timeout)).
		SetHeader("Content-Type", "application/json").
		SetHeaders(config.Headers)

	return &WebhookNotifier{client: client, url: config.URL}, nil
}

// Name returns "webhook".
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// NewWebhookPayload converts a signal into its JSON payload.
func NewWebhookPayload(signal types.Signal) WebhookPayload {
	payload := WebhookPayload{
		ID:         signal.ID,
		Symbol:     signal.Symbol,
		Direction:  string(signal.Direction),
		Strategy:   string(signal.Strategy),
		Price:      signal.Price,
		Regime:     string(signal.Regime),
		Bias:       string(signal.Bias),
		Confidence: string(signal.Confidence),
		Time:       signal.Time.UTC().Format(time.RFC3339),
		Text:       FormatSignalText(signal),
	}

	if signal.RSI.IsSome() {
		rsi := signal.RSI.Unwrap()
		payload.RSI = &rsi
	}

	if signal.BreakoutLevel.IsSome() {
		level := signal.BreakoutLevel.Unwrap()
		payload.BreakoutLevel = &level
	}

	return payload
}

// Send posts the signal payload.
func (w *WebhookNotifier) Send(ctx context.Context, signal types.Signal) error {
	return w.post(ctx, NewWebhookPayload(signal))
}

// SendText posts {"text": text}.
func (w *WebhookNotifier) SendText(ctx context.Context, text string) error {
	return w.post(ctx, map[string]string{"text": text})
}

func (w *WebhookNotifier) post(ctx context.Context, body any) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(w.url)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDeliveryFailed, "webhook: send", err)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeDeliveryFailed, "webhook: unexpected status %d", resp.StatusCode())
	}

	return nil
}
