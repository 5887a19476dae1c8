package notification

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramConfig configures delivery through the Telegram Bot API.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" json:"botToken" validate:"required" secret:"true" jsonschema:"description=Bot API token from @BotFather (env TELEGRAM_BOT_TOKEN),required"`
	ChatID   string `yaml:"chat_id" json:"chatId" validate:"required" jsonschema:"description=Target chat or channel ID (env TELEGRAM_CHAT_ID),required"`
	// BaseURL overrides the Bot API endpoint
	BaseURL string        `yaml:"base_url,omitempty" json:"baseUrl,omitempty" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// TelegramNotifier sends signals via the Telegram Bot API using HTML parse mode.
type TelegramNotifier struct {
	client   *resty.Client
	botToken string
	chatID   string
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a Telegram notifier.
func NewTelegramNotifier(config TelegramConfig) (*TelegramNotifier, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNotifier, "invalid telegram config", err)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = telegramAPIURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeoutOrDefault(config.Timeout)).
		SetHeader("Content-Type", "application/json")

	return &TelegramNotifier{
		client:   client,
		botToken: config.BotToken,
		chatID:   config.ChatID,
	}, nil
}

// Name returns "telegram".
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// Send delivers a formatted signal.
func (t *TelegramNotifier) Send(ctx context.Context, signal types.Signal) error {
	return t.SendText(ctx, FormatSignalHTML(signal))
}

// SendText posts an HTML message to the configured chat.
func (t *TelegramNotifier) SendText(ctx context.Context, text string) error {
	var result telegramResponse

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(telegramMessage{
			ChatID:                t.chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + t.botToken + "/sendMessage")
	if err != nil {
		// The request URL embeds the token, keep it out of logs.
		return errors.New(errors.ErrCodeDeliveryFailed, "telegram: send: "+strings.ReplaceAll(err.Error(), t.botToken, "***"))
	}

	if resp.IsError() || !result.OK {
		return errors.Newf(errors.ErrCodeDeliveryFailed, "telegram: status %d: %s", resp.StatusCode(), result.Description)
	}

	return nil
}
