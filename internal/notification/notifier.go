// Package notification delivers emitted signals to operator channels
// (Telegram, generic webhooks, the process log).
package notification

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Notifier is the interface for all notification backends.
// Implementations return an error carrying ErrCodeDeliveryFailed when the channel rejects a message.
type Notifier interface {
	// Name identifies the backend in logs and metrics
	Name() string
	// Send delivers one emitted signal
	Send(ctx context.Context, signal types.Signal) error
	// SendText delivers a free-form operator message such as the startup announcement
	SendText(ctx context.Context, text string) error
}

// Config selects and configures the notification backends.
type Config struct {
	Telegram *TelegramConfig `yaml:"telegram,omitempty" json:"telegram,omitempty" jsonschema:"description=Telegram Bot API delivery"`
	Webhook  *WebhookConfig  `yaml:"webhook,omitempty" json:"webhook,omitempty" jsonschema:"description=JSON webhook delivery"`
	// Log writes every signal to the process log
	Log bool `yaml:"log" json:"log" jsonschema:"description=Also write every signal to the process log,default=true"`
}

// New builds the configured backends. With more than one backend the result is a MultiNotifier.
func New(config Config, log *logger.Logger) (Notifier, error) {
	var notifiers []Notifier

	if config.Telegram != nil {
		telegram, err := NewTelegramNotifier(*config.Telegram)
		if err != nil {
			return nil, err
		}

		notifiers = append(notifiers, telegram)
	}

	if config.Webhook != nil {
		webhook, err := NewWebhookNotifier(*config.Webhook)
		if err != nil {
			return nil, err
		}

		notifiers = append(notifiers, webhook)
	}

	if config.Log {
		notifiers = append(notifiers, NewLogNotifier(log))
	}

	switch len(notifiers) {
	case 0:
		return nil, errors.New(errors.ErrCodeEngineNoNotifier, "no notifier configured")
	case 1:
		return notifiers[0], nil
	default:
		return NewMultiNotifier(notifiers...), nil
	}
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 10 * time.Second
	}

	return timeout
}
