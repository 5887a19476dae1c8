package notification

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// MultiNotifier fans a message out to several backends. Every backend is tried;
// failures are joined into one DeliveryFailed error.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a fan-out notifier.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Name joins the backend names with "+".
func (m *MultiNotifier) Name() string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}

	return strings.Join(names, "+")
}

// Send delivers the signal to every backend.
func (m *MultiNotifier) Send(ctx context.Context, signal types.Signal) error {
	return m.each(func(n Notifier) error { return n.Send(ctx, signal) })
}

// SendText delivers the text to every backend.
func (m *MultiNotifier) SendText(ctx context.Context, text string) error {
	return m.each(func(n Notifier) error { return n.SendText(ctx, text) })
}

func (m *MultiNotifier) each(send func(Notifier) error) error {
	var errs []error

	for _, n := range m.notifiers {
		if err := send(n); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Wrapf(errors.ErrCodeDeliveryFailed, stderrors.Join(errs...), "%d of %d notifiers failed", len(errs), len(m.notifiers))
}

// Announce sends the startup message listing the monitored symbols.
func Announce(ctx context.Context, notifier Notifier, symbols []string, interval time.Duration) error {
	return notifier.SendText(ctx, StartupMessage(symbols, interval))
}
