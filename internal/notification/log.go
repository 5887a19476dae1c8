package notification

import (
	"context"

	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"go.uber.org/zap"
)

// LogNotifier writes signals to the structured log. It never fails.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &LogNotifier{logger: log.Named("notify")}
}

// Name returns "log".
func (n *LogNotifier) Name() string {
	return "log"
}

// Send logs the signal with one field per attribute.
func (n *LogNotifier) Send(_ context.Context, signal types.Signal) error {
	fields := []zap.Field{
		zap.String("id", signal.ID),
		zap.String("symbol", signal.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.String("strategy", string(signal.Strategy)),
		zap.String("price", FormatPrice(signal.Price)),
		zap.String("confidence", string(signal.Confidence)),
		zap.String("regime", string(signal.Regime)),
		zap.String("bias", string(signal.Bias)),
	}

	if signal.RSI.IsSome() {
		fields = append(fields, zap.Float64("rsi", signal.RSI.Unwrap()))
	}

	if signal.BreakoutLevel.IsSome() {
		fields = append(fields, zap.Float64("breakout_level", signal.BreakoutLevel.Unwrap()))
	}

	n.logger.Info("Trading signal", fields...)

	return nil
}

// SendText logs the message.
func (n *LogNotifier) SendText(_ context.Context, text string) error {
	n.logger.Info(text)

	return nil
}
