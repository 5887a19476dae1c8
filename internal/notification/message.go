package notification

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatPrice renders a price with four decimals.
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(4)
}

func directionEmoji(direction types.Direction) string {
	if direction == types.DirectionBuy {
		return "🟢"
	}

	return "🔴"
}

// FormatSignalHTML renders a signal as a Telegram HTML message.
func FormatSignalHTML(signal types.Signal) string {
	emoji := directionEmoji(signal.Direction)

	var b strings.Builder

	fmt.Fprintf(&b, "%s <b>TRADING SIGNAL</b> %s\n\n", emoji, emoji)
	fmt.Fprintf(&b, "📊 <b>Symbol:</b> %s\n", html.EscapeString(signal.Symbol))
	fmt.Fprintf(&b, "🎯 <b>Action:</b> %s\n", signal.Direction)
	fmt.Fprintf(&b, "💰 <b>Price:</b> $%s\n", FormatPrice(signal.Price))
	fmt.Fprintf(&b, "⚡ <b>Strategy:</b> %s\n", html.EscapeString(string(signal.Strategy)))
	b.WriteString("📈 <b>Timeframe:</b> Multiple TF Analysis\n\n")

	for _, line := range detailLines(signal) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n🕐 <b>Time:</b> %s UTC", signal.Time.UTC().Format(timeLayout))

	return b.String()
}

// FormatSignalText renders a signal on one line for logs and plain-text channels.
func FormatSignalText(signal types.Signal) string {
	text := fmt.Sprintf("%s %s at %s [%s] confidence=%s regime=%s bias=%s",
		signal.Direction, signal.Symbol, FormatPrice(signal.Price), signal.Strategy,
		signal.Confidence, signal.Regime, signal.Bias)

	if signal.RSI.IsSome() {
		text += " rsi=" + decimal.NewFromFloat(signal.RSI.Unwrap()).StringFixed(2)
	}

	if signal.BreakoutLevel.IsSome() {
		text += " level=" + FormatPrice(signal.BreakoutLevel.Unwrap())
	}

	return text
}

func detailLines(signal types.Signal) []string {
	var lines []string

	if signal.RSI.IsSome() {
		lines = append(lines, "📊 RSI: "+decimal.NewFromFloat(signal.RSI.Unwrap()).StringFixed(2))
	}

	if signal.BreakoutLevel.IsSome() {
		lines = append(lines, "📈 Breakout Level: $"+FormatPrice(signal.BreakoutLevel.Unwrap()))
	}

	lines = append(lines,
		fmt.Sprintf("🎯 Confidence: %s", signal.Confidence),
		fmt.Sprintf("📊 Market Regime: %s", signal.Regime),
		fmt.Sprintf("📈 Bias: %s", signal.Bias),
	)

	return lines
}

// StartupMessage is the HTML announcement sent once when the scanner starts.
func StartupMessage(symbols []string, interval time.Duration) string {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = html.EscapeString(s)
	}

	return fmt.Sprintf("🤖 <b>Trading Bot Started</b>\n\n"+
		"📊 Monitoring: %s\n"+
		"⚡ Strategy: MTF Hybrid (RSI + Breakout)\n"+
		"🕐 Check Interval: %s",
		strings.Join(escaped, ", "), formatInterval(interval))
}

func formatInterval(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		return pluralize(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return pluralize(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
