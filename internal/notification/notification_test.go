package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type NotificationTestSuite struct {
	suite.Suite
}

func TestNotificationSuite(t *testing.T) {
	suite.Run(t, new(NotificationTestSuite))
}

func rsiSignal() types.Signal {
	return types.Signal{
		ID:         "sig-1",
		Time:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Symbol:     "BTC/USDT",
		Direction:  types.DirectionBuy,
		Strategy:   types.StrategyRSIMeanReversion,
		Price:      64250.5,
		Regime:     types.RegimeRanging,
		Bias:       types.BiasBullish,
		Confidence: types.ConfidenceHigh,
		RSI:        optional.Some(31.234),
	}
}

func breakoutSignal() types.Signal {
	return types.Signal{
		ID:            "sig-2",
		Time:          time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC),
		Symbol:        "ETHUSDT",
		Direction:     types.DirectionSell,
		Strategy:      types.StrategyBreakout,
		Price:         3100,
		Regime:        types.RegimeTrending,
		Bias:          types.BiasBearish,
		Confidence:    types.ConfidenceHigh,
		BreakoutLevel: optional.Some(3150.25),
	}
}

type recordedRequest struct {
	Path string
	Body map[string]any
	Auth string
}

// recorder is an httptest handler that captures JSON bodies.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	raw, _ := io.ReadAll(req.Body)

	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	r.mu.Lock()
	r.requests = append(r.requests, recordedRequest{Path: req.URL.Path, Body: body, Auth: req.Header.Get("Authorization")})
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	_, _ = w.Write([]byte(r.response))
}

func (suite *NotificationTestSuite) TestFormatSignalHTMLForRSI() {
	msg := FormatSignalHTML(rsiSignal())

	suite.True(strings.HasPrefix(msg, "🟢 <b>TRADING SIGNAL</b> 🟢"))
	suite.Contains(msg, "<b>Symbol:</b> BTC/USDT")
	suite.Contains(msg, "<b>Action:</b> BUY")
	suite.Contains(msg, "<b>Price:</b> $64250.5000")
	suite.Contains(msg, "<b>Strategy:</b> RSI Mean Reversion")
	suite.Contains(msg, "Multiple TF Analysis")
	suite.Contains(msg, "📊 RSI: 31.23")
	suite.Contains(msg, "🎯 Confidence: HIGH")
	suite.Contains(msg, "📊 Market Regime: RANGING")
	suite.Contains(msg, "📈 Bias: BULLISH")
	suite.Contains(msg, "<b>Time:</b> 2024-06-01 12:00:00 UTC")
	suite.NotContains(msg, "Breakout Level")
}

func (suite *NotificationTestSuite) TestFormatSignalHTMLForBreakout() {
	msg := FormatSignalHTML(breakoutSignal())

	suite.True(strings.HasPrefix(msg, "🔴"))
	suite.Contains(msg, "📈 Breakout Level: $3150.2500")
	suite.Contains(msg, "<b>Action:</b> SELL")
	suite.NotContains(msg, "RSI:")
}

func (suite *NotificationTestSuite) TestFormatSignalText() {
	suite.Equal(
		"BUY BTC/USDT at 64250.5000 [RSI Mean Reversion] confidence=HIGH regime=RANGING bias=BULLISH rsi=31.23",
		FormatSignalText(rsiSignal()),
	)
	suite.Contains(FormatSignalText(breakoutSignal()), "level=3150.2500")
}

func (suite *NotificationTestSuite) TestStartupMessage() {
	msg := StartupMessage([]string{"BTC/USDT", "ETH/USDT"}, 5*time.Minute)

	suite.Contains(msg, "<b>Trading Bot Started</b>")
	suite.Contains(msg, "Monitoring: BTC/USDT, ETH/USDT")
	suite.Contains(msg, "MTF Hybrid (RSI + Breakout)")
	suite.Contains(msg, "Check Interval: 5 minutes")

	suite.Contains(StartupMessage(nil, time.Hour), "Check Interval: 1 hour")
	suite.Contains(StartupMessage(nil, 90*time.Second), "Check Interval: 1m30s")
}

func (suite *NotificationTestSuite) TestTelegramSend() {
	rec := &recorder{status: http.StatusOK, response: `{"ok":true}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewTelegramNotifier(TelegramConfig{BotToken: "123:abc", ChatID: "42", BaseURL: server.URL})
	suite.Require().NoError(err)
	suite.Equal("telegram", notifier.Name())

	suite.Require().NoError(notifier.Send(context.Background(), rsiSignal()))
	suite.Require().Len(rec.requests, 1)

	req := rec.requests[0]
	suite.Equal("/bot123:abc/sendMessage", req.Path)
	suite.Equal("42", req.Body["chat_id"])
	suite.Equal("HTML", req.Body["parse_mode"])
	suite.Equal(FormatSignalHTML(rsiSignal()), req.Body["text"])
}

func (suite *NotificationTestSuite) TestTelegramRejected() {
	rec := &recorder{status: http.StatusBadRequest, response: `{"ok":false,"description":"Bad Request: chat not found"}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewTelegramNotifier(TelegramConfig{BotToken: "123:abc", ChatID: "42", BaseURL: server.URL})
	suite.Require().NoError(err)

	err = notifier.Send(context.Background(), rsiSignal())
	suite.True(errors.IsDeliveryFailed(err))
	suite.Contains(err.Error(), "chat not found")
	suite.Contains(err.Error(), "400")
}

func (suite *NotificationTestSuite) TestTelegramOKFalse() {
	rec := &recorder{status: http.StatusOK, response: `{"ok":false,"description":"flood"}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewTelegramNotifier(TelegramConfig{BotToken: "t", ChatID: "1", BaseURL: server.URL})
	suite.Require().NoError(err)

	suite.True(errors.IsDeliveryFailed(notifier.SendText(context.Background(), "hello")))
}

func (suite *NotificationTestSuite) TestTelegramTransportErrorHidesToken() {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	notifier, err := NewTelegramNotifier(TelegramConfig{BotToken: "secret-token", ChatID: "1", BaseURL: url, Timeout: time.Second})
	suite.Require().NoError(err)

	err = notifier.SendText(context.Background(), "hello")
	suite.True(errors.IsDeliveryFailed(err))
	suite.NotContains(err.Error(), "secret-token")
}

func (suite *NotificationTestSuite) TestTelegramConfigValidation() {
	_, err := NewTelegramNotifier(TelegramConfig{ChatID: "1"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidNotifier))

	_, err = NewTelegramNotifier(TelegramConfig{BotToken: "t"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidNotifier))
}

func (suite *NotificationTestSuite) TestWebhookSend() {
	rec := &recorder{status: http.StatusAccepted, response: `{}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{
		URL:     server.URL + "/hooks/signals",
		Headers: map[string]string{"Authorization": "Bearer xyz"},
	})
	suite.Require().NoError(err)
	suite.Equal("webhook", notifier.Name())

	suite.Require().NoError(notifier.Send(context.Background(), breakoutSignal()))
	suite.Require().Len(rec.requests, 1)

	req := rec.requests[0]
	suite.Equal("/hooks/signals", req.Path)
	suite.Equal("Bearer xyz", req.Auth)
	suite.Equal("sig-2", req.Body["id"])
	suite.Equal("SELL", req.Body["direction"])
	suite.Equal("Breakout", req.Body["strategy"])
	suite.Equal(3150.25, req.Body["breakout_level"])
	suite.Equal("2024-06-01T16:00:00Z", req.Body["time"])
	suite.NotContains(req.Body, "rsi")
}

func (suite *NotificationTestSuite) TestWebhookSendText() {
	rec := &recorder{status: http.StatusOK, response: `{}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	suite.Require().NoError(err)

	suite.Require().NoError(Announce(context.Background(), notifier, []string{"BTCUSDT"}, 5*time.Minute))
	suite.Require().Len(rec.requests, 1)
	suite.Contains(rec.requests[0].Body["text"], "Trading Bot Started")
}

func (suite *NotificationTestSuite) TestWebhookFailure() {
	rec := &recorder{status: http.StatusInternalServerError, response: `{}`}
	server := httptest.NewServer(rec)
	defer server.Close()

	notifier, err := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	suite.Require().NoError(err)

	err = notifier.Send(context.Background(), rsiSignal())
	suite.True(errors.IsDeliveryFailed(err))
	suite.Contains(err.Error(), "500")
}

func (suite *NotificationTestSuite) TestWebhookConfigValidation() {
	_, err := NewWebhookNotifier(WebhookConfig{URL: "not a url"})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidNotifier))
}

func (suite *NotificationTestSuite) TestNewWebhookPayload() {
	payload := NewWebhookPayload(rsiSignal())

	suite.Require().NotNil(payload.RSI)
	suite.Equal(31.234, *payload.RSI)
	suite.Nil(payload.BreakoutLevel)
	suite.Equal("RANGING", payload.Regime)
	suite.Equal(FormatSignalText(rsiSignal()), payload.Text)
}

func (suite *NotificationTestSuite) TestLogNotifier() {
	notifier := NewLogNotifier(nil)
	suite.Equal("log", notifier.Name())
	suite.NoError(notifier.Send(context.Background(), rsiSignal()))
	suite.NoError(notifier.SendText(context.Background(), "hello"))
}

func (suite *NotificationTestSuite) TestMultiNotifier() {
	ok := &recorder{status: http.StatusOK, response: `{}`}
	okServer := httptest.NewServer(ok)
	defer okServer.Close()

	failing := &recorder{status: http.StatusBadGateway, response: `{}`}
	failingServer := httptest.NewServer(failing)
	defer failingServer.Close()

	first, err := NewWebhookNotifier(WebhookConfig{URL: failingServer.URL})
	suite.Require().NoError(err)

	second, err := NewWebhookNotifier(WebhookConfig{URL: okServer.URL})
	suite.Require().NoError(err)

	multi := NewMultiNotifier(first, second, NewLogNotifier(nil))
	suite.Equal("webhook+webhook+log", multi.Name())

	err = multi.Send(context.Background(), rsiSignal())
	suite.True(errors.IsDeliveryFailed(err))
	suite.Contains(err.Error(), "1 of 3 notifiers failed")

	// A failing backend does not stop the others.
	suite.Len(ok.requests, 1)
	suite.Len(failing.requests, 1)

	suite.NoError(NewMultiNotifier(second).SendText(context.Background(), "hi"))
}

func (suite *NotificationTestSuite) TestNew() {
	_, err := New(Config{}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeEngineNoNotifier))

	n, err := New(Config{Log: true}, nil)
	suite.Require().NoError(err)
	suite.IsType(&LogNotifier{}, n)

	n, err = New(Config{Log: true, Webhook: &WebhookConfig{URL: "https://example.com/hook"}}, nil)
	suite.Require().NoError(err)
	suite.Equal("webhook+log", n.Name())

	_, err = New(Config{Telegram: &TelegramConfig{}}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidNotifier))
}
