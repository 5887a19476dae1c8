package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidParameter, "invalid parameter: %s", "test")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter: test", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no candles", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeDataUnavailable, err.Code)
	suite.Equal("no candles", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeDataUnavailable, cause, "no candles for symbol: %s", "BTCUSDT")
	suite.NotNil(err)
	suite.Equal(ErrCodeDataUnavailable, err.Code)
	suite.Equal("no candles for symbol: BTCUSDT", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no candles", cause)
	suite.Equal("[206] no candles: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no candles", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeDataUnavailable, "no candles")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromNonArgoError() {
	err := errors.New("standard error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeDataUnavailable))
}

func (suite *ErrorTestSuite) TestIsError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataUnavailable, "no candles", cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(206), ErrCodeDataUnavailable)
	suite.Equal(ErrorCode(303), ErrCodeIndicatorUndefined)
	suite.Equal(ErrorCode(600), ErrCodeEngineNotInitialized)
	suite.Equal(ErrorCode(604), ErrCodeEngineStalled)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
	suite.Equal(ErrorCode(801), ErrCodeDeliveryFailed)
}

func (suite *ErrorTestSuite) TestIsDataUnavailable() {
	inner := Newf(ErrCodeDataUnavailable, "no candles for %s", "BTCUSDT")
	outer := Wrap(ErrCodeMarketDataFetchFailed, "fetch 1h", inner)

	suite.True(IsDataUnavailable(inner))
	suite.True(IsDataUnavailable(outer))
	suite.False(IsDataUnavailable(New(ErrCodeDeliveryFailed, "sink down")))
	suite.False(IsDataUnavailable(errors.New("plain")))
	suite.False(IsDataUnavailable(nil))
}

func (suite *ErrorTestSuite) TestIsDeliveryFailed() {
	err := Wrap(ErrCodeDeliveryFailed, "telegram", errors.New("status 502"))
	suite.True(IsDeliveryFailed(err))
	suite.False(IsDeliveryFailed(New(ErrCodeDataUnavailable, "x")))
}

func (suite *ErrorTestSuite) TestNewInsufficientDataError() {
	err := NewInsufficientDataError(200, 120, "ema", "insufficient data for EMA")
	suite.NotNil(err)
	suite.Equal(200, err.Required)
	suite.Equal(120, err.Actual)
	suite.Equal("ema", err.Indicator)
	suite.Equal("insufficient data for EMA", err.Error())
}

func (suite *ErrorTestSuite) TestNewInsufficientDataErrorf() {
	err := NewInsufficientDataErrorf(28, 5, "adx", "insufficient data for %s: required %d, got %d", "ADX", 28, 5)
	suite.Equal("insufficient data for ADX: required 28, got 5", err.Message)
}

func (suite *ErrorTestSuite) TestInsufficientDataErrorHasUndefinedCode() {
	err := NewInsufficientDataError(14, 3, "rsi", "insufficient data for RSI")
	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeIndicatorUndefined, coded.Code)
}

func (suite *ErrorTestSuite) TestIsInsufficientDataError() {
	suite.True(IsInsufficientDataError(NewInsufficientDataError(14, 10, "rsi", "insufficient data")))
	suite.True(IsInsufficientDataError(Wrap(ErrCodeIndicatorCalculation, "wrapped", NewInsufficientDataError(14, 10, "rsi", "x"))))
	suite.False(IsInsufficientDataError(errors.New("standard error")))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))
}
