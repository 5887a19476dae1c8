package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1
	ErrCodePanic   ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidTimeframe     ErrorCode = 113

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeDataUnavailable       ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302
	ErrCodeIndicatorUndefined     ErrorCode = 303

	// Strategy errors (400-499)
	ErrCodeVersionMismatch ErrorCode = 404

	// Engine errors (600-699)
	ErrCodeEngineNotInitialized ErrorCode = 600
	ErrCodeEngineNoProvider     ErrorCode = 601
	ErrCodeEngineNoNotifier     ErrorCode = 602
	ErrCodeEngineNoSymbols      ErrorCode = 603
	ErrCodeEngineStalled        ErrorCode = 604

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Notification errors (800-899)
	ErrCodeCallbackFailed  ErrorCode = 800
	ErrCodeDeliveryFailed  ErrorCode = 801
	ErrCodeInvalidNotifier ErrorCode = 802
)
