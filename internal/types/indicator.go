package types

type IndicatorType string

const (
	IndicatorTypeRSI        IndicatorType = "rsi"
	IndicatorTypeADX        IndicatorType = "adx"
	IndicatorTypeEMA        IndicatorType = "ema"
	IndicatorTypeATR        IndicatorType = "atr"
	IndicatorTypeATRAverage IndicatorType = "atr_average"
	IndicatorTypeRollingMax IndicatorType = "rolling_max"
	IndicatorTypeRollingMin IndicatorType = "rolling_min"
)
