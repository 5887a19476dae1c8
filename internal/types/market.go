package types

import "time"

// Candle is one OHLCV bar for a symbol on a single timeframe.
type Candle struct {
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandleSeries is ordered oldest first, strictly increasing in time.
type CandleSeries []Candle

// Closes returns the close prices of the series.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}

	return out
}

// Highs returns the high prices of the series.
func (s CandleSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}

	return out
}

// Lows returns the low prices of the series.
func (s CandleSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}

	return out
}

// Last returns the most recent candle and false when the series is empty.
func (s CandleSeries) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}

	return s[len(s)-1], true
}
