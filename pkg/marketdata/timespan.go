package marketdata

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Timespan is a candle resolution in exchange notation (15m, 1h, 4h, ...).
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

func (t Timespan) Multiplier() int {
	switch t {
	case TimespanOneSecond:
		return 1
	case TimespanOneMinute:
		return 1
	case TimespanThreeMinutes:
		return 3
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanOneHour:
		return 1
	case TimespanTwoHours:
		return 2
	case TimespanFourHours:
		return 4
	case TimespanSixHours:
		return 6
	case TimespanEightHours:
		return 8
	case TimespanTwelveHours:
		return 12
	case TimespanOneDay:
		return 1
	case TimespanThreeDays:
		return 3
	case TimespanOneWeek:
		return 1
	case TimespanOneMonth:
		return 1
	default:
		return 1
	}
}

func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneSecond:
		return models.Second
	case TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanTwoHours, TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours:
		return models.Hour
	case TimespanOneDay, TimespanThreeDays:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}

// DefaultTimeframes are the resolutions whose EMAs feed trend alignment.
var DefaultTimeframes = []Timespan{
	TimespanFifteenMinutes,
	TimespanThirtyMinutes,
	TimespanOneHour,
	TimespanFourHours,
}

// Duration returns the wall-clock length of one bar. Months are approximated as 30 days.
func (t Timespan) Duration() time.Duration {
	switch t.Timespan() {
	case models.Second:
		return time.Duration(t.Multiplier()) * time.Second
	case models.Minute:
		return time.Duration(t.Multiplier()) * time.Minute
	case models.Hour:
		return time.Duration(t.Multiplier()) * time.Hour
	case models.Week:
		return 7 * 24 * time.Hour
	case models.Month:
		return 30 * 24 * time.Hour
	default:
		return time.Duration(t.Multiplier()) * 24 * time.Hour
	}
}

// IsValid reports whether t is one of the supported resolutions.
func (t Timespan) IsValid() bool {
	switch t {
	case TimespanOneSecond, TimespanOneMinute, TimespanThreeMinutes, TimespanFiveMinutes,
		TimespanFifteenMinutes, TimespanThirtyMinutes, TimespanOneHour, TimespanTwoHours,
		TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours,
		TimespanOneDay, TimespanThreeDays, TimespanOneWeek, TimespanOneMonth:
		return true
	default:
		return false
	}
}

// ParseTimespan converts a string such as "4h" into a Timespan.
func ParseTimespan(s string) (Timespan, error) {
	t := Timespan(s)
	if !t.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe %q", s)
	}

	return t, nil
}
