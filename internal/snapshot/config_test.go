package snapshot

import (
	"testing"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfigIsValid() {
	config := DefaultConfig()
	suite.NoError(config.Validate())
	suite.Equal(250, config.FetchLimit())
}

func (suite *ConfigTestSuite) TestFetchLimitGrowsWithEMAPeriod() {
	config := DefaultConfig()
	config.EMAPeriod = 400
	suite.Equal(450, config.FetchLimit())

	config.EMAPeriod = 20
	suite.Equal(250, config.FetchLimit())

	config.ATRAveragePeriod = 300
	suite.Equal(315, config.FetchLimit())
}

func (suite *ConfigTestSuite) TestRequiredTimeframes() {
	config := DefaultConfig()
	suite.Equal(marketdata.DefaultTimeframes, config.RequiredTimeframes())

	config.Timeframes = []marketdata.Timespan{marketdata.TimespanFifteenMinutes, marketdata.TimespanOneDay}
	config.ReferenceTimeframe = marketdata.TimespanThirtyMinutes
	suite.Equal([]marketdata.Timespan{
		marketdata.TimespanFifteenMinutes,
		marketdata.TimespanOneDay,
		marketdata.TimespanOneHour,
		marketdata.TimespanFourHours,
		marketdata.TimespanThirtyMinutes,
	}, config.RequiredTimeframes())
}

func (suite *ConfigTestSuite) TestValidateErrors() {
	config := DefaultConfig()
	config.Timeframes = nil
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidTimeframe))

	config = DefaultConfig()
	config.Timeframes = []marketdata.Timespan{"2m"}
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidTimeframe))

	config = DefaultConfig()
	config.ReferenceTimeframe = ""
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidTimeframe))

	config = DefaultConfig()
	config.EMAPeriod = 0
	err := config.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	suite.Contains(err.Error(), "ema_period")

	config = DefaultConfig()
	config.RequestTimeout = -1
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidParameter))
}
