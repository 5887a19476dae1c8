package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

func (suite *SignalTestSuite) TestConstants() {
	suite.Equal(Direction("BUY"), DirectionBuy)
	suite.Equal(Direction("SELL"), DirectionSell)
	suite.Equal(StrategyName("RSI Mean Reversion"), StrategyRSIMeanReversion)
	suite.Equal(StrategyName("Breakout"), StrategyBreakout)
	suite.Equal(Regime("TRENDING"), RegimeTrending)
	suite.Equal(Regime("RANGING"), RegimeRanging)
	suite.Equal(Bias("NEUTRAL"), BiasNeutral)
	suite.Equal(Confidence("HIGH"), ConfidenceHigh)
}

func (suite *SignalTestSuite) TestKey() {
	signal := Signal{
		ID:            "id-1",
		Time:          time.Now(),
		Symbol:        "ETHUSDT",
		Direction:     DirectionSell,
		Strategy:      StrategyBreakout,
		Price:         2500,
		Regime:        RegimeTrending,
		Bias:          BiasBearish,
		Confidence:    ConfidenceHigh,
		BreakoutLevel: optional.Some(2550.0),
	}

	key := signal.Key()
	suite.Equal(SignalKey{Symbol: "ETHUSDT", Direction: DirectionSell, Strategy: StrategyBreakout}, key)
	suite.Equal("ETHUSDT_SELL_Breakout", key.String())
}

func (suite *SignalTestSuite) TestKeyIgnoresNonIdentityFields() {
	a := Signal{ID: "a", Symbol: "BTCUSDT", Direction: DirectionBuy, Strategy: StrategyRSIMeanReversion, Price: 1, RSI: optional.Some(30.0)}
	b := Signal{ID: "b", Symbol: "BTCUSDT", Direction: DirectionBuy, Strategy: StrategyRSIMeanReversion, Price: 2, RSI: optional.Some(38.0)}
	suite.Equal(a.Key(), b.Key())

	c := Signal{Symbol: "BTCUSDT", Direction: DirectionBuy, Strategy: StrategyBreakout}
	suite.NotEqual(a.Key(), c.Key())
}

func (suite *SignalTestSuite) TestZeroPayload() {
	signal := Signal{}
	suite.True(signal.RSI.IsNone())
	suite.True(signal.BreakoutLevel.IsNone())
}
