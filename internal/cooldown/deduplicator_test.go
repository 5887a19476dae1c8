package cooldown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DeduplicatorTestSuite struct {
	suite.Suite
	epoch time.Time
	dedup *Deduplicator
}

func TestDeduplicatorSuite(t *testing.T) {
	suite.Run(t, new(DeduplicatorTestSuite))
}

func (suite *DeduplicatorTestSuite) SetupTest() {
	suite.epoch = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.dedup = NewDeduplicator(DefaultWindow, nil)
}

func (suite *DeduplicatorTestSuite) at(seconds int) time.Time {
	return suite.epoch.Add(time.Duration(seconds) * time.Second)
}

func signal(symbol string, direction types.Direction, strategy types.StrategyName) types.Signal {
	return types.Signal{Symbol: symbol, Direction: direction, Strategy: strategy, Price: 100}
}

func (suite *DeduplicatorTestSuite) TestCooldownWindow() {
	s := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)

	suite.True(suite.dedup.Admit(s, suite.at(0)))
	suite.False(suite.dedup.Admit(s, suite.at(3599)))
	suite.True(suite.dedup.Admit(s, suite.at(3601)))
}

func (suite *DeduplicatorTestSuite) TestExactWindowIsStillSuppressed() {
	s := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)

	suite.True(suite.dedup.Admit(s, suite.at(0)))
	suite.False(suite.dedup.Admit(s, suite.at(3600)))
}

func (suite *DeduplicatorTestSuite) TestRejectionLeavesLedgerUntouched() {
	s := signal("ETHUSDT", types.DirectionSell, types.StrategyRSIMeanReversion)

	suite.True(suite.dedup.Admit(s, suite.at(0)))
	suite.False(suite.dedup.Admit(s, suite.at(1800)))

	last, ok := suite.dedup.LastAdmitted(s.Key())
	suite.True(ok)
	suite.Equal(suite.at(0), last)

	// Measured from the admission at 0, not the rejection at 1800.
	suite.True(suite.dedup.Admit(s, suite.at(3601)))

	last, _ = suite.dedup.LastAdmitted(s.Key())
	suite.Equal(suite.at(3601), last)
}

func (suite *DeduplicatorTestSuite) TestKeysAreIndependent() {
	buy := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)

	suite.True(suite.dedup.Admit(buy, suite.at(0)))
	suite.True(suite.dedup.Admit(signal("BTCUSDT", types.DirectionSell, types.StrategyBreakout), suite.at(1)))
	suite.True(suite.dedup.Admit(signal("BTCUSDT", types.DirectionBuy, types.StrategyRSIMeanReversion), suite.at(2)))
	suite.True(suite.dedup.Admit(signal("ETHUSDT", types.DirectionBuy, types.StrategyBreakout), suite.at(3)))
	suite.False(suite.dedup.Admit(buy, suite.at(4)))
	suite.Equal(4, suite.dedup.Len())
}

func (suite *DeduplicatorTestSuite) TestKeyIgnoresPayload() {
	first := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)
	second := first
	second.Price = 250
	second.Confidence = types.ConfidenceMedium

	suite.True(suite.dedup.Admit(first, suite.at(0)))
	suite.False(suite.dedup.Admit(second, suite.at(10)))
}

func (suite *DeduplicatorTestSuite) TestPrune() {
	suite.dedup.Admit(signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout), suite.at(0))
	suite.dedup.Admit(signal("ETHUSDT", types.DirectionBuy, types.StrategyBreakout), suite.at(3000))

	suite.Equal(0, suite.dedup.Prune(suite.at(3600)))
	suite.Equal(1, suite.dedup.Prune(suite.at(3601)))
	suite.Equal(1, suite.dedup.Len())

	_, ok := suite.dedup.LastAdmitted(signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout).Key())
	suite.False(ok)
}

func (suite *DeduplicatorTestSuite) TestAdmitNowUsesClock() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	gomock.InOrder(
		clock.EXPECT().Now().Return(suite.at(0)),
		clock.EXPECT().Now().Return(suite.at(3599)),
		clock.EXPECT().Now().Return(suite.at(3601)),
	)

	dedup := NewDeduplicator(DefaultWindow, clock)
	s := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)

	suite.True(dedup.AdmitNow(s))
	suite.False(dedup.AdmitNow(s))
	suite.True(dedup.AdmitNow(s))
}

func (suite *DeduplicatorTestSuite) TestConcurrentAdmitsOnlyOneWins() {
	s := signal("BTCUSDT", types.DirectionBuy, types.StrategyBreakout)

	var admitted atomic.Int32

	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if suite.dedup.Admit(s, suite.at(10)) {
				admitted.Add(1)
			}
		}()
	}

	wg.Wait()
	suite.Equal(int32(1), admitted.Load())
}

func (suite *DeduplicatorTestSuite) TestCustomWindow() {
	dedup := NewDeduplicator(5*time.Minute, nil)
	s := signal("AAPL", types.DirectionSell, types.StrategyRSIMeanReversion)

	suite.Equal(5*time.Minute, dedup.Window())
	suite.True(dedup.Admit(s, suite.at(0)))
	suite.False(dedup.Admit(s, suite.at(300)))
	suite.True(dedup.Admit(s, suite.at(301)))
}

func (suite *DeduplicatorTestSuite) TestSystemClock() {
	before := time.Now()
	now := SystemClock{}.Now()
	suite.False(now.Before(before))
}
