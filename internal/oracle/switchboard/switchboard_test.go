package switchboard_test

import (
	"testing"
	"time"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/oracle/switchboard"
	shadowtest "github.com/LeJamon/goShadowOracle/internal/testing"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePriceFeed(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.NewUSD(100, 0.1).WithDescription("SOL / USD"))
	require.NoError(t, err)

	shadowtest.RequireAccount(t, env, feed, oracle.SwitchboardProgramID, switchboard.AccountSize)
	shadowtest.RequirePriceNear(t, sb, feed, 100, 0)
	shadowtest.RequireConfidenceNear(t, sb, feed, 0.1, 0)
	shadowtest.RequireFresh(t, env, sb, feed)

	agg, err := sb.Aggregator(feed)
	require.NoError(t, err)
	assert.Equal(t, "SOL / USD", agg.Name)
	assert.True(t, agg.IsClosed)
	assert.Equal(t, uint32(3), agg.NumSuccess)
}

func TestSetPriceKeepsScale(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.NewUSD(10, 0).WithDecimals(2))
	require.NoError(t, err)

	env.AdvanceSlots(3)
	require.NoError(t, sb.SetPrice(feed, 12.345, 0.5))

	agg, err := sb.Aggregator(feed)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), agg.Result.Scale)
	assert.Equal(t, "1235", agg.Result.Mantissa.String(), "rounded half away from zero at scale 2")
	assert.Equal(t, "50", agg.StdDeviation.Mantissa.String())
	shadowtest.RequireFresh(t, env, sb, feed)
}

func TestSetPriceRejects(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.NewUSD(10, 1))
	require.NoError(t, err)

	shadowtest.AssertUnchanged(t, env, feed, func() {
		shadowtest.RequireInvalidPriceData(t, sb.SetPrice(feed, 11, -1))
		shadowtest.RequireInvalidPriceData(t, sb.SetPriceUSD(feed, 1e40, 0))
	})
}

func TestMakeStale(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.NewUSD(100, 0.1))
	require.NoError(t, err)
	slot, err := sb.GetSlot(feed)
	require.NoError(t, err)

	env.Advance(time.Hour)
	env.AdvanceSlots(2)
	require.NoError(t, sb.MakeStale(feed, 600))

	ts, err := sb.GetTimestamp(feed)
	require.NoError(t, err)
	assert.Equal(t, env.Now()-600, ts)

	after, err := sb.GetSlot(feed)
	require.NoError(t, err)
	assert.Equal(t, slot, after, "staleness only moves the timestamp")
}

func TestSimulateCrash(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.NewUSD(150, 0.2))
	require.NoError(t, err)

	require.NoError(t, sb.SimulateCrash(feed, 50))
	shadowtest.RequirePriceNear(t, sb, feed, 75, 0)
	shadowtest.RequireConfidenceNear(t, sb, feed, 1.0, 1e-9)
	shadowtest.RequireInvalidPriceData(t, sb.SimulateCrash(feed, 101))
}

func TestSimulateDepeg(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feed, err := sb.CreatePriceFeed(oracle.Stablecoin())
	require.NoError(t, err)

	require.NoError(t, sb.SimulateDepeg(feed, 1.1))
	shadowtest.RequirePriceNear(t, sb, feed, 1.1, 1e-12)
	shadowtest.RequireConfidenceNear(t, sb, feed, 0.011, 1e-9)
}

func TestUnknownFeed(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()
	missing := solana.NewWallet().PublicKey()

	_, _, err := sb.GetPrice(missing)
	shadowtest.RequireFeedNotFound(t, err)
	_, err = sb.GetTimestamp(missing)
	shadowtest.RequireFeedNotFound(t, err)
	shadowtest.RequireFeedNotFound(t, sb.SetPrice(missing, 1, 0))
	shadowtest.RequireFeedNotFound(t, sb.SimulateCrash(missing, 1))
	shadowtest.RequireFeedNotFound(t, sb.SimulateDepeg(missing, 1))
	shadowtest.RequireFeedNotFound(t, sb.MakeStale(missing, 1))
}

func TestCreateStandardFeeds(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()

	feeds, err := sb.CreateStandardFeeds()
	require.NoError(t, err)

	assert.Equal(t, oracle.SwitchboardMainnet.SOL, feeds.SOL)
	assert.Equal(t, oracle.SwitchboardMainnet.BTC, feeds.BTC)
	assert.Equal(t, oracle.SwitchboardMainnet.ETH, feeds.ETH)
	assert.False(t, feeds.USDC.IsZero())
	assert.False(t, feeds.USDT.IsZero())
	assert.NotEqual(t, feeds.USDC, feeds.USDT)
	assert.Len(t, sb.Feeds(), 5)

	shadowtest.RequirePriceNear(t, sb, feeds.BTC, 43_000, 0)
	shadowtest.RequirePriceNear(t, sb, feeds.USDT, 1, 0)

	agg, err := sb.Aggregator(feeds.ETH)
	require.NoError(t, err)
	assert.Equal(t, "ETH / USD", agg.Name)
}

func TestAdopt(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	feed, err := env.Oracle().Switchboard().CreatePriceFeed(oracle.NewUSD(3, 0.5))
	require.NoError(t, err)

	fresh := switchboard.New(env.Ledger())
	require.NoError(t, fresh.Adopt(feed))
	shadowtest.RequirePriceNear(t, fresh, feed, 3, 0)
	shadowtest.RequireConfidenceNear(t, fresh, feed, 0.5, 0)
}

func TestCreatePriceFeedAtReplaces(t *testing.T) {
	env := shadowtest.NewTestEnv(t)
	sb := env.Oracle().Switchboard()
	address := solana.NewWallet().PublicKey()

	require.NoError(t, sb.CreatePriceFeedAt(address, oracle.NewUSD(50, 1)))
	env.AdvanceSlots(4)
	require.NoError(t, sb.SetPriceUSD(address, 55, 2))

	env.AdvanceSlots(4)
	require.NoError(t, sb.CreatePriceFeedAt(address, oracle.NewUSD(7.25, 0.05)))
	shadowtest.RequireAccount(t, env, address, oracle.SwitchboardProgramID, switchboard.AccountSize)
	shadowtest.RequirePriceNear(t, sb, address, 7.25, 1e-9)
	shadowtest.RequireConfidenceNear(t, sb, address, 0.05, 1e-9)
	shadowtest.RequireFresh(t, env, sb, address)

	slot, err := sb.GetSlot(address)
	require.NoError(t, err)
	assert.Equal(t, env.Slot(), slot)
	assert.Equal(t, []solana.PublicKey{address}, sb.Feeds())

	shadowtest.RequireInvalidPriceData(t, sb.CreatePriceFeedAt(address, oracle.NewUSD(1, -1)))
	shadowtest.RequirePriceNear(t, sb, address, 7.25, 1e-9)
}
