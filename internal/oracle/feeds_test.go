package oracle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	address := solana.NewWallet().PublicKey()

	notFound := NotFound(ProviderPyth, address)
	assert.ErrorIs(t, notFound, ErrPriceFeedNotFound)
	assert.NotErrorIs(t, notFound, ErrInvalidPriceData)
	var nf *FeedNotFoundError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", notFound), &nf)
	assert.Equal(t, address, nf.Address)
	assert.Equal(t, ProviderPyth, nf.Provider)

	invalid := Invalidf("bad %d", 7)
	assert.ErrorIs(t, invalid, ErrInvalidPriceData)
	assert.Contains(t, invalid.Error(), "bad 7")

	cause := errors.New("disk full")
	write := &LedgerWriteError{Address: address, Cause: cause}
	assert.ErrorIs(t, write, ErrLedgerWrite)
	assert.ErrorIs(t, write, cause)
	assert.NotErrorIs(t, write, ErrPriceFeedNotFound)
}

func TestStandardAssets(t *testing.T) {
	assets := StandardAssets()
	require.Len(t, assets, 5)

	symbols := make([]string, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
	}
	assert.Equal(t, []string{"SOL", "BTC", "ETH", "USDC", "USDT"}, symbols)
	assert.Equal(t, 100.0, assets[0].Conf.Value)
	assert.Equal(t, 43_000.0, assets[1].Conf.Value)
	assert.Equal(t, 2_200.0, assets[2].Conf.Value)
	assert.Equal(t, Stablecoin(), assets[3].Conf)
}

func TestCreateStandard(t *testing.T) {
	var requested []solana.PublicKey
	var descriptions []string
	create := func(address solana.PublicKey, conf Conf) (solana.PublicKey, error) {
		requested = append(requested, address)
		descriptions = append(descriptions, conf.Description)
		if address.IsZero() {
			return solana.NewWallet().PublicKey(), nil
		}
		return address, nil
	}

	feeds, err := CreateStandard(SwitchboardMainnet, create)
	require.NoError(t, err)

	assert.Equal(t, SwitchboardMainnet.SOL, feeds.SOL)
	assert.Equal(t, SwitchboardMainnet.BTC, feeds.BTC)
	assert.Equal(t, SwitchboardMainnet.ETH, feeds.ETH)
	assert.False(t, feeds.USDC.IsZero(), "stablecoins get a random address")
	assert.False(t, feeds.USDT.IsZero())
	assert.True(t, requested[3].IsZero())
	assert.Equal(t, []string{"SOL / USD", "BTC / USD", "ETH / USD", "USDC / USD", "USDT / USD"}, descriptions)
}

func TestCreateStandardError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := CreateStandard(PythMainnet, func(address solana.PublicKey, conf Conf) (solana.PublicKey, error) {
		calls++
		if calls == 2 {
			return solana.PublicKey{}, boom
		}
		return address, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "BTC")
	assert.Equal(t, 2, calls, "creation stops at the first failure")
}

func TestFeedTableAddress(t *testing.T) {
	assert.Equal(t, PythMainnet.USDC, PythMainnet.Address("USDC"))
	assert.True(t, ChainlinkMainnet.Address("USDT").IsZero())
	assert.True(t, PythMainnet.Address("DOGE").IsZero())

	var feeds StandardFeeds
	assert.Error(t, feeds.Set("DOGE", solana.PublicKey{}))
}

func TestProgramIDsDistinct(t *testing.T) {
	ids := []solana.PublicKey{
		PythProgramID, SwitchboardProgramID, SwitchboardOnDemandProgramID,
		ChainlinkProgramID, ChainlinkStoreProgramID,
	}
	seen := make(map[solana.PublicKey]bool)
	for _, id := range ids {
		assert.False(t, id.IsZero())
		assert.False(t, seen[id], "duplicate program id %s", id)
		seen[id] = true
	}
}
