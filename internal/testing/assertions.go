package testing

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/shadow"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// RequirePriceNear asserts that a feed's price is within tolerance of expected.
func RequirePriceNear(t *testing.T, feeds shadow.Feeds, address solana.PublicKey, expected, tolerance float64) {
	t.Helper()
	price, _, err := feeds.GetPriceUSD(address)
	require.NoError(t, err, "Failed to read %s price of %s", feeds.Name(), address)
	require.LessOrEqual(t, math.Abs(price-expected), tolerance,
		"%s feed %s price mismatch: expected %v +/- %v, got %v",
		feeds.Name(), address, expected, tolerance, price)
}

// RequireConfidenceNear asserts that a feed's confidence is within tolerance of expected.
func RequireConfidenceNear(t *testing.T, feeds shadow.Feeds, address solana.PublicKey, expected, tolerance float64) {
	t.Helper()
	_, conf, err := feeds.GetPriceUSD(address)
	require.NoError(t, err, "Failed to read %s price of %s", feeds.Name(), address)
	require.LessOrEqual(t, math.Abs(conf-expected), tolerance,
		"%s feed %s confidence mismatch: expected %v +/- %v, got %v",
		feeds.Name(), address, expected, tolerance, conf)
}

// RequireFeedNotFound asserts that err is a price feed lookup miss.
func RequireFeedNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err, "Expected price feed not found, got success")
	require.True(t, errors.Is(err, oracle.ErrPriceFeedNotFound),
		"Expected price feed not found, got %v", err)
}

// RequireInvalidPriceData asserts that err reports unrepresentable or malformed price data.
func RequireInvalidPriceData(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err, "Expected invalid price data, got success")
	require.True(t, errors.Is(err, oracle.ErrInvalidPriceData),
		"Expected invalid price data, got %v", err)
}

// RequireAccount asserts that the account at address has the given owner and size.
func RequireAccount(t *testing.T, env *TestEnv, address solana.PublicKey, owner solana.PublicKey, size int) {
	t.Helper()
	account := env.Account(address)
	require.True(t, account.Owner.Equals(owner),
		"Account %s owner mismatch: expected %s, got %s", address, owner, account.Owner)
	require.Len(t, account.Data, size, "Account %s size mismatch", address)
	require.NotZero(t, account.Lamports, "Account %s is not funded", address)
}

// RequireAccountExists asserts that an account exists in the ledger.
func RequireAccountExists(t *testing.T, env *TestEnv, address solana.PublicKey) {
	t.Helper()
	require.True(t, env.Exists(address),
		"Expected account %s to exist, but it does not", address)
}

// RequireAccountNotExists asserts that an account does not exist in the ledger.
func RequireAccountNotExists(t *testing.T, env *TestEnv, address solana.PublicKey) {
	t.Helper()
	require.False(t, env.Exists(address),
		"Expected account %s to not exist, but it does", address)
}

// RequireFresh asserts that the feed was last updated at the current ledger time and slot.
func RequireFresh(t *testing.T, env *TestEnv, feeds shadow.Feeds, address solana.PublicKey) {
	t.Helper()
	ts, err := feeds.GetTimestamp(address)
	require.NoError(t, err)
	require.Equal(t, env.Now(), ts, "%s feed %s timestamp is not current", feeds.Name(), address)
	slot, err := feeds.GetSlot(address)
	require.NoError(t, err)
	require.Equal(t, env.Slot(), slot, "%s feed %s slot is not current", feeds.Name(), address)
}

// RequireLogged asserts that an entry at level containing message was logged.
func RequireLogged(t *testing.T, env *TestEnv, level logrus.Level, message string) {
	t.Helper()
	for _, entry := range env.Logs() {
		if entry.Level == level && strings.Contains(entry.Message, message) {
			return
		}
	}
	require.Failf(t, "log entry not found", "no %s entry containing %q", level, message)
}

// AssertUnchanged runs fn and asserts the raw account at address is byte-identical afterwards.
func AssertUnchanged(t *testing.T, env *TestEnv, address solana.PublicKey, fn func()) {
	t.Helper()
	before := env.Account(address)
	fn()
	after := env.Account(address)
	require.Equal(t, before, after, "Account %s changed", address)
}
