package oracle

import "github.com/gagliardetto/solana-go"

// DefaultLamports funds every feed account written by a registry.
const DefaultLamports uint64 = 1_000_000_000

// Account is a ledger account as seen by the oracle providers.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
}

// Clock is the ledger's notion of current time.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks github.com/LeJamon/goShadowOracle/internal/oracle Ledger

// Ledger is the account store and clock that feeds are written into.
//
// Providers hold the ledger for their whole lifetime and expect exclusive
// access while a write is in progress; callers serialize concurrent use.
type Ledger interface {
	// GetAccount returns ErrAccountNotFound when nothing is stored at address.
	GetAccount(address solana.PublicKey) (Account, error)
	SetAccount(address solana.PublicKey, account Account) error
	Clock() Clock
}
