package oracle

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrPriceFeedNotFound is matched by every FeedNotFoundError
	ErrPriceFeedNotFound = errors.New("price feed not found")

	// ErrInvalidPriceData is matched by every InvalidPriceDataError
	ErrInvalidPriceData = errors.New("invalid price data")

	// ErrLedgerWrite is matched by every LedgerWriteError
	ErrLedgerWrite = errors.New("ledger write rejected")

	// ErrAccountNotFound is returned by a Ledger when no account exists at an address
	ErrAccountNotFound = errors.New("account not found")
)

// FeedNotFoundError reports a lookup miss in a provider registry, or an account
// whose owner is not the provider's program.
type FeedNotFoundError struct {
	Provider string
	Address  solana.PublicKey
}

// Error implements the error interface.
func (e *FeedNotFoundError) Error() string {
	return fmt.Sprintf("price feed not found: %s", e.Address)
}

// Is reports whether target is ErrPriceFeedNotFound.
func (e *FeedNotFoundError) Is(target error) bool {
	return target == ErrPriceFeedNotFound
}

// InvalidPriceDataError reports a malformed account buffer or a numeric value
// that cannot be represented in the destination layout.
type InvalidPriceDataError struct {
	Message string
}

// Error implements the error interface.
func (e *InvalidPriceDataError) Error() string {
	return fmt.Sprintf("invalid price data: %s", e.Message)
}

// Is reports whether target is ErrInvalidPriceData.
func (e *InvalidPriceDataError) Is(target error) bool {
	return target == ErrInvalidPriceData
}

// LedgerWriteError wraps an error returned by the ledger while storing a feed.
type LedgerWriteError struct {
	Address solana.PublicKey
	Cause   error
}

// Error implements the error interface.
func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write for %s failed: %v", e.Address, e.Cause)
}

// Unwrap returns the underlying ledger error.
func (e *LedgerWriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrLedgerWrite. The cause is reached through Unwrap.
func (e *LedgerWriteError) Is(target error) bool {
	return target == ErrLedgerWrite
}

// NotFound builds a FeedNotFoundError.
func NotFound(provider string, address solana.PublicKey) error {
	return &FeedNotFoundError{Provider: provider, Address: address}
}

// Invalidf builds an InvalidPriceDataError from a format string.
func Invalidf(format string, args ...interface{}) error {
	return &InvalidPriceDataError{Message: fmt.Sprintf(format, args...)}
}
