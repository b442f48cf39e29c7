// Package oracle holds the provider-agnostic pieces of the shadow oracle: the
// price configuration (Conf), fixed-point conversions, the Ledger contract,
// the per-provider feed Registry and the market event math.
//
// Provider account layouts live in the pyth, switchboard and chainlink
// subpackages; the shadow package bundles all three behind one handle.
//
// # Fixed-point conversion
//
// Values are scaled with decimal arithmetic and rounded half away from zero:
//
//	raw, _ := oracle.ToRaw(100.5, -8)        // 10050000000
//	oracle.FromRaw(raw, -8)                  // 100.5
//	answer, _ := oracle.ToScaled(2200.0, 8)  // 220000000000 (int128)
//
// Conversions fail with an error matching ErrInvalidPriceData instead of
// truncating when a value does not fit the destination width.
package oracle
