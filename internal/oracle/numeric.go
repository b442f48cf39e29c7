package oracle

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxExponent bounds the magnitude of a power-of-ten exponent. A 128-bit
// integer holds at most 39 decimal digits.
const MaxExponent int32 = 38

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
)

func checkExponent(exponent int32) error {
	if exponent > MaxExponent || exponent < -MaxExponent {
		return Invalidf("exponent %d outside [-%d, %d]", exponent, MaxExponent, MaxExponent)
	}
	return nil
}

// Decimal converts a float to a decimal, rejecting NaN and infinities.
func Decimal(value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, Invalidf("value %v is not finite", value)
	}
	return decimal.NewFromFloat(value), nil
}

// scale returns round(value * 10^-exponent), rounding half away from zero.
func scale(value float64, exponent int32) (*big.Int, error) {
	if err := checkExponent(exponent); err != nil {
		return nil, err
	}
	d, err := Decimal(value)
	if err != nil {
		return nil, err
	}
	return d.Shift(-exponent).Round(0).BigInt(), nil
}

// ToRaw converts value to a signed 64-bit fixed-point integer:
// raw = round(value * 10^-exponent).
func ToRaw(value float64, exponent int32) (int64, error) {
	raw, err := scale(value, exponent)
	if err != nil {
		return 0, err
	}
	if !raw.IsInt64() {
		return 0, Invalidf("value %v with exponent %d overflows int64", value, exponent)
	}
	return raw.Int64(), nil
}

// ToRawConfidence converts a non-negative confidence to an unsigned 64-bit
// fixed-point integer.
func ToRawConfidence(confidence float64, exponent int32) (uint64, error) {
	if confidence < 0 {
		return 0, Invalidf("confidence %v is negative", confidence)
	}
	raw, err := scale(confidence, exponent)
	if err != nil {
		return 0, err
	}
	if !raw.IsUint64() {
		return 0, Invalidf("confidence %v with exponent %d overflows uint64", confidence, exponent)
	}
	return raw.Uint64(), nil
}

// FromRaw converts a fixed-point integer back to a float: raw * 10^exponent.
func FromRaw(raw int64, exponent int32) float64 {
	return decimal.New(raw, exponent).InexactFloat64()
}

// FromRawConfidence is FromRaw for unsigned values.
func FromRawConfidence(raw uint64, exponent int32) float64 {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), exponent).InexactFloat64()
}

// ToScaled converts value to a 128-bit integer scaled by 10^decimals.
func ToScaled(value float64, decimals uint8) (*big.Int, error) {
	if decimals > MaxDecimals {
		return nil, Invalidf("decimals %d exceeds %d", decimals, MaxDecimals)
	}
	raw, err := scale(value, -int32(decimals))
	if err != nil {
		return nil, err
	}
	if raw.Cmp(minInt128) < 0 || raw.Cmp(maxInt128) > 0 {
		return nil, Invalidf("value %v with %d decimals overflows int128", value, decimals)
	}
	return raw, nil
}

// FromScaled converts a mantissa scaled by 10^scale back to a float.
func FromScaled(mantissa *big.Int, scale uint32) float64 {
	return decimal.NewFromBigInt(mantissa, -int32(scale)).InexactFloat64()
}

// PutInt128 writes v into b[:16] as a little-endian two's-complement integer.
func PutInt128(b []byte, v *big.Int) error {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Invalidf("%s overflows int128", v)
	}
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	var be [16]byte
	u.FillBytes(be[:])
	for i := 0; i < 16; i++ {
		b[i] = be[15-i]
	}
	return nil
}

// Int128 reads a little-endian two's-complement integer from b[:16].
func Int128(b []byte) *big.Int {
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	v := new(big.Int).SetBytes(be[:])
	if be[0]&0x80 != 0 {
		v.Sub(v, two128)
	}
	return v
}
