package oracle

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestToRaw(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		exponent int32
		want     int64
	}{
		{"usd price", 100.5, -8, 10_050_000_000},
		{"zero", 0, -8, 0},
		{"negative", -2.25, -8, -225_000_000},
		{"half rounds up", 1.235, -2, 124},
		{"half rounds away from zero", -1.235, -2, -124},
		{"below half rounds down", 1.234, -2, 123},
		{"smallest unit", 0.000000005, -8, 1},
		{"positive exponent", 12_345, 2, 123},
		{"zero exponent", 7, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToRaw(tt.value, tt.exponent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRawRejects(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		exponent int32
	}{
		{"nan", math.NaN(), -8},
		{"positive infinity", math.Inf(1), -8},
		{"negative infinity", math.Inf(-1), -8},
		{"overflow", 1e12, -8},
		{"negative overflow", -1e12, -8},
		{"exponent too small", 1, -39},
		{"exponent too large", 1, 39},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToRaw(tt.value, tt.exponent)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPriceData), "got %v", err)
		})
	}
}

func TestToRawConfidence(t *testing.T) {
	raw, err := ToRawConfidence(0.1, -8)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), raw)

	// above int64 but within uint64
	raw, err = ToRawConfidence(1e11, -8)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), raw)

	_, err = ToRawConfidence(-0.1, -8)
	assert.ErrorIs(t, err, ErrInvalidPriceData)

	_, err = ToRawConfidence(1e12, -8)
	assert.ErrorIs(t, err, ErrInvalidPriceData)
}

func TestFromRaw(t *testing.T) {
	assert.Equal(t, 100.5, FromRaw(10_050_000_000, -8))
	assert.Equal(t, -0.01, FromRaw(-1, -2))
	assert.Equal(t, 12_300.0, FromRaw(123, 2))
	assert.Equal(t, 0.1, FromRawConfidence(10_000_000, -8))
	assert.InDelta(t, 184_467_440_737.09551615, FromRawConfidence(math.MaxUint64, -8), 1e-3)
}

func TestToScaled(t *testing.T) {
	got, err := ToScaled(2200.0, 8)
	require.NoError(t, err)
	assert.Equal(t, "220000000000", got.String())

	got, err = ToScaled(-0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, "-1", got.String())

	// beyond int64 but within int128
	got, err = ToScaled(1e12, 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000000", got.String())

	_, err = ToScaled(1, MaxDecimals+1)
	assert.ErrorIs(t, err, ErrInvalidPriceData)

	_, err = ToScaled(1e30, 18)
	assert.ErrorIs(t, err, ErrInvalidPriceData)

	_, err = ToScaled(math.NaN(), 8)
	assert.ErrorIs(t, err, ErrInvalidPriceData)
}

func TestFromScaled(t *testing.T) {
	assert.Equal(t, 2200.0, FromScaled(big.NewInt(220_000_000_000), 8))
	assert.Equal(t, -1.5, FromScaled(big.NewInt(-15), 1))
}

func TestInt128Encoding(t *testing.T) {
	b := make([]byte, 16)

	require.NoError(t, PutInt128(b, big.NewInt(-1)))
	for _, x := range b {
		assert.Equal(t, byte(0xff), x)
	}

	require.NoError(t, PutInt128(b, big.NewInt(1)))
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, byte(0), b[15])

	require.NoError(t, PutInt128(b, minInt128))
	assert.Equal(t, byte(0x80), b[15])
	assert.Equal(t, 0, Int128(b).Cmp(minInt128))

	require.NoError(t, PutInt128(b, maxInt128))
	assert.Equal(t, 0, Int128(b).Cmp(maxInt128))

	tooBig := new(big.Int).Add(maxInt128, big.NewInt(1))
	assert.ErrorIs(t, PutInt128(b, tooBig), ErrInvalidPriceData)
	tooSmall := new(big.Int).Sub(minInt128, big.NewInt(1))
	assert.ErrorIs(t, PutInt128(b, tooSmall), ErrInvalidPriceData)
}

func TestInt128RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hi := rapid.Int64().Draw(t, "hi")
		lo := rapid.Uint64().Draw(t, "lo")

		v := new(big.Int).Lsh(big.NewInt(hi), 64)
		v.Add(v, new(big.Int).SetUint64(lo))

		b := make([]byte, 16)
		if err := PutInt128(b, v); err != nil {
			t.Fatalf("put %s: %v", v, err)
		}
		if got := Int128(b); got.Cmp(v) != 0 {
			t.Fatalf("round trip of %s gave %s", v, got)
		}
	})
}

func TestToRawRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// 15 significant digits survive a float64 round trip
		raw := rapid.Int64Range(-999_999_999_999_999, 999_999_999_999_999).Draw(t, "raw")
		exponent := rapid.Int32Range(-12, 0).Draw(t, "exponent")

		got, err := ToRaw(FromRaw(raw, exponent), exponent)
		if err != nil {
			t.Fatalf("ToRaw: %v", err)
		}
		if got != raw {
			t.Fatalf("raw %d exponent %d round-tripped to %d", raw, exponent, got)
		}
	})
}
