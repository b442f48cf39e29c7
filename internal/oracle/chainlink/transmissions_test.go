package chainlink

import (
	"encoding/binary"
	"math"
	"math/big"
	"testing"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testClock = oracle.Clock{Slot: 100, UnixTimestamp: 1_704_067_200}

func TestNewFeedLayout(t *testing.T) {
	f, err := NewFeed(oracle.NewUSD(2200, 5).WithDescription("ETH / USD"), testClock)
	require.NoError(t, err)
	data, err := f.Bytes()
	require.NoError(t, err)
	require.Len(t, data, AccountSize)
	require.Equal(t, 960, AccountSize)

	le := binary.LittleEndian
	assert.Equal(t, Version, data[0])
	assert.Equal(t, StateInitialized, data[1])
	assert.Equal(t, "ETH / USD", string(data[98:107]))
	assert.Equal(t, byte(8), data[130], "decimals")
	assert.Equal(t, FlaggingThreshold, le.Uint32(data[131:]))
	assert.Equal(t, uint32(1), le.Uint32(data[135:]), "latest round")
	assert.Equal(t, Granularity, data[141])
	assert.Equal(t, uint32(RingLength), le.Uint32(data[142:]))
	assert.Equal(t, uint32(0), le.Uint32(data[150:]), "cursor")

	tx := data[HeaderSize:]
	assert.Equal(t, uint64(100), le.Uint64(tx[0:]))
	assert.Equal(t, uint32(1_704_067_200), le.Uint32(tx[8:]))
	assert.Equal(t, "220000000000", oracle.Int128(tx[16:]).String())
	assert.Equal(t, byte(3), tx[32])
	assert.Equal(t, byte(3), tx[33])
}

func TestNewFeedRejects(t *testing.T) {
	_, err := NewFeed(oracle.NewUSD(1, 0).WithPublishTime(-1), testClock)
	assert.ErrorIs(t, err, oracle.ErrInvalidPriceData)

	_, err = NewFeed(oracle.NewUSD(1, 0).WithPublishTime(math.MaxUint32+1), testClock)
	assert.ErrorIs(t, err, oracle.ErrInvalidPriceData)

	_, err = NewFeed(oracle.NewUSD(1e30, 0).WithDecimals(18), testClock)
	assert.ErrorIs(t, err, oracle.ErrInvalidPriceData)
}

func TestTimestamp32(t *testing.T) {
	ts, err := Timestamp32(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), ts)

	_, err = Timestamp32(-1)
	assert.ErrorIs(t, err, oracle.ErrInvalidPriceData)
}

func TestTransmitRing(t *testing.T) {
	f, err := NewFeed(oracle.NewUSD(1, 0).WithDecimals(0), testClock)
	require.NoError(t, err)
	data, err := f.Bytes()
	require.NoError(t, err)

	for round := uint32(2); round <= 20; round++ {
		require.NoError(t, f.Transmit(big.NewInt(int64(round)), uint64(round), round))
		require.NoError(t, f.Encode(data))
	}
	assert.Equal(t, uint32(20), f.LatestRound)
	assert.Equal(t, uint32(3), f.Cursor())

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(20), decoded.LatestRound)
	assert.Equal(t, "20", decoded.Latest.Answer.String())

	for round := uint32(5); round <= 20; round++ {
		tx, err := ReadRound(data, round)
		require.NoError(t, err, "round %d", round)
		assert.Equal(t, int64(round), tx.Answer.Int64())
		assert.Equal(t, uint64(round), tx.Slot)
	}
	for _, round := range []uint32{0, 1, 4, 21} {
		_, err := ReadRound(data, round)
		assert.ErrorIs(t, err, ErrRoundNotFound, "round %d", round)
	}
}

func TestTransmitOverflow(t *testing.T) {
	f := &Feed{LatestRound: math.MaxUint32}
	assert.ErrorIs(t, f.Transmit(big.NewInt(1), 0, 0), oracle.ErrInvalidPriceData)
	assert.Equal(t, uint32(math.MaxUint32), f.LatestRound)
}

func TestDecodeRejects(t *testing.T) {
	f, err := NewFeed(oracle.NewUSD(1, 0), testClock)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short", func(b []byte) []byte { return b[:AccountSize-1] }},
		{"version", func(b []byte) []byte { b[0] = 2; return b }},
		{"uninitialized", func(b []byte) []byte { b[1] = 0; return b }},
		{"live length", func(b []byte) []byte { b[142] = 8; return b }},
		{"no rounds", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[135:], 0); return b }},
		{"cursor", func(b []byte) []byte { b[150] = 5; return b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := f.Bytes()
			require.NoError(t, err)
			_, err = Decode(tt.mutate(data))
			assert.ErrorIs(t, err, oracle.ErrInvalidPriceData)
		})
	}
}

func TestEncodeRejects(t *testing.T) {
	f := &Feed{LatestRound: 1, Description: "a description that is longer than thirty-two bytes"}
	assert.ErrorIs(t, f.Encode(make([]byte, AccountSize)), oracle.ErrInvalidPriceData)

	f = &Feed{}
	assert.ErrorIs(t, f.Encode(make([]byte, AccountSize)), oracle.ErrInvalidPriceData)
	assert.ErrorIs(t, f.Encode(make([]byte, 10)), oracle.ErrInvalidPriceData)
}

func TestFeedRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := &Feed{
			Description: rapid.StringMatching(`[A-Z /]{0,32}`).Draw(t, "description"),
			Decimals:    rapid.Uint8Range(0, 18).Draw(t, "decimals"),
			LatestRound: rapid.Uint32Range(1, math.MaxUint32).Draw(t, "round"),
			LiveLength:  RingLength,
			Latest: Transmission{
				Slot:         rapid.Uint64().Draw(t, "slot"),
				Timestamp:    rapid.Uint32().Draw(t, "timestamp"),
				Answer:       big.NewInt(rapid.Int64().Draw(t, "answer")),
				Observations: rapid.Byte().Draw(t, "observations"),
				Observers:    rapid.Byte().Draw(t, "observers"),
			},
		}
		data, err := f.Bytes()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Description != f.Description || got.Decimals != f.Decimals || got.LatestRound != f.LatestRound ||
			got.Latest.Slot != f.Latest.Slot || got.Latest.Timestamp != f.Latest.Timestamp ||
			got.Latest.Answer.Cmp(f.Latest.Answer) != 0 ||
			got.Latest.Observations != f.Latest.Observations || got.Latest.Observers != f.Latest.Observers {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, f)
		}
	})
}
