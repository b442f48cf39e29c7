package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUSD(t *testing.T) {
	c := NewUSD(100, 0.1)
	assert.Equal(t, 100.0, c.PriceUSD())
	assert.Equal(t, 0.1, c.ConfidenceUSD())
	assert.Equal(t, DefaultExponent, c.Exponent)
	assert.Equal(t, DefaultDecimals, c.Decimals)
	assert.Equal(t, StatusTrading, c.Status)
	assert.Zero(t, c.PublishTime)
	assert.Zero(t, c.Slot)
}

func TestPresets(t *testing.T) {
	s := Stablecoin()
	assert.Equal(t, 1.0, s.Value)
	assert.Equal(t, 0.0001, s.Confidence)

	v := Volatile(250)
	assert.Equal(t, 250.0, v.Value)
	assert.InDelta(t, 5.0, v.Confidence, 1e-12)
}

func TestConfModifiersCopy(t *testing.T) {
	base := NewUSD(10, 1)
	modified := base.
		WithDecimals(6).
		WithExponent(-6).
		WithStatus(StatusHalted).
		WithPublishTime(1000).
		WithSlot(7).
		WithEMA(9, 2).
		WithDescription("SOL / USD")

	assert.Equal(t, DefaultDecimals, base.Decimals)
	assert.Equal(t, DefaultExponent, base.Exponent)
	assert.Equal(t, StatusTrading, base.Status)
	assert.Nil(t, base.EMAValue)
	assert.Empty(t, base.Description)

	assert.Equal(t, uint8(6), modified.Decimals)
	assert.Equal(t, int32(-6), modified.Exponent)
	assert.Equal(t, StatusHalted, modified.Status)
	assert.Equal(t, int64(1000), modified.PublishTime)
	assert.Equal(t, uint64(7), modified.Slot)
	assert.Equal(t, 9.0, *modified.EMAValue)
	assert.Equal(t, 2.0, *modified.EMAConfidence)
	assert.Equal(t, "SOL / USD", modified.Description)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"trading", StatusTrading},
		{"HALTED", StatusHalted},
		{" unknown ", StatusUnknown},
		{"Auction", StatusAuction},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(tt.in)), got.String())
		})
	}

	_, err := ParseStatus("closed")
	assert.Error(t, err)
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestConfValidate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Conf
		wantErr bool
	}{
		{"default", NewUSD(100, 0.1), false},
		{"max decimals", NewUSD(1, 0).WithDecimals(MaxDecimals), false},
		{"too many decimals", NewUSD(1, 0).WithDecimals(MaxDecimals + 1), true},
		{"exponent out of range", NewUSD(1, 0).WithExponent(-40), true},
		{"negative confidence", NewUSD(1, -0.5), true},
		{"description at limit", NewUSD(1, 0).WithDescription(strings.Repeat("x", MaxDescriptionLength)), false},
		{"description too long", NewUSD(1, 0).WithDescription(strings.Repeat("x", MaxDescriptionLength+1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPriceData)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfRaw(t *testing.T) {
	price, conf, err := NewUSD(100, 0.1).Raw()
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000_000), price)
	assert.Equal(t, uint64(10_000_000), conf)

	emaPrice, emaConf, err := NewUSD(100, 0.1).RawEMA()
	require.NoError(t, err)
	assert.Equal(t, price, emaPrice, "EMA defaults to the price")
	assert.Equal(t, conf, emaConf)

	emaPrice, emaConf, err = NewUSD(100, 0.1).WithEMA(95, 0.5).RawEMA()
	require.NoError(t, err)
	assert.Equal(t, int64(9_500_000_000), emaPrice)
	assert.Equal(t, uint64(50_000_000), emaConf)

	_, _, err = NewUSD(1e30, 0).Raw()
	assert.ErrorIs(t, err, ErrInvalidPriceData)
}

func TestConfTimestamps(t *testing.T) {
	clock := Clock{Slot: 50, UnixTimestamp: 1_700_000_000}

	ts, slot := NewUSD(1, 0).Timestamps(clock)
	assert.Equal(t, clock.UnixTimestamp, ts)
	assert.Equal(t, clock.Slot, slot)

	ts, slot = NewUSD(1, 0).WithPublishTime(123).WithSlot(4).Timestamps(clock)
	assert.Equal(t, int64(123), ts)
	assert.Equal(t, uint64(4), slot)

	ts, _ = NewUSD(1, 0).StaleBy(60, clock.UnixTimestamp).Timestamps(clock)
	assert.Equal(t, clock.UnixTimestamp-60, ts)
}
