package oracle

import (
	"fmt"
	"strings"
)

const (
	// DefaultExponent is the power-of-ten scale used for USD prices.
	DefaultExponent int32 = -8

	// DefaultDecimals is the display precision used by providers that scale by decimals.
	DefaultDecimals uint8 = 8

	// MaxDecimals bounds Conf.Decimals.
	MaxDecimals uint8 = 18

	// MaxDescriptionLength is the width of the round-based provider's description field.
	MaxDescriptionLength = 32
)

// Status is the trading status of a price feed. Only the high-fidelity provider
// stores it; the others ignore it.
type Status uint8

const (
	StatusTrading Status = iota
	StatusHalted
	StatusUnknown
	StatusAuction
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusTrading:
		return "trading"
	case StatusHalted:
		return "halted"
	case StatusUnknown:
		return "unknown"
	case StatusAuction:
		return "auction"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(name string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trading":
		return StatusTrading, nil
	case "halted":
		return StatusHalted, nil
	case "unknown":
		return StatusUnknown, nil
	case "auction":
		return StatusAuction, nil
	}
	return StatusUnknown, fmt.Errorf("unknown price status %q", name)
}

// Conf is a provider-agnostic description of a price point. Each provider
// converts it into its own account layout when a feed is created.
//
// Conf is a value type: the With* modifiers return an updated copy and never
// affect a feed that has already been written.
type Conf struct {
	// Value is the price in quote units (e.g. USD).
	Value float64
	// Confidence is the uncertainty margin, in the same units as Value.
	Confidence float64
	// Decimals is the display precision used by the standard-deviation and
	// round-based providers.
	Decimals uint8
	// Exponent is the power-of-ten scale of raw values (raw = Value / 10^Exponent).
	Exponent int32
	Status   Status

	// PublishTime and Slot are sampled from the ledger clock when left at zero.
	PublishTime int64
	Slot        uint64

	// EMAValue and EMAConfidence default to Value and Confidence.
	EMAValue      *float64
	EMAConfidence *float64

	// Description is written by the round-based provider only.
	Description string
}

// NewUSD returns a USD price configuration with the default exponent and decimals.
func NewUSD(value, confidence float64) Conf {
	return Conf{
		Value:      value,
		Confidence: confidence,
		Decimals:   DefaultDecimals,
		Exponent:   DefaultExponent,
		Status:     StatusTrading,
	}
}

// Stablecoin returns a price pegged to 1.00 with a tight confidence interval.
func Stablecoin() Conf {
	return NewUSD(1.0, 0.0001)
}

// Volatile returns a price with a confidence interval of 2% of the value.
func Volatile(value float64) Conf {
	return NewUSD(value, value*0.02)
}

// WithDecimals sets the display precision.
func (c Conf) WithDecimals(decimals uint8) Conf {
	c.Decimals = decimals
	return c
}

// WithExponent sets the power-of-ten scale.
func (c Conf) WithExponent(exponent int32) Conf {
	c.Exponent = exponent
	return c
}

// WithStatus sets the trading status.
func (c Conf) WithStatus(status Status) Conf {
	c.Status = status
	return c
}

// WithPublishTime pins the publish timestamp instead of sampling the ledger clock.
func (c Conf) WithPublishTime(unixTimestamp int64) Conf {
	c.PublishTime = unixTimestamp
	return c
}

// WithSlot pins the publish slot instead of sampling the ledger clock.
func (c Conf) WithSlot(slot uint64) Conf {
	c.Slot = slot
	return c
}

// WithEMA sets the exponential moving average shadow values.
func (c Conf) WithEMA(value, confidence float64) Conf {
	c.EMAValue = &value
	c.EMAConfidence = &confidence
	return c
}

// WithDescription sets the feed description (e.g. "SOL / USD").
func (c Conf) WithDescription(description string) Conf {
	c.Description = description
	return c
}

// StaleBy sets the publish time to seconds before now.
func (c Conf) StaleBy(seconds, now int64) Conf {
	c.PublishTime = now - seconds
	return c
}

// PriceUSD returns the price value.
func (c Conf) PriceUSD() float64 {
	return c.Value
}

// ConfidenceUSD returns the confidence value.
func (c Conf) ConfidenceUSD() float64 {
	return c.Confidence
}

// Raw returns the price and confidence scaled by the configured exponent.
func (c Conf) Raw() (int64, uint64, error) {
	price, err := ToRaw(c.Value, c.Exponent)
	if err != nil {
		return 0, 0, fmt.Errorf("price: %w", err)
	}
	conf, err := ToRawConfidence(c.Confidence, c.Exponent)
	if err != nil {
		return 0, 0, fmt.Errorf("confidence: %w", err)
	}
	return price, conf, nil
}

// RawEMA returns the EMA price and confidence scaled by the configured exponent.
func (c Conf) RawEMA() (int64, uint64, error) {
	value, confidence := c.Value, c.Confidence
	if c.EMAValue != nil {
		value = *c.EMAValue
	}
	if c.EMAConfidence != nil {
		confidence = *c.EMAConfidence
	}
	price, err := ToRaw(value, c.Exponent)
	if err != nil {
		return 0, 0, fmt.Errorf("ema price: %w", err)
	}
	conf, err := ToRawConfidence(confidence, c.Exponent)
	if err != nil {
		return 0, 0, fmt.Errorf("ema confidence: %w", err)
	}
	return price, conf, nil
}

// Validate checks the fields that do not depend on a provider layout.
func (c Conf) Validate() error {
	if c.Decimals > MaxDecimals {
		return Invalidf("decimals %d exceeds %d", c.Decimals, MaxDecimals)
	}
	if err := checkExponent(c.Exponent); err != nil {
		return err
	}
	if c.Confidence < 0 {
		return Invalidf("confidence %v is negative", c.Confidence)
	}
	if len(c.Description) > MaxDescriptionLength {
		return Invalidf("description exceeds %d bytes", MaxDescriptionLength)
	}
	return nil
}

// Timestamps resolves the publish time and slot against the ledger clock.
func (c Conf) Timestamps(clock Clock) (int64, uint64) {
	ts, slot := c.PublishTime, c.Slot
	if ts == 0 {
		ts = clock.UnixTimestamp
	}
	if slot == 0 {
		slot = clock.Slot
	}
	return ts, slot
}
