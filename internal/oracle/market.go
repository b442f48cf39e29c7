package oracle

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// CrashConfidenceFactor widens the confidence interval after a crash.
	CrashConfidenceFactor = 5
	// DepegConfidenceBase is the minimum confidence after a depeg.
	DepegConfidenceBase = 0.001
)

func crashMultiplier(percent float64) (decimal.Decimal, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return decimal.Zero, Invalidf("crash percent %v outside [0, 100]", percent)
	}
	p, err := Decimal(percent)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(1).Sub(p.Div(decimal.NewFromInt(100))), nil
}

// CrashPrice returns price * (1 - percent/100).
func CrashPrice(price, percent float64) (float64, error) {
	m, err := crashMultiplier(percent)
	if err != nil {
		return 0, err
	}
	d, err := Decimal(price)
	if err != nil {
		return 0, err
	}
	return d.Mul(m).InexactFloat64(), nil
}

// CrashRaw applies CrashPrice to a fixed-point price, rounding half away from zero.
func CrashRaw(raw int64, percent float64) (int64, error) {
	m, err := crashMultiplier(percent)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromInt(raw).Mul(m).Round(0).IntPart(), nil
}

// CrashConfidence returns the widened confidence after a crash.
func CrashConfidence(confidence float64) float64 {
	return confidence * CrashConfidenceFactor
}

// CrashRawConfidence widens a fixed-point confidence, saturating at the maximum.
func CrashRawConfidence(raw uint64) uint64 {
	if raw > math.MaxUint64/CrashConfidenceFactor {
		return math.MaxUint64
	}
	return raw * CrashConfidenceFactor
}

// DepegConfidence returns the confidence written by a depeg to target:
// |1 - target| * 0.1 + 0.001.
func DepegConfidence(target float64) float64 {
	return math.Abs(1-target)*0.1 + DepegConfidenceBase
}
