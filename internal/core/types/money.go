// Package types provides common value types.
package types

import (
	"math"
	"math/bits"

	"github.com/shopspring/decimal"
)

// MinorUnits represents a monetary value in minor currency units (cents).
// Prices and totals are stored as BIGINT, so arithmetic stays exact.
type MinorUnits int64

// Mul returns m multiplied by a quantity. ok is false when either operand
// is negative or the product does not fit in int64.
func (m MinorUnits) Mul(qty int64) (product MinorUnits, ok bool) {
	if m < 0 || qty < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(m), uint64(qty))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return MinorUnits(lo), true
}

// Add returns m + n. ok is false on int64 overflow.
func (m MinorUnits) Add(n MinorUnits) (sum MinorUnits, ok bool) {
	s, ok := AddInt64(int64(m), int64(n))
	return MinorUnits(s), ok
}

// AddInt64 returns a + b. ok is false on overflow.
func AddInt64(a, b int64) (sum int64, ok bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func (m MinorUnits) IsNegative() bool { return m < 0 }

// Major converts minor units to a decimal in major units.
// 150050 with 2 decimal places is 1500.50.
func (m MinorUnits) Major(decimalPlaces int32) decimal.Decimal {
	return decimal.New(int64(m), -decimalPlaces)
}

// Format renders m in major units with a fixed number of fractional digits.
func (m MinorUnits) Format(decimalPlaces int32) string {
	return m.Major(decimalPlaces).StringFixed(decimalPlaces)
}
