package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnits_Format(t *testing.T) {
	tests := []struct {
		in     MinorUnits
		places int32
		want   string
	}{
		{1500, 2, "15.00"},
		{150050, 2, "1500.50"},
		{7, 2, "0.07"},
		{0, 2, "0.00"},
		{1234, 0, "1234"},
		{1234, 3, "1.234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Format(tt.places))
	}
}

func TestMinorUnits_Mul(t *testing.T) {
	tests := []struct {
		name string
		m    MinorUnits
		qty  int64
		want MinorUnits
		ok   bool
	}{
		{"plain", 500, 3, 1500, true},
		{"zero price", 0, math.MaxInt64, 0, true},
		{"max fits", math.MaxInt64, 1, math.MaxInt64, true},
		{"wraps", math.MaxInt64/2 + 1, 2, 0, false},
		{"high word", math.MaxInt64, math.MaxInt64, 0, false},
		{"negative price", -1, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.m.Mul(tt.qty)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, MinorUnits(-1).IsNegative())
}

func TestAddInt64_Overflow(t *testing.T) {
	sum, ok := AddInt64(math.MaxInt64-1, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), sum)

	_, ok = AddInt64(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = AddInt64(math.MinInt64, -1)
	assert.False(t, ok)

	_, ok = MinorUnits(math.MaxInt64).Add(1)
	assert.False(t, ok)
}
