package tokens

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{name: "whole ether", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional ether", amount: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "sub-unit", amount: "0.000000000000000001", decimals: 18, want: "1"},
		{name: "zero", amount: "0", decimals: 18, want: "0"},
		{name: "six decimals", amount: "12.34", decimals: 6, want: "12340000"},
		{name: "zero decimals", amount: "42", decimals: 0, want: "42"},
		{name: "leading dot", amount: ".5", decimals: 2, want: "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseUnitsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
	}{
		{name: "empty", amount: "", decimals: 18},
		{name: "negative", amount: "-1", decimals: 18},
		{name: "not a number", amount: "abc", decimals: 18},
		{name: "two dots", amount: "1.2.3", decimals: 18},
		{name: "hex digits", amount: "0x10", decimals: 18},
		{name: "too much precision", amount: "0.1234567", decimals: 6},
		{name: "fraction with zero decimals", amount: "1.5", decimals: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnits(tt.amount, tt.decimals)
			assert.Error(t, err)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals uint8
		want     string
	}{
		{name: "whole", value: "1000000000000000000", decimals: 18, want: "1"},
		{name: "fraction trimmed", value: "1500000000000000000", decimals: 18, want: "1.5"},
		{name: "tiny", value: "1", decimals: 18, want: "0.000000000000000001"},
		{name: "zero", value: "0", decimals: 18, want: "0"},
		{name: "zero decimals", value: "42", decimals: 0, want: "42"},
		{name: "nil value", value: "", decimals: 18, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v *big.Int
			if tt.value != "" {
				var ok bool
				v, ok = new(big.Int).SetString(tt.value, 10)
				require.True(t, ok)
			}
			assert.Equal(t, tt.want, FormatUnits(v, tt.decimals))
		})
	}
}

// Formatting an integer balance and re-parsing it with the same decimals
// must reproduce the original value exactly.
func TestUnitsRoundTrip(t *testing.T) {
	values := []string{"0", "1", "999", "1000000", "1500000000000000000", "123456789123456789123456789"}
	decimals := []uint8{0, 1, 6, 8, 18}

	for _, value := range values {
		for _, d := range decimals {
			t.Run(fmt.Sprintf("%s_%d", value, d), func(t *testing.T) {
				v, ok := new(big.Int).SetString(value, 10)
				require.True(t, ok)

				formatted := FormatUnits(v, d)
				parsed, err := ParseUnits(formatted, d)
				require.NoError(t, err)
				assert.Zero(t, v.Cmp(parsed), "round trip of %s with %d decimals gave %s", value, d, parsed)
			})
		}
	}
}

func TestIsPositiveDecimal(t *testing.T) {
	assert.True(t, IsPositiveDecimal("1"))
	assert.True(t, IsPositiveDecimal("0.5"))
	assert.True(t, IsPositiveDecimal(".5"))
	assert.True(t, IsPositiveDecimal(" 2.5 "))
	assert.False(t, IsPositiveDecimal("0"))
	assert.False(t, IsPositiveDecimal("0.0"))
	assert.False(t, IsPositiveDecimal("-1"))
	assert.False(t, IsPositiveDecimal("+1"))
	assert.False(t, IsPositiveDecimal(""))
	assert.False(t, IsPositiveDecimal("."))
	assert.False(t, IsPositiveDecimal("1."))
	assert.False(t, IsPositiveDecimal("abc"))

	// Forms big.Rat would happily parse must not slip through.
	assert.False(t, IsPositiveDecimal("3/2"))
	assert.False(t, IsPositiveDecimal("1e5"))
	assert.False(t, IsPositiveDecimal("1.2e3"))
}
