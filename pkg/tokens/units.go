package tokens

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a human-readable decimal amount into the token's
// integer unit given its decimals, exactly. "1.5" with 18 decimals becomes
// 1500000000000000000. More fraction digits than the token supports is an
// error rather than a silent truncation.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if strings.Contains(frac, ".") {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	// Right-pad the fraction to the token's precision and parse the
	// concatenation as one integer.
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	return value, nil
}

// FormatUnits renders an integer token amount as a decimal string using
// the token's decimals. Trailing fraction zeros are trimmed; parsing the
// result with the same decimals reproduces the input exactly.
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}

	v := new(big.Int).Abs(value)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(v, scale, new(big.Int))

	sign := ""
	if value.Sign() < 0 {
		sign = "-"
	}

	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return sign + whole.String() + "." + fracStr
}

// IsPositiveDecimal reports whether s is a plain decimal number greater
// than zero: digits with at most one dot, no signs, fractions, or
// exponents. Used for input validation before any decimals are known.
func IsPositiveDecimal(s string) bool {
	whole, frac, hasDot := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" && frac == "" {
		return false
	}
	if hasDot && frac == "" {
		return false
	}

	positive := false
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
			if r != '0' {
				positive = true
			}
		}
	}
	return positive
}
