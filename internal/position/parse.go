package position

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber reads the longest leading decimal number in s, so "12.5 USDT" gives 12.5.
// Leading whitespace is skipped. ok is false when s does not start with a number.
func parseNumber(s string) (float64, bool) {
	prefix := numericPrefix(strings.TrimSpace(s))
	if prefix == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return 0, false
	}
	if d.IsZero() {
		return 0, true
	}

	// Magnitude is checked before conversion; a huge exponent would otherwise expand into a
	// power-of-ten big.Int.
	magnitude := int64(d.Exponent()) + int64(len(d.Abs().Coefficient().String()))
	if magnitude > maxMagnitude {
		return 0, false
	}
	if magnitude < minMagnitude {
		return 0, true
	}

	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Decimal magnitudes outside float64 range: above overflows, below rounds to zero.
const (
	maxMagnitude = 310
	minMagnitude = -330
)

// numericPrefix returns the longest prefix of s of the form [+-]digits[.digits][e[+-]digits].
// A lone sign or dot yields "". A trailing dot is not part of the number.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := scanDigits(s, i)
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = scanDigits(s, i+1)
		if fracDigits > 0 {
			i += 1 + fracDigits
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return ""
	}

	// Exponent only counts when digits follow it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := scanDigits(s, j); n > 0 {
			i = j + n
		}
	}

	prefix := s[:i]
	if intDigits == 0 {
		// ".5" and "-.5" need an integer part.
		unsigned := strings.TrimLeft(prefix, "+-")
		prefix = prefix[:len(prefix)-len(unsigned)] + "0" + unsigned
	}
	return prefix
}

func scanDigits(s string, from int) int {
	n := 0
	for from+n < len(s) && s[from+n] >= '0' && s[from+n] <= '9' {
		n++
	}
	return n
}
