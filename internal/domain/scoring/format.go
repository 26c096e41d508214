package scoring

import (
	"strconv"
	"strings"
)

// Exponent bounds outside of which floats print in scientific notation.
const (
	minPlainExponent = -4
	maxPlainExponent = 16
)

// formatFloat prints v as the shortest decimal that round-trips, always
// carrying a fractional part (95 -> "95.0"). Very large or very small
// magnitudes switch to exponent form ("1e+16", "1e-05").
func formatFloat(v float64) string {
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	if i := strings.IndexByte(sci, 'e'); i >= 0 {
		exp, err := strconv.Atoi(sci[i+1:])
		if err == nil && (exp < minPlainExponent || exp >= maxPlainExponent) {
			return sci
		}
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatFixed1 prints v with exactly one decimal, rounding half to even on
// the exact binary value.
func formatFixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// round1 rounds v to one decimal place using the same rule as formatFixed1.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(formatFixed1(v), 64)
	if err != nil {
		return v
	}
	return r
}
