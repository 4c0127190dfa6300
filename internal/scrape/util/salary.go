package util

import (
	"strconv"
	"strings"
)

// FormatSalary renders "<CUR> <1,234.5> <UNIT>". Empty when value or
// currency is missing.
func FormatSalary(value float64, currency, unit string) string {
	currency = strings.TrimSpace(currency)
	if value == 0 || currency == "" {
		return ""
	}
	return strings.TrimSpace(currency + " " + FormatNumber(value) + " " + strings.TrimSpace(unit))
}

// FormatNumber groups thousands and keeps at most three fraction digits.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// SalaryRange renders "$min - $max" when both bounds are present.
func SalaryRange(lo, hi float64) string {
	if lo == 0 || hi == 0 {
		return ""
	}
	return "$" + ToString(lo) + " - $" + ToString(hi)
}
