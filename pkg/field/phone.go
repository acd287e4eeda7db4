package field

import "strings"

const phoneDigits = 10

// Digits strips every non-digit rune.
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders up to ten digits as XXX-XXX-XXXX. A separator follows
// each complete leading group, so "987" becomes "987-".
func FormatPhone(value string) string {
	digits := Digits(value)
	if len(digits) > phoneDigits {
		digits = digits[:phoneDigits]
	}
	switch {
	case len(digits) >= 6:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	case len(digits) >= 3:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits
	}
}
