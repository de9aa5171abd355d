package editor

import (
	"regexp"
	"strings"
)

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShapeDateInput normalizes raw date-field text into MM/DD/YYYY as
// digits accumulate. Once the current value holds 8 digits, further
// insertion is rejected outright instead of shifting existing digits;
// pasting a longer string into a shorter value truncates to 8 digits.
func ShapeDateInput(current, input string) string {
	digits := digitsOf(input)

	if len(digitsOf(current)) == 8 && len(digits) > 8 {
		return current
	}

	if len(digits) > 8 {
		digits = digits[:8]
	}

	switch {
	case len(digits) <= 2:
		return digits
	case len(digits) <= 4:
		return digits[:2] + "/" + digits[2:]
	default:
		return digits[:2] + "/" + digits[2:4] + "/" + digits[4:]
	}
}
