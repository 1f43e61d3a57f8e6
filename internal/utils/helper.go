package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegex = regexp.MustCompile(`[^0-9]+`)

// NormalizePhone strips separators and formatting from a phone number,
// keeping a single leading + when present.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	plus := strings.HasPrefix(trimmed, "+")
	digits := nonDigitRegex.ReplaceAllString(trimmed, "")
	if digits == "" {
		return ""
	}

	if plus {
		return "+" + digits
	}
	return digits
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func BoolPtr(b bool) *bool {
	return &b
}
