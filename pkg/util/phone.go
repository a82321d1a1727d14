package util

import (
	"strings"
	"unicode"
)

// SanitizePhoneNumber normalizes a user-entered phone number to the
// international +972 form. Spaces, dashes and parentheses are stripped and a
// leading local zero is replaced with the country prefix.
func SanitizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()

	if strings.HasPrefix(sanitized, "0") {
		sanitized = "+972" + sanitized[1:]
	} else if strings.HasPrefix(sanitized, "972") {
		sanitized = "+" + sanitized
	}
	return sanitized
}

// ValidatePhoneNumber reports whether phone is a well-formed Israeli mobile
// number in international form (+972 followed by 9 digits).
func ValidatePhoneNumber(phone string) bool {
	if !strings.HasPrefix(phone, "+972") {
		return false
	}
	if len(phone) != 13 {
		return false
	}
	for _, r := range phone[1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
