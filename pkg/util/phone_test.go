package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"local with leading zero", "0501234567", "+972501234567"},
		{"already international", "+972501234567", "+972501234567"},
		{"country code without plus", "972501234567", "+972501234567"},
		{"with dashes", "050-123-4567", "+972501234567"},
		{"with spaces", "050 123 4567", "+972501234567"},
		{"with parentheses", "(050) 1234567", "+972501234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizePhoneNumber(tt.input))
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+972501234567"))

	assert.False(t, ValidatePhoneNumber("0501234567"), "local form is not valid")
	assert.False(t, ValidatePhoneNumber("+97250123456"), "too short")
	assert.False(t, ValidatePhoneNumber("+9725012345678"), "too long")
	assert.False(t, ValidatePhoneNumber("+97250123456a"), "non-digit")
	assert.False(t, ValidatePhoneNumber("+1501234567"), "wrong country code")
	assert.False(t, ValidatePhoneNumber(""))
}

func TestSanitizeThenValidate(t *testing.T) {
	assert.True(t, ValidatePhoneNumber(SanitizePhoneNumber("050-123-4567")))
}
