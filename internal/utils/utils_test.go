package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain digits",
			input:    "08123456789",
			expected: "08123456789",
		},
		{
			name:     "Spaces and dashes",
			input:    "0812-345 6789",
			expected: "08123456789",
		},
		{
			name:     "International prefix",
			input:    "+92 300 1234567",
			expected: "+923001234567",
		},
		{
			name:     "Parentheses",
			input:    "(0812) 3456789",
			expected: "08123456789",
		},
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
		{
			name:     "No digits",
			input:    "n/a",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestPointerHelpers(t *testing.T) {
	s := "hello"
	assert.Equal(t, &s, StrPtr("hello"))
	assert.Equal(t, "hello", PtrString(&s))
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, 1.5, *Float64Ptr(1.5))
	assert.True(t, *BoolPtr(true))
}
