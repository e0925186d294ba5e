package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundCurrency(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"12.3456", "12.35"},
		{"12.344", "12.34"},
		{"12", "12"},
		{"-0.005", "-0.01"},
	}
	for _, tc := range testCases {
		got := RoundCurrency(decimal.RequireFromString(tc.in))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
			"RoundCurrency(%s): expected %s, got %s", tc.in, tc.expected, got.String())
	}
}
