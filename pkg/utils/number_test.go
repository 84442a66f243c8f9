package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1000", 1000},
		{"50.25", 50.25},
		{"1,234.50", 1234.50},
		{"  12,000  ", 12000},
		{"-500", -500},
		{"", 0},
		{"   ", 0},
		{"not-a-number", 0},
		{"12.3.4", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseFloat(tc.in), "input %q", tc.in)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_500_000_000, "$2.50B"},
		{50_250_000, "$50.25M"},
		{50_250, "$50.2K"},
		{999.99, "$999.99"},
		{0, "$0.00"},
		{-1_500_000, "$-1.50M"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatMoney(tc.in), "input %v", tc.in)
	}
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-05-01"))
	assert.Error(t, ValidateDate("05/01/2024"))
	assert.Error(t, ValidateDate("2024-13-01"))
	assert.Error(t, ValidateDate(""))
}
