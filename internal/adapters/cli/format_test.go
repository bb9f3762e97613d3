package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1,234.56"},
		{-123456, "-$1,234.56"},
		{100_000_000_00, "$100,000,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCents(tt.cents))
	}
}

func TestFormatAmount_Signed(t *testing.T) {
	assert.Equal(t, "+$10.00", formatAmount(1000))
	assert.Equal(t, "-$10.00", formatAmount(-1000))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.5%", formatPercent(0.125))
}

func TestAddThousandsSeparator(t *testing.T) {
	assert.Equal(t, "999", addThousandsSeparator(999))
	assert.Equal(t, "1,000", addThousandsSeparator(1000))
	assert.Equal(t, "1,234,567", addThousandsSeparator(1234567))
}
