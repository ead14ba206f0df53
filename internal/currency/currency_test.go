package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		prefix string
		digits string
	}{
		{"pkr grouping", 1150000, "PKR", "Rs", "1,150,000"},
		{"default currency", 20000, "", "Rs", "20,000"},
		{"lowercase code", 240000, "pkr", "Rs", "240,000"},
		{"usd cents", 1234.5, "USD", "$", "1,234.50"},
		{"other iso", 99, "EUR", "EUR", "99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.amount, tt.code)
			require.NoError(t, err)
			assert.Regexp(t, "^"+tt.prefix, got)
			assert.Contains(t, got, tt.digits)
		})
	}
}

func TestFormat_Negative(t *testing.T) {
	got, err := Format(-5, "USD")
	require.NoError(t, err)
	assert.Regexp(t, `^-\$`, got)
	assert.Contains(t, got, "5.00")
}

func TestFormat_NaNIsZero(t *testing.T) {
	got, err := Format(math.NaN(), "PKR")
	require.NoError(t, err)
	assert.Contains(t, got, "0")
	assert.NotContains(t, got, "NaN")
}

func TestFormat_UnknownCurrency(t *testing.T) {
	_, err := Format(10, "ZZQ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	assert.NotPanics(t, func() {
		assert.Contains(t, MustFormat(1500, "ZZQ"), "1,500")
	})
}

func TestValidate(t *testing.T) {
	code, err := Validate(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	code, err = Validate("")
	require.NoError(t, err)
	assert.Equal(t, Default, code)
}
