package money

import (
	"testing"

	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeRoundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1",
		"2.675":  "2.68",
		"-0.505": "-0.51",
		"10":     "10",
	}
	for in, want := range cases {
		got := Quantize(decimal.RequireFromString(in))
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s -> %s, got %s", in, want, got)
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.RequireFromString("10.00"), decimal.RequireFromString("15.00"))
	assert.Equal(t, "1.50", got.StringFixed(2))
}

func TestParse(t *testing.T) {
	d, err := Parse(" 12.345 ")
	require.NoError(t, err)
	assert.Equal(t, "12.345", d.String())

	_, err = Parse("twelve")
	assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)
}

func TestParseNonNegative(t *testing.T) {
	d, err := ParseNonNegative("4.999")
	require.NoError(t, err)
	assert.Equal(t, "5.00", d.StringFixed(2))

	_, err = ParseNonNegative("-1")
	assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd ", "GBP"))
	assert.Equal(t, "GBP", NormalizeCurrency("", "GBP"))
}
