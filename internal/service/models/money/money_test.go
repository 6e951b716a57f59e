package money_test

import (
	"encoding/json"
	"testing"

	"github.com/lacarte/orderdesk/internal/service/models/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsString(t *testing.T) {
	assert.Equal(t, "27.49", money.Cents(2749).String())
	assert.Equal(t, "0.05", money.Cents(5).String())
	assert.Equal(t, "8.00", money.Cents(800).String())
	assert.Equal(t, "-2.50", money.Cents(-250).String())
}

func TestCentsMarshalJSON(t *testing.T) {
	b, err := json.Marshal(money.Cents(2500))
	require.NoError(t, err)
	assert.Equal(t, `"25.00"`, string(b))
}

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want money.Cents
	}{
		{"25.00", 2500},
		{"2.5", 250},
		{"8", 800},
		{".99", 99},
		{"-2.50", -250},
	}
	for _, tc := range cases {
		got, err := money.ParseCents(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "abc", "1.234", "1,50"} {
		_, err := money.ParseCents(bad)
		assert.ErrorIs(t, err, money.ErrInvalidAmount, bad)
	}
}

func TestParseCurrency(t *testing.T) {
	cur, err := money.ParseCurrency("EUR")
	require.NoError(t, err)
	assert.Equal(t, money.CurrencyEUR, cur)

	_, err = money.ParseCurrency("USD")
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)
}
