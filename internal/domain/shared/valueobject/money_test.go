package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), AUD)
	require.NoError(t, err)
	assert.Equal(t, AUD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))

	_, err = NewMoney(decimal.NewFromInt(100), "")
	assert.Error(t, err)
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyAUDFromFloat(100.50)
	b := NewMoneyAUDFromFloat(49.50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(51)))

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoney_ApplyPercent(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		pct      int64
		expected string
	}{
		{"full", 200, 100, "200"},
		{"half", 200, 50, "100"},
		{"zero", 200, 0, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMoneyAUDFromFloat(tc.amount).ApplyPercent(decimal.NewFromInt(tc.pct))
			expected, _ := decimal.NewFromString(tc.expected)
			assert.True(t, m.Amount().Equal(expected), "got %s", m.Amount())
		})
	}
}

func TestMoney_GSTComponent(t *testing.T) {
	// $30,000 GST-inclusive carries $2,727.27 of GST at the 10% rate
	m := NewMoneyAUDFromFloat(30000)
	gst := m.GSTComponent()
	assert.Equal(t, "2727.27", gst.Amount().StringFixed(2))

	ex := m.ExGST()
	assert.Equal(t, "27272.73", ex.Amount().StringFixed(2))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyAUDFromFloat(1250.5)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "AUD 19.99", NewMoneyAUDFromFloat(19.99).String())
}
