package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactAddition(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 must be exactly 0.3.
	a := MustFromString("0.1")
	b := MustFromString("0.2")

	assert.True(t, a.Add(b).Equal(MustFromString("0.3")))
}

func TestConstructorsAgree(t *testing.T) {
	assert.True(t, FromCents(1234).Equal(MustFromString("12.34")))
	assert.True(t, FromDecimal(decimal.NewFromInt(5)).Equal(MustFromString("5.00")))
	assert.True(t, Unit().MulInt(100).Equal(MustFromString("1.00")))
	assert.True(t, FromCents(0).Equal(Zero()))
}

func TestSubAndNeg(t *testing.T) {
	owed := MustFromString("60")
	owes := MustFromString("25")

	net := owed.Sub(owes)
	assert.Equal(t, "35.00", net.String())
	assert.Equal(t, "-35.00", net.Neg().String())
}

func TestDivFloor(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int64
		want   string
	}{
		{"terminates evenly", "100.00", 2, "50.00"},
		{"truncates repeating", "100.00", 3, "33.33"},
		{"truncates below a cent", "0.05", 4, "0.01"},
		{"single participant", "19.99", 1, "19.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustFromString(tt.amount)
			assert.Equal(t, tt.want, m.DivFloor(tt.n).String())
		})
	}
}

func TestPercentTruncates(t *testing.T) {
	m := MustFromString("100.01")
	third := decimal.RequireFromString("33.33")

	// 100.01 * 33.33 / 100 = 33.333333 -> truncated, never rounded up
	assert.Equal(t, "33.33", m.Percent(third).String())
}

func TestSum(t *testing.T) {
	total := Sum(MustFromString("33.34"), MustFromString("33.33"), MustFromString("33.33"))
	assert.True(t, total.Equal(MustFromString("100.00")))
}

func TestFromStringRejectsGarbage(t *testing.T) {
	_, err := FromString("ten dollars")
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	m := MustFromString("1234.56")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"1234.56"`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))
}
