package split

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/money"
)

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func amt(s string) *money.Money {
	m := money.MustFromString(s)
	return &m
}

func equalParticipants(n int) []Participant {
	ps := make([]Participant, n)
	for i := range ps {
		ps[i] = Participant{UserID: int64(i + 1)}
	}
	return ps
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, policy := range []Policy{PolicyEqual, PolicyPercentage, PolicyExact} {
		s, err := f.Create(policy)
		require.NoError(t, err)
		assert.Equal(t, policy, s.Policy())
	}

	_, err := f.CreateFromString("HALVSIES")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestEqualSumInvariant(t *testing.T) {
	amounts := []string{"100.00", "99.99", "0.13", "7.77", "1234.56", "10.01"}

	for _, amount := range amounts {
		for n := 1; n <= 12; n++ {
			t.Run(fmt.Sprintf("%s among %d", amount, n), func(t *testing.T) {
				total := money.MustFromString(amount)
				shares, err := (&EqualStrategy{}).Calculate(total, 1, equalParticipants(n))
				require.NoError(t, err)
				require.Len(t, shares, n)

				sum := money.Zero()
				for _, s := range shares {
					sum = sum.Add(s.Amount)
				}
				assert.True(t, sum.Equal(total), "sum %s != total %s", sum, total)
			})
		}
	}
}

func TestEqualFairness(t *testing.T) {
	total := money.MustFromString("100.00")
	shares, err := (&EqualStrategy{}).Calculate(total, 1, equalParticipants(3))
	require.NoError(t, err)

	min, max := shares[0].Amount, shares[0].Amount
	for _, s := range shares[1:] {
		if s.Amount.LessThan(min) {
			min = s.Amount
		}
		if s.Amount.GreaterThan(max) {
			max = s.Amount
		}
	}
	// No participant is more than one cent apart from another.
	assert.True(t, max.Sub(min).Cmp(money.Unit()) <= 0)
}

func TestEqualResidualGoesToLowestUserIDs(t *testing.T) {
	total := money.MustFromString("100.00")
	// Deliberately unordered input: the result must still be sorted and
	// deterministic, with the spare cent on the lowest user id.
	participants := []Participant{{UserID: 9}, {UserID: 4}, {UserID: 7}}

	shares, err := (&EqualStrategy{}).Calculate(total, 4, participants)
	require.NoError(t, err)

	require.Len(t, shares, 3)
	assert.Equal(t, int64(4), shares[0].UserID)
	assert.Equal(t, "33.34", shares[0].Amount.String())
	assert.Equal(t, "33.33", shares[1].Amount.String())
	assert.Equal(t, "33.33", shares[2].Amount.String())

	// The residual is exactly what truncation left over: one cent on top of
	// the floored base share.
	base := total.DivFloor(3)
	assert.True(t, total.Sub(base.MulInt(3)).Equal(money.FromCents(1)))
	assert.True(t, shares[0].Amount.Equal(base.Add(money.FromCents(1))))
}

func TestEqualShareBelowOneCent(t *testing.T) {
	// 0.02 among 4 would leave someone with a zero share.
	_, err := (&EqualStrategy{}).Calculate(money.MustFromString("0.02"), 1, equalParticipants(4))
	assert.ErrorIs(t, err, ErrNonPositiveShare)
}

func TestCommonValidation(t *testing.T) {
	total := money.MustFromString("10.00")

	_, err := (&EqualStrategy{}).Calculate(total, 1, nil)
	assert.ErrorIs(t, err, ErrNoParticipants)

	_, err = (&EqualStrategy{}).Calculate(total, 1, []Participant{{UserID: 2}, {UserID: 2}})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)

	_, err = (&EqualStrategy{}).Calculate(money.Zero(), 1, equalParticipants(2))
	assert.ErrorIs(t, err, ErrNonPositiveTotal)
}

func TestPercentageShares(t *testing.T) {
	total := money.MustFromString("100.00")
	participants := []Participant{
		{UserID: 1, Percentage: pct("40")},
		{UserID: 2, Percentage: pct("60")},
	}

	shares, err := (&PercentageStrategy{}).Calculate(total, 1, participants)
	require.NoError(t, err)

	assert.Equal(t, "40.00", shares[0].Amount.String())
	assert.Equal(t, "60.00", shares[1].Amount.String())
}

func TestPercentageResidualDistribution(t *testing.T) {
	// Three-way thirds of 100.00 truncate to 33.33 each; the leftover cent
	// must land somewhere so the sum stays exact.
	total := money.MustFromString("100.00")
	participants := []Participant{
		{UserID: 1, Percentage: pct("33.34")},
		{UserID: 2, Percentage: pct("33.33")},
		{UserID: 3, Percentage: pct("33.33")},
	}

	shares, err := (&PercentageStrategy{}).Calculate(total, 1, participants)
	require.NoError(t, err)

	sum := money.Zero()
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	assert.True(t, sum.Equal(total))
}

func TestPercentageValidation(t *testing.T) {
	total := money.MustFromString("50.00")

	tests := []struct {
		name         string
		participants []Participant
		wantErr      error
	}{
		{
			name:         "missing percentage",
			participants: []Participant{{UserID: 1, Percentage: pct("50")}, {UserID: 2}},
			wantErr:      ErrMissingPercentage,
		},
		{
			name: "does not sum to 100",
			participants: []Participant{
				{UserID: 1, Percentage: pct("50")},
				{UserID: 2, Percentage: pct("49.99")},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name: "no tolerance above 100",
			participants: []Participant{
				{UserID: 1, Percentage: pct("50")},
				{UserID: 2, Percentage: pct("50.01")},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name: "zero percentage",
			participants: []Participant{
				{UserID: 1, Percentage: pct("0")},
				{UserID: 2, Percentage: pct("100")},
			},
			wantErr: ErrPercentageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&PercentageStrategy{}).Calculate(total, 1, tt.participants)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExactShares(t *testing.T) {
	total := money.MustFromString("75.50")
	participants := []Participant{
		{UserID: 2, Amount: amt("25.50")},
		{UserID: 1, Amount: amt("50.00")},
	}

	shares, err := (&ExactStrategy{}).Calculate(total, 1, participants)
	require.NoError(t, err)

	require.Len(t, shares, 2)
	assert.Equal(t, int64(1), shares[0].UserID)
	assert.Equal(t, "50.00", shares[0].Amount.String())
	assert.Equal(t, "25.50", shares[1].Amount.String())
}

func TestExactValidation(t *testing.T) {
	total := money.MustFromString("75.50")

	_, err := (&ExactStrategy{}).Calculate(total, 1, []Participant{
		{UserID: 1, Amount: amt("50.00")},
		{UserID: 2, Amount: amt("25.49")},
	})
	assert.ErrorIs(t, err, ErrInvalidExactAmounts)

	_, err = (&ExactStrategy{}).Calculate(total, 1, []Participant{
		{UserID: 1, Amount: amt("75.50")},
		{UserID: 2, Amount: amt("0")},
	})
	assert.ErrorIs(t, err, ErrNonPositiveShare)

	_, err = (&ExactStrategy{}).Calculate(total, 1, []Participant{
		{UserID: 1, Amount: amt("75.50")},
		{UserID: 2},
	})
	assert.ErrorIs(t, err, ErrMissingExactAmount)
}

func TestCalculateIsDeterministic(t *testing.T) {
	total := money.MustFromString("10.00")
	participants := []Participant{{UserID: 3}, {UserID: 1}, {UserID: 2}}

	first, err := (&EqualStrategy{}).Calculate(total, 1, participants)
	require.NoError(t, err)
	second, err := (&EqualStrategy{}).Calculate(total, 1, participants)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
