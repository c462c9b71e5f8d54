package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/money"
)

func entry(counterparty int64, amount string, owedToUser bool) *LedgerEntry {
	return &LedgerEntry{
		CounterpartyID: counterparty,
		Amount:         money.MustFromString(amount),
		OwedToUser:     owedToUser,
	}
}

func TestFoldUserSettlementsSingleCounterparty(t *testing.T) {
	// Expense of 100.00 split equally between payer and one other user:
	// the payer sees one counterparty owing 50.00.
	settlements := foldUserSettlements([]*LedgerEntry{
		entry(2, "50.00", true),
	})

	require.Len(t, settlements, 1)
	s := settlements[0]
	assert.Equal(t, int64(2), s.CounterpartyID)
	assert.Equal(t, "50.00", s.OwedToYou.String())
	assert.Equal(t, "0.00", s.OwedByYou.String())
	assert.Equal(t, "50.00", s.NetAmount.String())
}

func TestFoldUserSettlementsNets(t *testing.T) {
	settlements := foldUserSettlements([]*LedgerEntry{
		entry(2, "60.00", true),
		entry(2, "25.00", false),
	})

	require.Len(t, settlements, 1)
	assert.Equal(t, "60.00", settlements[0].OwedToYou.String())
	assert.Equal(t, "25.00", settlements[0].OwedByYou.String())
	assert.Equal(t, "35.00", settlements[0].NetAmount.String())
}

func TestFoldUserSettlementsSymmetry(t *testing.T) {
	// The same two unpaid splits seen from each side: A's net for B must be
	// the negation of B's net for A.
	fromA := foldUserSettlements([]*LedgerEntry{
		entry(2, "60.00", true),
		entry(2, "25.00", false),
	})
	fromB := foldUserSettlements([]*LedgerEntry{
		entry(1, "60.00", false),
		entry(1, "25.00", true),
	})

	require.Len(t, fromA, 1)
	require.Len(t, fromB, 1)
	assert.True(t, fromA[0].NetAmount.Equal(fromB[0].NetAmount.Neg()))
}

func TestFoldUserSettlementsKeepsZeroNet(t *testing.T) {
	// Offsetting unpaid debts net to zero but the counterparty still has
	// unpaid rows in both directions, so it is reported.
	settlements := foldUserSettlements([]*LedgerEntry{
		entry(2, "10.00", true),
		entry(2, "10.00", false),
	})

	require.Len(t, settlements, 1)
	assert.True(t, settlements[0].NetAmount.IsZero())
}

func TestFoldUserSettlementsEmpty(t *testing.T) {
	assert.Empty(t, foldUserSettlements(nil))
}

func TestFoldUserSettlementsOrdering(t *testing.T) {
	settlements := foldUserSettlements([]*LedgerEntry{
		entry(5, "10.00", false),
		entry(3, "40.00", true),
		entry(4, "15.00", true),
		entry(7, "15.00", true), // same net as 4: tie-broken by id
	})

	require.Len(t, settlements, 4)
	assert.Equal(t, int64(3), settlements[0].CounterpartyID)
	assert.Equal(t, int64(4), settlements[1].CounterpartyID)
	assert.Equal(t, int64(7), settlements[2].CounterpartyID)
	assert.Equal(t, int64(5), settlements[3].CounterpartyID)
}

func TestFoldPairSettlementScenario(t *testing.T) {
	// Expense of 100.00 split 40/60 with A(1) paying, plus 50.00 split
	// equally with B(2) paying: A owes 25, B owes 60, net +35 for A.
	splits := []*PairSplit{
		{SplitID: 1, ExpenseTitle: "Hotel", Amount: money.MustFromString("25.00"), PaidBy: 2, OwedBy: 1},
		{SplitID: 2, ExpenseTitle: "Flights", Amount: money.MustFromString("60.00"), PaidBy: 1, OwedBy: 2},
	}

	pair := foldPairSettlement(1, 2, splits)

	assert.Equal(t, "25.00", pair.User1OwesUser2.String())
	assert.Equal(t, "60.00", pair.User2OwesUser1.String())
	assert.Equal(t, "35.00", pair.NetAmount.String())
	assert.Equal(t, splits, pair.Splits)
}

func TestFoldPairSettlementNoDebts(t *testing.T) {
	pair := foldPairSettlement(1, 2, nil)

	assert.True(t, pair.User1OwesUser2.IsZero())
	assert.True(t, pair.User2OwesUser1.IsZero())
	assert.True(t, pair.NetAmount.IsZero())
	assert.Empty(t, pair.Splits)
}
