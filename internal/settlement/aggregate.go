package settlement

import (
	"sort"

	"github.com/tallyhq/tally/internal/money"
)

// foldUserSettlements groups unpaid ledger entries by counterparty and nets
// the two directions. Every counterparty with at least one unpaid entry is
// reported, including those whose offsetting debts net to exactly zero.
// Results are ordered by net amount descending (largest amount owed to the
// focal user first), then counterparty id ascending.
func foldUserSettlements(entries []*LedgerEntry) []*UserSettlement {
	byCounterparty := make(map[int64]*UserSettlement)

	for _, e := range entries {
		s, ok := byCounterparty[e.CounterpartyID]
		if !ok {
			s = &UserSettlement{
				CounterpartyID:   e.CounterpartyID,
				CounterpartyName: e.CounterpartyName,
				OwedToYou:        money.Zero(),
				OwedByYou:        money.Zero(),
			}
			byCounterparty[e.CounterpartyID] = s
		}
		if e.OwedToUser {
			s.OwedToYou = s.OwedToYou.Add(e.Amount)
		} else {
			s.OwedByYou = s.OwedByYou.Add(e.Amount)
		}
	}

	settlements := make([]*UserSettlement, 0, len(byCounterparty))
	for _, s := range byCounterparty {
		s.NetAmount = s.OwedToYou.Sub(s.OwedByYou)
		settlements = append(settlements, s)
	}

	sort.Slice(settlements, func(i, j int) bool {
		if c := settlements[i].NetAmount.Cmp(settlements[j].NetAmount); c != 0 {
			return c > 0
		}
		return settlements[i].CounterpartyID < settlements[j].CounterpartyID
	})

	return settlements
}

// foldPairSettlement sums the two directional totals for a pair of users.
// The splits slice keeps the order it was read in (ascending amount).
func foldPairSettlement(user1ID, user2ID int64, splits []*PairSplit) *PairSettlement {
	user1Owes := money.Zero()
	user2Owes := money.Zero()
	for _, s := range splits {
		if s.OwedBy == user1ID {
			user1Owes = user1Owes.Add(s.Amount)
		} else {
			user2Owes = user2Owes.Add(s.Amount)
		}
	}

	return &PairSettlement{
		User1ID:        user1ID,
		User2ID:        user2ID,
		User1OwesUser2: user1Owes,
		User2OwesUser1: user2Owes,
		NetAmount:      user2Owes.Sub(user1Owes),
		Splits:         splits,
	}
}
