package settlement

import (
	"github.com/tallyhq/tally/internal/money"
)

// selectForSettlement walks candidates in their given order (oldest expense
// first) and picks whole entries while they fit under the cap. An entry is
// never split into a paid fraction and an unpaid remainder: the walk stops
// at the first candidate that would exceed the cap, even if part of the cap
// is left unused. A nil cap selects every candidate.
func selectForSettlement(candidates []*Candidate, amountCap *money.Money) (splitIDs []int64, total money.Money) {
	total = money.Zero()
	for _, c := range candidates {
		if amountCap != nil && total.Add(c.Amount).GreaterThan(*amountCap) {
			break
		}
		splitIDs = append(splitIDs, c.SplitID)
		total = total.Add(c.Amount)
	}
	return splitIDs, total
}
