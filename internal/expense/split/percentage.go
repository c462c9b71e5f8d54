package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/money"
)

var oneHundred = decimal.NewFromInt(100)

// PercentageStrategy divides the expense according to per-participant
// percentages. Percentages must sum to exactly 100; there is no tolerance,
// the comparison is an exact decimal equality. Rounding remainders from the
// per-share truncation are distributed like the equal split's residual.
type PercentageStrategy struct{}

func (s *PercentageStrategy) Policy() Policy {
	return PolicyPercentage
}

func (s *PercentageStrategy) Validate(total money.Money, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return fmt.Errorf("%w: user %d", ErrMissingPercentage, p.UserID)
		}
		if !p.Percentage.IsPositive() || p.Percentage.GreaterThan(oneHundred) {
			return fmt.Errorf("%w: user %d has %s", ErrPercentageOutOfRange, p.UserID, p.Percentage)
		}
		sum = sum.Add(*p.Percentage)
	}
	if !sum.Equal(oneHundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidPercentages, sum)
	}
	return nil
}

func (s *PercentageStrategy) Calculate(total money.Money, payerID int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	ordered := sortByUserID(participants)
	shares := make([]Share, len(ordered))
	for i, p := range ordered {
		shares[i] = Share{UserID: p.UserID, Amount: total.Percent(*p.Percentage)}
	}

	// Truncated shares can only undershoot the total, never overshoot, so
	// the residual is non-negative and fits the cent-by-cent distribution.
	distributeResidual(shares, total)

	if err := checkShares(shares, total); err != nil {
		return nil, err
	}
	return shares, nil
}
