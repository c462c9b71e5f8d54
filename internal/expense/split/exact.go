package split

import (
	"fmt"

	"github.com/tallyhq/tally/internal/money"
)

// ExactStrategy takes per-participant amounts verbatim. The amounts must be
// positive and sum exactly to the expense total.
type ExactStrategy struct{}

func (s *ExactStrategy) Policy() Policy {
	return PolicyExact
}

func (s *ExactStrategy) Validate(total money.Money, participants []Participant) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := money.Zero()
	for _, p := range participants {
		if p.Amount == nil {
			return fmt.Errorf("%w: user %d", ErrMissingExactAmount, p.UserID)
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: user %d supplied %s", ErrNonPositiveShare, p.UserID, p.Amount)
		}
		sum = sum.Add(*p.Amount)
	}
	if !sum.Equal(total) {
		return fmt.Errorf("%w: amounts sum to %s, expense is %s", ErrInvalidExactAmounts, sum, total)
	}
	return nil
}

func (s *ExactStrategy) Calculate(total money.Money, payerID int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	ordered := sortByUserID(participants)
	shares := make([]Share, len(ordered))
	for i, p := range ordered {
		shares[i] = Share{UserID: p.UserID, Amount: *p.Amount}
	}

	if err := checkShares(shares, total); err != nil {
		return nil, err
	}
	return shares, nil
}
