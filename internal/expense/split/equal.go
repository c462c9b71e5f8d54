package split

import (
	"github.com/tallyhq/tally/internal/money"
)

// EqualStrategy divides the expense into shares of equal nominal value.
// When the division does not terminate at the working scale, the leftover
// cents go to participants in ascending user-id order, so no participant
// ends up more than one minimal unit apart from another.
type EqualStrategy struct{}

func (s *EqualStrategy) Policy() Policy {
	return PolicyEqual
}

func (s *EqualStrategy) Validate(total money.Money, participants []Participant) error {
	return validateCommon(total, participants)
}

func (s *EqualStrategy) Calculate(total money.Money, payerID int64, participants []Participant) ([]Share, error) {
	if err := s.Validate(total, participants); err != nil {
		return nil, err
	}

	ordered := sortByUserID(participants)
	base := total.DivFloor(int64(len(ordered)))

	shares := make([]Share, len(ordered))
	for i, p := range ordered {
		shares[i] = Share{UserID: p.UserID, Amount: base}
	}
	distributeResidual(shares, total)

	if err := checkShares(shares, total); err != nil {
		return nil, err
	}
	return shares, nil
}
