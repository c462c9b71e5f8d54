package split

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/money"
)

// Policy identifies how an expense total is divided among participants.
type Policy string

const (
	PolicyEqual      Policy = "EQUAL"
	PolicyPercentage Policy = "PERCENTAGE"
	PolicyExact      Policy = "EXACT"
)

// Participant is one member of the division. Percentage is set for
// PERCENTAGE splits, Amount for EXACT splits; EQUAL needs neither.
type Participant struct {
	UserID     int64            `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Amount     *money.Money     `json:"amount,omitempty"`
}

// Share is one participant's computed portion of the expense. The payer's
// own share is included when the payer participates in the division.
type Share struct {
	UserID int64       `json:"user_id"`
	Amount money.Money `json:"amount"`
}

// Strategy computes shares for a split policy. Implementations are pure:
// they read their inputs and return shares whose sum equals the expense
// total exactly, or an error. Persistence is the caller's concern.
type Strategy interface {
	Calculate(total money.Money, payerID int64, participants []Participant) ([]Share, error)
	Policy() Policy
	Validate(total money.Money, participants []Participant) error
}

// Factory creates the strategy for a requested policy.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(policy Policy) (Strategy, error) {
	switch policy {
	case PolicyEqual:
		return &EqualStrategy{}, nil
	case PolicyPercentage:
		return &PercentageStrategy{}, nil
	case PolicyExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}
}

// CreateFromString resolves a policy name coming off the wire.
func (f *Factory) CreateFromString(policy string) (Strategy, error) {
	return f.Create(Policy(policy))
}

var (
	ErrUnknownPolicy        = errors.New("unknown split policy")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("duplicate participant user id")
	ErrNonPositiveTotal     = errors.New("expense amount must be positive")
	ErrMissingPercentage    = errors.New("percentage required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be greater than 0 and at most 100")
	ErrInvalidPercentages   = errors.New("percentages must sum to exactly 100")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrNonPositiveShare     = errors.New("each share must be positive")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to the expense total")
)

// validateCommon enforces the rules every policy shares: at least one
// participant, no duplicate user ids, positive total.
func validateCommon(total money.Money, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !total.IsPositive() {
		return ErrNonPositiveTotal
	}
	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.UserID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateParticipant, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

// sortByUserID returns the participants ordered by ascending user id. Share
// computation and residual distribution both follow this order, which makes
// every policy deterministic for a given input set.
func sortByUserID(participants []Participant) []Participant {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UserID < sorted[j].UserID
	})
	return sorted
}

// distributeResidual hands out the difference between the expense total and
// the floored shares, one minimal unit at a time in slice order, so the sum
// invariant holds exactly. The residual is always smaller than one unit per
// participant, so no share gains more than a single cent.
func distributeResidual(shares []Share, total money.Money) {
	residual := total.Sub(sumShares(shares))
	unit := money.Unit()
	for i := 0; residual.IsPositive() && i < len(shares); i++ {
		shares[i].Amount = shares[i].Amount.Add(unit)
		residual = residual.Sub(unit)
	}
}

func sumShares(shares []Share) money.Money {
	total := money.Zero()
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

// checkShares verifies the invariants every computed split must satisfy:
// all shares positive and summing exactly to the total.
func checkShares(shares []Share, total money.Money) error {
	for _, s := range shares {
		if !s.Amount.IsPositive() {
			return fmt.Errorf("%w: user %d computed %s", ErrNonPositiveShare, s.UserID, s.Amount)
		}
	}
	if sum := sumShares(shares); !sum.Equal(total) {
		return fmt.Errorf("computed shares sum to %s, expected %s", sum, total)
	}
	return nil
}
