package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/expense/split"
	"github.com/tallyhq/tally/internal/money"
)

// Expense represents a recorded purchase. Its amount is immutable once
// splits exist; the splits are derived from it.
type Expense struct {
	ID      int64       `json:"id"`
	GroupID *int64      `json:"group_id,omitempty"`
	PayerID int64       `json:"payer_id"`
	Title   string      `json:"title"`
	Amount  money.Money `json:"amount"`
	PaidAt  time.Time   `json:"paid_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// Split is one participant's share of one expense. (expense_id, user_id) is
// unique. Amount is immutable after creation; IsPaid only ever flips from
// false to true, and only the settlement processor does that.
type Split struct {
	ID        int64       `json:"id"`
	ExpenseID int64       `json:"expense_id"`
	UserID    int64       `json:"user_id"`
	Amount    money.Money `json:"amount"`
	IsPaid    bool        `json:"is_paid"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}

// ExpenseWithSplits combines an expense with its ledger rows.
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}

// SplitParticipant is the wire form of one participant in a split request.
type SplitParticipant struct {
	UserID     int64            `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE splits
	Amount     *money.Money     `json:"amount,omitempty"`     // For EXACT splits
}

// ToParticipant converts to the split package's input type.
func (p *SplitParticipant) ToParticipant() split.Participant {
	return split.Participant{
		UserID:     p.UserID,
		Percentage: p.Percentage,
		Amount:     p.Amount,
	}
}
