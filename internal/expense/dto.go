package expense

import (
	"time"

	"github.com/tallyhq/tally/internal/money"
)

// CreateExpenseRequest represents the request to create an expense with its
// splits. PaidAt defaults to the current time when omitted.
type CreateExpenseRequest struct {
	GroupID      *int64              `json:"group_id,omitempty"`
	Title        string              `json:"title" validate:"required,min=1,max=255"`
	Amount       money.Money         `json:"amount" validate:"required"`
	PaidAt       *time.Time          `json:"paid_at,omitempty"`
	SplitPolicy  string              `json:"split_policy" validate:"required,oneof=EQUAL PERCENTAGE EXACT"`
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1"`
}

// ExpenseResponse represents the response for an expense.
type ExpenseResponse struct {
	ID            int64            `json:"id"`
	GroupID       *int64           `json:"group_id,omitempty"`
	PayerID       int64            `json:"payer_id"`
	PayerUsername string           `json:"payer_username,omitempty"`
	Title         string           `json:"title"`
	Amount        money.Money      `json:"amount"`
	PaidAt        string           `json:"paid_at"`
	Splits        []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a single split.
type SplitResponse struct {
	ID        int64       `json:"id"`
	ExpenseID int64       `json:"expense_id"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Amount    money.Money `json:"amount"`
	IsPaid    bool        `json:"is_paid"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO.
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PayerID:       e.PayerID,
		PayerUsername: e.PayerUsername,
		Title:         e.Title,
		Amount:        e.Amount,
		PaidAt:        e.PaidAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO.
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		Username:  s.Username,
		Amount:    s.Amount,
		IsPaid:    s.IsPaid,
	}
}

// ToResponse converts an ExpenseWithSplits to a response with nested splits.
func (e *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := e.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}
