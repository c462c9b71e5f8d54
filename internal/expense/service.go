package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/expense/split"
	"github.com/tallyhq/tally/internal/money"
)

// Common errors
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrNotPayer            = errors.New("only the payer can delete an expense")
	ErrCannotDeleteExpense = errors.New("cannot delete expense with paid splits")

	// ErrSplitSumMismatch signals an internal invariant violation: the
	// calculator produced shares that do not sum to the expense amount.
	// It is never corrected silently.
	ErrSplitSumMismatch = errors.New("computed splits do not sum to the expense amount")
)

// Repository is the persistence contract the expense service depends on.
type Repository interface {
	CreateExpenseWithSplits(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error)
	GetExpenseByID(ctx context.Context, id int64) (*Expense, error)
	GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error)
	ListExpensesByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error)
	ListExpensesByPayerID(ctx context.Context, payerID int64, limit, offset int) ([]*Expense, int, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// Notifier receives ledger events. Notification failures never fail the
// ledger write; they are logged and dropped.
type Notifier interface {
	SplitAssigned(ctx context.Context, recipientID, expenseID int64, title string, amount money.Money) error
}

// Service handles expense business logic.
type Service struct {
	repo         Repository
	splitFactory *split.Factory
	notifier     Notifier
}

// NewService creates a new expense service. notifier may be nil.
func NewService(repo Repository, splitFactory *split.Factory, notifier Notifier) *Service {
	return &Service{
		repo:         repo,
		splitFactory: splitFactory,
		notifier:     notifier,
	}
}

// CreateExpense computes the splits for the requested policy and persists
// the expense together with all of its splits in one atomic batch.
func (s *Service) CreateExpense(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	strategy, err := s.splitFactory.CreateFromString(req.SplitPolicy)
	if err != nil {
		return nil, err
	}

	participants := make([]split.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = p.ToParticipant()
	}

	shares, err := strategy.Calculate(req.Amount, payerID, participants)
	if err != nil {
		return nil, err
	}

	// Re-check the sum invariant before anything is written. A mismatch
	// here is a calculator bug and aborts the operation.
	sum := money.Zero()
	for _, share := range shares {
		sum = sum.Add(share.Amount)
	}
	if !sum.Equal(req.Amount) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrSplitSumMismatch, sum, req.Amount)
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	exp := &Expense{
		GroupID: req.GroupID,
		PayerID: payerID,
		Title:   req.Title,
		Amount:  req.Amount,
		PaidAt:  paidAt,
	}
	splits := make([]*Split, len(shares))
	for i, share := range shares {
		splits[i] = &Split{UserID: share.UserID, Amount: share.Amount}
	}

	created, err := s.repo.CreateExpenseWithSplits(ctx, exp, splits)
	if err != nil {
		return nil, err
	}

	s.notifyParticipants(ctx, created)

	return created, nil
}

func (s *Service) notifyParticipants(ctx context.Context, created *ExpenseWithSplits) {
	if s.notifier == nil {
		return
	}
	for _, sp := range created.Splits {
		if sp.UserID == created.Expense.PayerID {
			continue
		}
		err := s.notifier.SplitAssigned(ctx, sp.UserID, created.Expense.ID, created.Expense.Title, sp.Amount)
		if err != nil {
			slog.Warn("failed to notify participant",
				"user_id", sp.UserID,
				"expense_id", created.Expense.ID,
				"error", err,
			)
		}
	}
}

// GetExpenseByID retrieves an expense with its splits.
func (s *Service) GetExpenseByID(ctx context.Context, id int64) (*ExpenseWithSplits, error) {
	exp, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{Expense: exp, Splits: splits}, nil
}

// ListByGroupID retrieves a page of a group's expenses.
func (s *Service) ListByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	limit, offset := pageBounds(page, perPage)
	return s.repo.ListExpensesByGroupID(ctx, groupID, limit, offset)
}

// ListByPayerID retrieves a page of the expenses a user paid for.
func (s *Service) ListByPayerID(ctx context.Context, payerID int64, page, perPage int) ([]*Expense, int, error) {
	limit, offset := pageBounds(page, perPage)
	return s.repo.ListExpensesByPayerID(ctx, payerID, limit, offset)
}

// DeleteExpense removes an expense and its splits. Only the payer may
// delete, and only while no split has been settled.
func (s *Service) DeleteExpense(ctx context.Context, id, userID int64) error {
	exp, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if exp == nil {
		return ErrExpenseNotFound
	}
	if exp.PayerID != userID {
		return ErrNotPayer
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return err
	}
	for _, sp := range splits {
		if sp.IsPaid {
			return ErrCannotDeleteExpense
		}
	}

	return s.repo.DeleteExpense(ctx, id)
}

func pageBounds(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return perPage, (page - 1) * perPage
}
