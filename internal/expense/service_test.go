package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/expense/split"
	"github.com/tallyhq/tally/internal/money"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	nextExpenseID int64
	nextSplitID   int64
	expenses      map[int64]*Expense
	splits        map[int64][]*Split
	failCreate    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		expenses: make(map[int64]*Expense),
		splits:   make(map[int64][]*Split),
	}
}

func (f *fakeRepo) CreateExpenseWithSplits(_ context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.nextExpenseID++
	exp := *e
	exp.ID = f.nextExpenseID

	rows := make([]*Split, len(splits))
	for i, s := range splits {
		f.nextSplitID++
		row := *s
		row.ID = f.nextSplitID
		row.ExpenseID = exp.ID
		rows[i] = &row
	}

	f.expenses[exp.ID] = &exp
	f.splits[exp.ID] = rows
	return &ExpenseWithSplits{Expense: &exp, Splits: rows}, nil
}

func (f *fakeRepo) GetExpenseByID(_ context.Context, id int64) (*Expense, error) {
	return f.expenses[id], nil
}

func (f *fakeRepo) GetSplitsByExpenseID(_ context.Context, expenseID int64) ([]*Split, error) {
	return f.splits[expenseID], nil
}

func (f *fakeRepo) ListExpensesByGroupID(_ context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListExpensesByPayerID(_ context.Context, payerID int64, limit, offset int) ([]*Expense, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) DeleteExpense(_ context.Context, id int64) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(f.expenses, id)
	delete(f.splits, id)
	return nil
}

type recordedNote struct {
	recipientID int64
	expenseID   int64
	amount      money.Money
}

type fakeNotifier struct {
	notes []recordedNote
}

func (f *fakeNotifier) SplitAssigned(_ context.Context, recipientID, expenseID int64, _ string, amount money.Money) error {
	f.notes = append(f.notes, recordedNote{recipientID, expenseID, amount})
	return nil
}

func newTestService(repo Repository, notifier Notifier) *Service {
	return NewService(repo, split.NewFactory(), notifier)
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	created, err := svc.CreateExpense(context.Background(), 1, &CreateExpenseRequest{
		Title:       "Dinner",
		Amount:      money.MustFromString("100.00"),
		SplitPolicy: "EQUAL",
		Participants: []*SplitParticipant{
			{UserID: 1},
			{UserID: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, created.Splits, 2)
	assert.Equal(t, "50.00", created.Splits[0].Amount.String())
	assert.Equal(t, "50.00", created.Splits[1].Amount.String())
	for _, s := range created.Splits {
		assert.False(t, s.IsPaid)
	}

	// Only the non-payer participant is notified.
	require.Len(t, notifier.notes, 1)
	assert.Equal(t, int64(2), notifier.notes[0].recipientID)
	assert.Equal(t, created.Expense.ID, notifier.notes[0].expenseID)
}

func TestCreateExpenseSumInvariant(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	total := money.MustFromString("100.01")
	created, err := svc.CreateExpense(context.Background(), 1, &CreateExpenseRequest{
		Title:       "Groceries",
		Amount:      total,
		SplitPolicy: "EQUAL",
		Participants: []*SplitParticipant{
			{UserID: 1}, {UserID: 2}, {UserID: 3},
		},
	})
	require.NoError(t, err)

	sum := money.Zero()
	for _, s := range created.Splits {
		sum = sum.Add(s.Amount)
	}
	assert.True(t, sum.Equal(total))
}

func TestCreateExpenseValidationFailsBeforeWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	_, err := svc.CreateExpense(context.Background(), 1, &CreateExpenseRequest{
		Title:        "Bad",
		Amount:       money.MustFromString("10.00"),
		SplitPolicy:  "EQUAL",
		Participants: nil,
	})
	assert.ErrorIs(t, err, split.ErrNoParticipants)
	assert.Empty(t, repo.expenses, "nothing may be persisted on validation failure")
}

func TestCreateExpensePropagatesRepoError(t *testing.T) {
	repo := newFakeRepo()
	repo.failCreate = errors.New("connection reset")
	svc := newTestService(repo, nil)

	_, err := svc.CreateExpense(context.Background(), 1, &CreateExpenseRequest{
		Title:        "Dinner",
		Amount:       money.MustFromString("10.00"),
		SplitPolicy:  "EQUAL",
		Participants: []*SplitParticipant{{UserID: 1}, {UserID: 2}},
	})
	assert.ErrorContains(t, err, "connection reset")
}

func TestDeleteExpenseRules(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateExpense(context.Background(), 1, &CreateExpenseRequest{
		Title:        "Dinner",
		Amount:       money.MustFromString("30.00"),
		SplitPolicy:  "EQUAL",
		Participants: []*SplitParticipant{{UserID: 1}, {UserID: 2}, {UserID: 3}},
	})
	require.NoError(t, err)
	id := created.Expense.ID

	// Someone other than the payer may not delete.
	assert.ErrorIs(t, svc.DeleteExpense(context.Background(), id, 2), ErrNotPayer)

	// A settled split blocks deletion.
	repo.splits[id][1].IsPaid = true
	assert.ErrorIs(t, svc.DeleteExpense(context.Background(), id, 1), ErrCannotDeleteExpense)

	repo.splits[id][1].IsPaid = false
	require.NoError(t, svc.DeleteExpense(context.Background(), id, 1))
	assert.ErrorIs(t, svc.DeleteExpense(context.Background(), id, 1), ErrExpenseNotFound)
}
