package settlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tallyhq/tally/internal/money"
	"github.com/tallyhq/tally/internal/user"
)

// Common errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotSettleSelf = errors.New("cannot settle debts with yourself")
	ErrNonPositiveCap   = errors.New("amount cap must be positive")
)

// Repository is the ledger access the settlement engine depends on.
type Repository interface {
	UnpaidEntriesForUser(ctx context.Context, userID int64) ([]*LedgerEntry, error)
	UnpaidSplitsBetween(ctx context.Context, user1ID, user2ID int64) ([]*PairSplit, error)
	Settle(ctx context.Context, debtorID, creditorID int64, amountCap *money.Money) (*SettleResult, error)
}

// UserDirectory resolves user ids; GetByID returns nil for unknown ids.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Notifier receives settlement events. Notification failures never fail the
// settlement; they are logged and dropped.
type Notifier interface {
	DebtsSettled(ctx context.Context, recipientID, payerID int64, amount money.Money, count int) error
}

// Service implements settlement aggregation and debt settlement.
type Service struct {
	repo     Repository
	users    UserDirectory
	notifier Notifier
}

// NewService creates a new settlement service. notifier may be nil.
func NewService(repo Repository, users UserDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, notifier: notifier}
}

// SettlementsForUser returns the user's net position against every
// counterparty with at least one unpaid split, largest amount owed to the
// user first. Paid splits never contribute.
func (s *Service) SettlementsForUser(ctx context.Context, userID int64) ([]*UserSettlement, error) {
	entries, err := s.repo.UnpaidEntriesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return foldUserSettlements(entries), nil
}

// SettlementBetween returns the outstanding debt between two users with the
// unpaid splits enumerated, smallest amount first. Both users must exist and
// must be distinct.
func (s *Service) SettlementBetween(ctx context.Context, user1ID, user2ID int64) (*PairSettlement, error) {
	if user1ID == user2ID {
		return nil, ErrCannotSettleSelf
	}
	for _, id := range []int64{user1ID, user2ID} {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrUserNotFound
		}
	}

	splits, err := s.repo.UnpaidSplitsBetween(ctx, user1ID, user2ID)
	if err != nil {
		return nil, err
	}

	return foldPairSettlement(user1ID, user2ID, splits), nil
}

// Settle applies a payment from payerID to payeeID against the payer's
// unpaid splits owed to the payee, oldest expense first, whole entries only.
// A nil amountCap settles everything. No unpaid candidates is a normal
// outcome: the result is simply {0, 0}.
func (s *Service) Settle(ctx context.Context, payerID, payeeID int64, amountCap *money.Money) (*SettleResult, error) {
	if payerID == payeeID {
		return nil, ErrCannotSettleSelf
	}
	if amountCap != nil && !amountCap.IsPositive() {
		return nil, ErrNonPositiveCap
	}

	result, err := s.repo.Settle(ctx, payerID, payeeID, amountCap)
	if err != nil {
		return nil, err
	}

	if result.SettledSplitsCount > 0 && s.notifier != nil {
		err := s.notifier.DebtsSettled(ctx, payeeID, payerID, result.SettledAmount, result.SettledSplitsCount)
		if err != nil {
			slog.Warn("failed to notify creditor",
				"payee_id", payeeID,
				"payer_id", payerID,
				"error", err,
			)
		}
	}

	return result, nil
}
