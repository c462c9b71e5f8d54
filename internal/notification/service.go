package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/tallyhq/tally/internal/money"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Service handles notification business logic. It also implements the
// notifier hooks the expense and settlement services call after a write
// commits.
type Service struct {
	repo *Repository
}

// NewService creates a new notification service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// SplitAssigned records that a user was assigned a share of an expense.
func (s *Service) SplitAssigned(ctx context.Context, recipientID, expenseID int64, title string, amount money.Money) error {
	message := fmt.Sprintf("You owe %s for %q", amount, title)
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeSplitAssigned, message, &expenseID)
	return err
}

// DebtsSettled records that a payer settled debts owed to the recipient.
func (s *Service) DebtsSettled(ctx context.Context, recipientID, payerID int64, amount money.Money, count int) error {
	message := fmt.Sprintf("User %d settled %s across %d split(s) owed to you", payerID, amount, count)
	_, err := s.repo.Create(ctx, recipientID, NotificationTypeDebtsSettled, message, nil)
	return err
}

// List retrieves a page of a user's notifications.
func (s *Service) List(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks one of the user's notifications read.
func (s *Service) MarkAsRead(ctx context.Context, id, recipientID int64) error {
	updated, err := s.repo.MarkAsRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all of the user's notifications read.
func (s *Service) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}
