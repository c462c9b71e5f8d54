package notification

import "time"

// NotificationType classifies ledger events surfaced to users.
type NotificationType string

const (
	NotificationTypeSplitAssigned NotificationType = "SPLIT_ASSIGNED"
	NotificationTypeDebtsSettled  NotificationType = "DEBTS_SETTLED"
)

// Notification is one entry in a user's activity feed.
type Notification struct {
	ID          int64            `json:"id"`
	RecipientID int64            `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read"`
	EntityID    *int64           `json:"entity_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
