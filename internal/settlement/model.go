package settlement

import (
	"time"

	"github.com/tallyhq/tally/internal/money"
)

// UserSettlement is the net position between a user and one counterparty,
// projected from unpaid splits only.
type UserSettlement struct {
	CounterpartyID   int64       `json:"counterparty_id"`
	CounterpartyName string      `json:"counterparty_name"`
	OwedToYou        money.Money `json:"owed_to_you"`
	OwedByYou        money.Money `json:"owed_by_you"`
	NetAmount        money.Money `json:"net_amount"`
}

// PairSettlement details the outstanding debt between two users.
// NetAmount is signed from user1's perspective: positive means user2 owes
// user1.
type PairSettlement struct {
	User1ID        int64        `json:"user1_id"`
	User2ID        int64        `json:"user2_id"`
	User1OwesUser2 money.Money  `json:"user1_owes_user2"`
	User2OwesUser1 money.Money  `json:"user2_owes_user1"`
	NetAmount      money.Money  `json:"net_amount"`
	Splits         []*PairSplit `json:"splits"`
}

// PairSplit is one unpaid split linking the two users, annotated with its
// originating expense.
type PairSplit struct {
	SplitID      int64       `json:"split_id"`
	ExpenseID    int64       `json:"expense_id"`
	ExpenseTitle string      `json:"expense_title"`
	Amount       money.Money `json:"amount"`
	PaidBy       int64       `json:"paid_by"`
	OwedBy       int64       `json:"owed_by"`
}

// LedgerEntry is one unpaid split seen from a focal user: either the
// counterparty owes the user or the user owes the counterparty.
type LedgerEntry struct {
	CounterpartyID   int64
	CounterpartyName string
	Amount           money.Money
	OwedToUser       bool
}

// Candidate is one unpaid split owed debtor to creditor, carrying the
// timestamp of its originating expense for oldest-first ordering.
type Candidate struct {
	SplitID       int64
	Amount        money.Money
	ExpensePaidAt time.Time
}

// SettleResult summarizes what a settle call applied.
type SettleResult struct {
	SettledAmount      money.Money `json:"settled_amount"`
	SettledSplitsCount int         `json:"settled_splits_count"`
}
