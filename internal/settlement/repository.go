package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/tally/internal/money"
)

// PostgresRepository reads the split ledger and applies settlements.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) transact(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UnpaidEntriesForUser returns every unpaid split that links the user to a
// counterparty, in either direction. The payer's own share of an expense
// never links two users and is excluded.
func (r *PostgresRepository) UnpaidEntriesForUser(ctx context.Context, userID int64) ([]*LedgerEntry, error) {
	query := `
		SELECT
			CASE WHEN e.payer_id = $1 THEN s.user_id ELSE e.payer_id END AS counterparty_id,
			u.username,
			s.amount,
			e.payer_id = $1 AS owed_to_user
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		JOIN users u ON u.id = CASE WHEN e.payer_id = $1 THEN s.user_id ELSE e.payer_id END
		WHERE s.is_paid = FALSE
		  AND s.user_id <> e.payer_id
		  AND (s.user_id = $1 OR e.payer_id = $1)
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unpaid entries: %w", err)
	}
	defer rows.Close()

	var entries []*LedgerEntry
	for rows.Next() {
		e := &LedgerEntry{}
		if err := rows.Scan(&e.CounterpartyID, &e.CounterpartyName, &e.Amount, &e.OwedToUser); err != nil {
			return nil, fmt.Errorf("failed to scan unpaid entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// UnpaidSplitsBetween returns every unpaid split linking the two users, in
// either direction, ordered by owed amount ascending.
func (r *PostgresRepository) UnpaidSplitsBetween(ctx context.Context, user1ID, user2ID int64) ([]*PairSplit, error) {
	query := `
		SELECT s.id, e.id, e.title, s.amount, e.payer_id, s.user_id
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		WHERE s.is_paid = FALSE
		  AND ((s.user_id = $1 AND e.payer_id = $2) OR (s.user_id = $2 AND e.payer_id = $1))
		ORDER BY s.amount ASC, s.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, user1ID, user2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits between users: %w", err)
	}
	defer rows.Close()

	var splits []*PairSplit
	for rows.Next() {
		s := &PairSplit{}
		if err := rows.Scan(&s.SplitID, &s.ExpenseID, &s.ExpenseTitle, &s.Amount, &s.PaidBy, &s.OwedBy); err != nil {
			return nil, fmt.Errorf("failed to scan pair split: %w", err)
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// Settle applies a payment from debtor to creditor against the debtor's
// unpaid splits, oldest expense first, whole entries only. The candidate
// rows are locked for the duration of the transaction, so a concurrent
// settle for the same pair blocks and then sees the already-paid rows
// excluded from its own candidate set. Each update still carries an
// is_paid = FALSE guard: flipping an already-paid row is an invariant
// violation and aborts the transaction.
func (r *PostgresRepository) Settle(ctx context.Context, debtorID, creditorID int64, amountCap *money.Money) (*SettleResult, error) {
	result := &SettleResult{SettledAmount: money.Zero()}

	err := r.transact(ctx, func(tx *sql.Tx) error {
		candidateQuery := `
			SELECT s.id, s.amount, e.paid_at
			FROM expense_splits s
			JOIN expenses e ON s.expense_id = e.id
			WHERE s.user_id = $1
			  AND e.payer_id = $2
			  AND s.is_paid = FALSE
			ORDER BY e.paid_at ASC, s.id ASC
			FOR UPDATE OF s
		`

		rows, err := tx.QueryContext(ctx, candidateQuery, debtorID, creditorID)
		if err != nil {
			return fmt.Errorf("failed to get settle candidates: %w", err)
		}

		var candidates []*Candidate
		for rows.Next() {
			c := &Candidate{}
			if err := rows.Scan(&c.SplitID, &c.Amount, &c.ExpensePaidAt); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan settle candidate: %w", err)
			}
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		splitIDs, total := selectForSettlement(candidates, amountCap)

		for _, id := range splitIDs {
			res, err := tx.ExecContext(ctx,
				`UPDATE expense_splits SET is_paid = TRUE WHERE id = $1 AND is_paid = FALSE`, id)
			if err != nil {
				return fmt.Errorf("failed to mark split %d paid: %w", id, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected != 1 {
				return fmt.Errorf("split %d was no longer unpaid", id)
			}
		}

		result.SettledAmount = total
		result.SettledSplitsCount = len(splitIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
