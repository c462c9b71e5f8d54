package expense

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepository handles expense and split persistence.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// transact runs fn inside one transaction: commit on success, roll back and
// propagate on any failure. The deferred rollback is a no-op after commit.
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

// CreateExpenseWithSplits inserts the expense and all of its splits as one
// atomic batch. Either every row lands or none do; a partially split expense
// is never observable.
func (r *PostgresRepository) CreateExpenseWithSplits(ctx context.Context, e *Expense, splits []*Split) (*ExpenseWithSplits, error) {
	created := &ExpenseWithSplits{}

	err := r.transact(ctx, func(tx *sql.Tx) error {
		expenseQuery := `
			INSERT INTO expenses (group_id, payer_id, title, amount, paid_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, group_id, payer_id, title, amount, paid_at
		`

		exp := &Expense{}
		err := tx.QueryRowContext(ctx, expenseQuery,
			e.GroupID, e.PayerID, e.Title, e.Amount, e.PaidAt,
		).Scan(&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Title, &exp.Amount, &exp.PaidAt)
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		splitQuery := `
			INSERT INTO expense_splits (expense_id, user_id, amount, is_paid)
			VALUES ($1, $2, $3, FALSE)
			RETURNING id, expense_id, user_id, amount, is_paid
		`

		rows := make([]*Split, len(splits))
		for i, s := range splits {
			row := &Split{}
			err := tx.QueryRowContext(ctx, splitQuery, exp.ID, s.UserID, s.Amount).Scan(
				&row.ID, &row.ExpenseID, &row.UserID, &row.Amount, &row.IsPaid,
			)
			if err != nil {
				return fmt.Errorf("failed to create split for user %d: %w", s.UserID, err)
			}
			rows[i] = row
		}

		created.Expense = exp
		created.Splits = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetExpenseByID retrieves an expense by its id, or nil when absent.
func (r *PostgresRepository) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount, e.paid_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`

	exp := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Title, &exp.Amount, &exp.PaidAt,
		&exp.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return exp, nil
}

// GetSplitsByExpenseID retrieves all splits for an expense.
func (r *PostgresRepository) GetSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.is_paid, u.username
		FROM expense_splits s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = $1
		ORDER BY s.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount, &s.IsPaid, &s.Username); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

// ListExpensesByGroupID retrieves a page of expenses for a group, newest
// first.
func (r *PostgresRepository) ListExpensesByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount, e.paid_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.paid_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	return r.listExpenses(ctx, query, total, groupID, limit, offset)
}

// ListExpensesByPayerID retrieves a page of expenses paid by a user, newest
// first.
func (r *PostgresRepository) ListExpensesByPayerID(ctx context.Context, payerID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE payer_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, payerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.title, e.amount, e.paid_at, u.username
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.payer_id = $1
		ORDER BY e.paid_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	return r.listExpenses(ctx, query, total, payerID, limit, offset)
}

func (r *PostgresRepository) listExpenses(ctx context.Context, query string, total int, args ...interface{}) ([]*Expense, int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		exp := &Expense{}
		if err := rows.Scan(
			&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Title, &exp.Amount, &exp.PaidAt,
			&exp.PayerUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}

	return expenses, total, rows.Err()
}

// DeleteExpense removes an expense and all of its splits atomically.
func (r *PostgresRepository) DeleteExpense(ctx context.Context, id int64) error {
	return r.transact(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrExpenseNotFound
		}
		return nil
	})
}
