package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/expense-share/internal/domain"
)

// ExpenseRepository defines persistence access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]*domain.Expense, error)
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error)
	Delete(ctx context.Context, id string) error
}

type expenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository returns a Postgres-backed implementation.
func NewExpenseRepository(pool *pgxpool.Pool) ExpenseRepository {
	return &expenseRepository{pool: pool}
}

func (r *expenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	const query = `
        INSERT INTO expenses (id, group_id, description, amount, paid_by, owed_by, date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.Description,
		expense.Amount,
		expense.PaidBy,
		expense.OwedBy,
		expense.Date,
	)
	return err
}

func (r *expenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	const query = `
        UPDATE expenses SET description=$1, amount=$2, paid_by=$3, owed_by=$4
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		expense.Description,
		expense.Amount,
		expense.PaidBy,
		expense.OwedBy,
		expense.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	const query = `
        SELECT id, group_id, description, amount, paid_by, owed_by, date
        FROM expenses WHERE id=$1`

	var expense domain.Expense
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&expense.Amount,
		&expense.PaidBy,
		&expense.OwedBy,
		&expense.Date,
	); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	const query = `
        SELECT id, group_id, description, amount, paid_by, owed_by, date
        FROM expenses ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *expenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	const query = `
        SELECT id, group_id, description, amount, paid_by, owed_by, date
        FROM expenses WHERE group_id=$1 ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanExpenses(rows pgx.Rows) ([]*domain.Expense, error) {
	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.Description,
			&expense.Amount,
			&expense.PaidBy,
			&expense.OwedBy,
			&expense.Date,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &expense)
	}
	return expenses, rows.Err()
}
