package dto

import (
	"time"

	"github.com/spec-kit/expense-share/internal/domain"
)

// ExpenseRequest payload for create/update.
type ExpenseRequest struct {
	GroupID     string             `json:"group_id"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	PaidBy      string             `json:"paid_by"`
	OwedBy      map[string]float64 `json:"owed_by"`
}

// ExpenseResponse response.
type ExpenseResponse struct {
	ID          string             `json:"id"`
	GroupID     string             `json:"group_id"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	PaidBy      string             `json:"paid_by"`
	OwedBy      map[string]float64 `json:"owed_by"`
	Date        time.Time          `json:"date"`
}

// NewExpenseResponse maps a domain expense.
func NewExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		GroupID:     expense.GroupID,
		Description: expense.Description,
		Amount:      expense.Amount,
		PaidBy:      expense.PaidBy,
		OwedBy:      expense.OwedBy,
		Date:        expense.Date,
	}
}

// NewExpenseResponses maps a slice of domain expenses.
func NewExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		out = append(out, NewExpenseResponse(expense))
	}
	return out
}
