package domain

import "time"

// Expense records a payment made on behalf of a group. OwedBy maps member
// usernames to the share each owes the payer; the shares sum to Amount.
type Expense struct {
	ID          string
	GroupID     string
	Description string
	Amount      float64
	PaidBy      string
	OwedBy      map[string]float64
	Date        time.Time
}
