package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGroupCreated   EventType = "group_created"
	EventGroupUpdated   EventType = "group_updated"
	EventGroupDeleted   EventType = "group_deleted"
	EventExpenseCreated EventType = "expense_created"
	EventExpenseUpdated EventType = "expense_updated"
	EventExpenseDeleted EventType = "expense_deleted"
)

// Event represents a domain event emitted by services. Actor is the
// username that triggered the mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GroupID   string      `json:"group_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// GroupChangedPayload payload.
type GroupChangedPayload struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ExpenseChangedPayload payload.
type ExpenseChangedPayload struct {
	ExpenseID   string  `json:"expense_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	PaidBy      string  `json:"paid_by"`
}
