package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/expense-share/internal/domain"
	"github.com/spec-kit/expense-share/internal/events"
	"github.com/spec-kit/expense-share/internal/repository"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

// Splits must reconcile to the expense amount within a cent.
const splitTolerance = 0.01

// ExpenseService manages expenses within groups.
type ExpenseService struct {
	expenses   repository.ExpenseRepository
	groups     repository.GroupRepository
	dispatcher events.Dispatcher
}

// NewExpenseService builds the service.
func NewExpenseService(expenses repository.ExpenseRepository, groups repository.GroupRepository, dispatcher events.Dispatcher) *ExpenseService {
	return &ExpenseService{expenses: expenses, groups: groups, dispatcher: dispatcher}
}

// ExpenseInput carries create/update fields.
type ExpenseInput struct {
	GroupID     string
	Description string
	Amount      float64
	PaidBy      string
	OwedBy      map[string]float64
}

// Create validates the split against the group's membership and persists
// the expense.
func (s *ExpenseService) Create(ctx context.Context, actor string, input ExpenseInput) (*domain.Expense, error) {
	group, err := s.loadGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if err := validateSplit(group, input); err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		GroupID:     group.ID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		PaidBy:      input.PaidBy,
		OwedBy:      input.OwedBy,
		Date:        time.Now().UTC(),
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExpenseCreated, expense, actor)
	return expense, nil
}

// Get returns a single expense.
func (s *ExpenseService) Get(ctx context.Context, id string) (*domain.Expense, error) {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("expense", map[string]any{"id": id})
		}
		return nil, err
	}
	return expense, nil
}

// List returns all expenses.
func (s *ExpenseService) List(ctx context.Context) ([]*domain.Expense, error) {
	return s.expenses.List(ctx)
}

// ListByGroup returns the expenses logged against one group.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	if _, err := s.loadGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.expenses.ListByGroup(ctx, groupID)
}

// Update replaces the mutable fields of an expense, revalidating the split.
func (s *ExpenseService) Update(ctx context.Context, id, actor string, input ExpenseInput) (*domain.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	input.GroupID = expense.GroupID
	if err := validateSplit(group, input); err != nil {
		return nil, err
	}

	expense.Description = strings.TrimSpace(input.Description)
	expense.Amount = input.Amount
	expense.PaidBy = input.PaidBy
	expense.OwedBy = input.OwedBy
	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExpenseUpdated, expense, actor)
	return expense, nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, id, actor string) error {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.EventExpenseDeleted, expense, actor)
	return nil
}

func (s *ExpenseService) loadGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"id": groupID})
		}
		return nil, err
	}
	return group, nil
}

func (s *ExpenseService) publish(ctx context.Context, eventType events.EventType, expense *domain.Expense, actor string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		GroupID:   expense.GroupID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload: events.ExpenseChangedPayload{
			ExpenseID:   expense.ID,
			Description: expense.Description,
			Amount:      expense.Amount,
			PaidBy:      expense.PaidBy,
		},
	})
}

func validateSplit(group *domain.Group, input ExpenseInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("description required", nil)
	}
	if input.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", nil)
	}
	if !group.HasMember(input.PaidBy) {
		return apperrors.NewValidationError("payer is not a group member", map[string]any{"paid_by": input.PaidBy})
	}
	if len(input.OwedBy) == 0 {
		return apperrors.NewValidationError("owed_by must list at least one member", nil)
	}

	var total float64
	for member, share := range input.OwedBy {
		if !group.HasMember(member) {
			return apperrors.NewValidationError("ower is not a group member", map[string]any{"member": member})
		}
		if share <= 0 {
			return apperrors.NewValidationError("owed amounts must be positive", map[string]any{"member": member})
		}
		total += share
	}
	if math.Abs(total-input.Amount) > splitTolerance {
		return apperrors.NewValidationError("owed amounts must sum to the expense amount", map[string]any{
			"amount": input.Amount,
			"sum":    total,
		})
	}
	return nil
}
