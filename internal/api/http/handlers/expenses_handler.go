package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expense-share/internal/api/dto"
	"github.com/spec-kit/expense-share/internal/auth"
	"github.com/spec-kit/expense-share/internal/service"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

// ExpensesHandler manages expense endpoints.
type ExpensesHandler struct {
	service *service.ExpenseService
}

// NewExpensesHandler constructs handler.
func NewExpensesHandler(expenseService *service.ExpenseService) *ExpensesHandler {
	return &ExpensesHandler{service: expenseService}
}

// Create POST /api/expenses.
func (h *ExpensesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	expense, err := h.service.Create(c.Context(), principal.Subject, expenseInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewExpenseResponse(expense)})
}

// List GET /api/expenses.
func (h *ExpensesHandler) List(c *fiber.Ctx) error {
	expenses, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExpenseResponses(expenses)})
}

// Get GET /api/expenses/:id.
func (h *ExpensesHandler) Get(c *fiber.Ctx) error {
	expense, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExpenseResponse(expense)})
}

// ListByGroup GET /api/expenses/group/:groupId.
func (h *ExpensesHandler) ListByGroup(c *fiber.Ctx) error {
	expenses, err := h.service.ListByGroup(c.Context(), c.Params("groupId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExpenseResponses(expenses)})
}

// Update PUT /api/expenses/:id.
func (h *ExpensesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	expense, err := h.service.Update(c.Context(), c.Params("id"), principal.Subject, expenseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewExpenseResponse(expense)})
}

// Delete DELETE /api/expenses/:id.
func (h *ExpensesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), c.Params("id"), principal.Subject); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func expenseInput(req dto.ExpenseRequest) service.ExpenseInput {
	return service.ExpenseInput{
		GroupID:     req.GroupID,
		Description: req.Description,
		Amount:      req.Amount,
		PaidBy:      req.PaidBy,
		OwedBy:      req.OwedBy,
	}
}
