package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expense-share/internal/api/dto"
	"github.com/spec-kit/expense-share/internal/auth"
	"github.com/spec-kit/expense-share/internal/service"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

// GroupsHandler manages group endpoints.
type GroupsHandler struct {
	service *service.GroupService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groupService *service.GroupService) *GroupsHandler {
	return &GroupsHandler{service: groupService}
}

// Create POST /api/groups.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	group, err := h.service.Create(c.Context(), principal.Subject, service.GroupInput{
		Name:    req.Name,
		Members: req.Members,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewGroupResponse(group)})
}

// List GET /api/groups.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupResponses(groups)})
}

// Get GET /api/groups/:id.
func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	group, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupResponse(group)})
}

// Update PUT /api/groups/:id.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	group, err := h.service.Update(c.Context(), c.Params("id"), principal.Subject, service.GroupInput{
		Name:    req.Name,
		Members: req.Members,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupResponse(group)})
}

// Delete DELETE /api/groups/:id.
func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), c.Params("id"), principal.Subject, principal.Roles); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
