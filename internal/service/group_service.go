package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/expense-share/internal/domain"
	"github.com/spec-kit/expense-share/internal/events"
	"github.com/spec-kit/expense-share/internal/repository"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

// GroupService manages expense groups.
type GroupService struct {
	groups     repository.GroupRepository
	dispatcher events.Dispatcher
}

// NewGroupService builds the service.
func NewGroupService(groups repository.GroupRepository, dispatcher events.Dispatcher) *GroupService {
	return &GroupService{groups: groups, dispatcher: dispatcher}
}

// GroupInput carries create/update fields.
type GroupInput struct {
	Name    string
	Members []string
}

// Create persists a new group. The creator is always included as a member.
func (s *GroupService) Create(ctx context.Context, createdBy string, input GroupInput) (*domain.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("group name required", nil)
	}

	group := &domain.Group{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Members:   normalizeMembers(input.Members, createdBy),
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventGroupCreated, group.ID, createdBy, events.GroupChangedPayload{
		Name:    group.Name,
		Members: group.Members,
	})
	return group, nil
}

// Get returns a single group.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"id": id})
		}
		return nil, err
	}
	return group, nil
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]*domain.Group, error) {
	return s.groups.List(ctx)
}

// Update replaces the group's name and member list.
func (s *GroupService) Update(ctx context.Context, id, updatedBy string, input GroupInput) (*domain.Group, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) != "" {
		group.Name = strings.TrimSpace(input.Name)
	}
	if input.Members != nil {
		group.Members = normalizeMembers(input.Members, group.CreatedBy)
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventGroupUpdated, group.ID, updatedBy, events.GroupChangedPayload{
		Name:    group.Name,
		Members: group.Members,
	})
	return group, nil
}

// Delete removes a group. Only the creator or an admin may delete.
func (s *GroupService) Delete(ctx context.Context, id, requester string, requesterRoles []string) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if group.CreatedBy != requester && !hasRole(requesterRoles, domain.RoleAdmin) {
		return apperrors.NewForbidden("only the group creator or an admin may delete a group")
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.EventGroupDeleted, id, requester, nil)
	return nil
}

func (s *GroupService) publish(ctx context.Context, eventType events.EventType, groupID, actor string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		GroupID:   groupID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func normalizeMembers(members []string, creator string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(members)+1)
	for _, member := range append([]string{creator}, members...) {
		member = strings.TrimSpace(member)
		if member == "" {
			continue
		}
		if _, dup := seen[member]; dup {
			continue
		}
		seen[member] = struct{}{}
		out = append(out, member)
	}
	return out
}

func hasRole(roles []string, want string) bool {
	for _, role := range roles {
		if role == want {
			return true
		}
	}
	return false
}
