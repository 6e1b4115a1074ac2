package dto

import (
	"time"

	"github.com/spec-kit/expense-share/internal/domain"
)

// GroupRequest payload for create/update.
type GroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// GroupResponse response.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// NewGroupResponse maps a domain group.
func NewGroupResponse(group *domain.Group) GroupResponse {
	return GroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		Members:   group.Members,
		CreatedAt: group.CreatedAt,
		CreatedBy: group.CreatedBy,
	}
}

// NewGroupResponses maps a slice of domain groups.
func NewGroupResponses(groups []*domain.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, NewGroupResponse(group))
	}
	return out
}
