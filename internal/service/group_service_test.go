package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/expense-share/internal/domain"
	"github.com/spec-kit/expense-share/internal/events"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

type fakeGroupRepo struct {
	groups map[string]*domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[string]*domain.Group{}}
}

func (f *fakeGroupRepo) Create(_ context.Context, group *domain.Group) error {
	copied := *group
	f.groups[group.ID] = &copied
	return nil
}

func (f *fakeGroupRepo) Update(_ context.Context, group *domain.Group) error {
	if _, ok := f.groups[group.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *group
	f.groups[group.ID] = &copied
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *group
	return &copied, nil
}

func (f *fakeGroupRepo) List(_ context.Context) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0, len(f.groups))
	for _, group := range f.groups {
		copied := *group
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeGroupRepo) ListByCreator(_ context.Context, username string) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0)
	for _, group := range f.groups {
		if group.CreatedBy == username {
			copied := *group
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.groups[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.groups, id)
	return nil
}

// captureDispatcher records published events.
type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func TestGroupCreateIncludesCreator(t *testing.T) {
	repo := newFakeGroupRepo()
	dispatcher := &captureDispatcher{}
	svc := NewGroupService(repo, dispatcher)

	group, err := svc.Create(context.Background(), "alice", GroupInput{
		Name:    "  trip to lisbon ",
		Members: []string{"bob", "carol", "bob"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "trip to lisbon", group.Name)
	assert.Equal(t, []string{"alice", "bob", "carol"}, group.Members)
	assert.Equal(t, "alice", group.CreatedBy)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventGroupCreated, dispatcher.published[0].Type)
	assert.Equal(t, "alice", dispatcher.published[0].Actor)
}

func TestGroupCreateRequiresName(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepo(), nil)

	_, err := svc.Create(context.Background(), "alice", GroupInput{Name: "   "})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestGroupGetNotFound(t *testing.T) {
	svc := NewGroupService(newFakeGroupRepo(), nil)

	_, err := svc.Get(context.Background(), "missing")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestGroupUpdateKeepsCreatorMembership(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewGroupService(repo, nil)

	group, err := svc.Create(context.Background(), "alice", GroupInput{Name: "dinner", Members: []string{"bob"}})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), group.ID, "alice", GroupInput{
		Name:    "dinner club",
		Members: []string{"carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, "dinner club", updated.Name)
	assert.Equal(t, []string{"alice", "carol"}, updated.Members)
}

func TestGroupDeleteAuthorization(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewGroupService(repo, nil)

	group, err := svc.Create(context.Background(), "alice", GroupInput{Name: "dinner"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), group.ID, "mallory", []string{domain.RoleUser})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)

	require.NoError(t, svc.Delete(context.Background(), group.ID, "admin", []string{domain.RoleAdmin}))

	group, err = svc.Create(context.Background(), "alice", GroupInput{Name: "dinner"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), group.ID, "alice", []string{domain.RoleUser}))
}
