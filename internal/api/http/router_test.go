package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/expense-share/internal/api/http/handlers"
	"github.com/spec-kit/expense-share/internal/auth"
	"github.com/spec-kit/expense-share/internal/domain"
	"github.com/spec-kit/expense-share/internal/events"
	"github.com/spec-kit/expense-share/internal/observability"
	"github.com/spec-kit/expense-share/internal/persistence"
	"github.com/spec-kit/expense-share/internal/service"
)

const testSecret = "dGVzdC1zaWduaW5nLWtleS0zMi1ieXRlcy1sb25nISE="

type memUsers struct {
	records map[string]*domain.CredentialRecord
	nextID  int64
}

func (m *memUsers) Create(_ context.Context, record *domain.CredentialRecord) error {
	m.nextID++
	record.ID = m.nextID
	m.records[record.Username] = record
	return nil
}

func (m *memUsers) Update(_ context.Context, record *domain.CredentialRecord) error {
	m.records[record.Username] = record
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.CredentialRecord, error) {
	for _, record := range m.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*domain.CredentialRecord, error) {
	record, ok := m.records[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return record, nil
}

type memGroups struct {
	groups map[string]*domain.Group
}

func (m *memGroups) Create(_ context.Context, group *domain.Group) error {
	m.groups[group.ID] = group
	return nil
}

func (m *memGroups) Update(_ context.Context, group *domain.Group) error {
	if _, ok := m.groups[group.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.groups[group.ID] = group
	return nil
}

func (m *memGroups) GetByID(_ context.Context, id string) (*domain.Group, error) {
	group, ok := m.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return group, nil
}

func (m *memGroups) List(_ context.Context) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0, len(m.groups))
	for _, group := range m.groups {
		out = append(out, group)
	}
	return out, nil
}

func (m *memGroups) ListByCreator(_ context.Context, username string) ([]*domain.Group, error) {
	out := make([]*domain.Group, 0)
	for _, group := range m.groups {
		if group.CreatedBy == username {
			out = append(out, group)
		}
	}
	return out, nil
}

func (m *memGroups) Delete(_ context.Context, id string) error {
	if _, ok := m.groups[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.groups, id)
	return nil
}

type memExpenses struct {
	expenses map[string]*domain.Expense
}

func (m *memExpenses) Create(_ context.Context, expense *domain.Expense) error {
	m.expenses[expense.ID] = expense
	return nil
}

func (m *memExpenses) Update(_ context.Context, expense *domain.Expense) error {
	if _, ok := m.expenses[expense.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *memExpenses) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	expense, ok := m.expenses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return expense, nil
}

func (m *memExpenses) List(_ context.Context) ([]*domain.Expense, error) {
	out := make([]*domain.Expense, 0, len(m.expenses))
	for _, expense := range m.expenses {
		out = append(out, expense)
	}
	return out, nil
}

func (m *memExpenses) ListByGroup(_ context.Context, groupID string) ([]*domain.Expense, error) {
	out := make([]*domain.Expense, 0)
	for _, expense := range m.expenses {
		if expense.GroupID == groupID {
			out = append(out, expense)
		}
	}
	return out, nil
}

func (m *memExpenses) Delete(_ context.Context, id string) error {
	if _, ok := m.expenses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.expenses, id)
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *memUsers) {
	t.Helper()

	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	users := &memUsers{records: map[string]*domain.CredentialRecord{}}
	groups := &memGroups{groups: map[string]*domain.Group{}}
	expenses := &memExpenses{expenses: map[string]*domain.Expense{}}

	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(users, tokens, nil, bcrypt.MinCost, logger)
	groupService := service.NewGroupService(groups, dispatcher)
	expenseService := service.NewExpenseService(expenses, groups, dispatcher)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("expense-share-test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:     handlers.NewAuthHandler(authService),
		Groups:   handlers.NewGroupsHandler(groupService),
		Expenses: handlers.NewExpensesHandler(expenseService),
		Resolver: auth.NewResolver(tokens, users, logger),
	})
	return app, users
}

func seedTestUser(t *testing.T, users *memUsers, username, password string, roles ...string) {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.CredentialRecord{
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
	}))
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func TestLoginEndpointContracts(t *testing.T) {
	app, users := newTestApp(t)
	seedTestUser(t, users, "alice", "correct", "USER")

	t.Run("missing fields", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Username and password are required", body["message"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "alice", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid username or password", body["message"])
		assert.NotContains(t, body, "token")
	})

	t.Run("unknown user looks identical", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "nobody", "password": "correct",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid username or password", body["message"])
	})

	t.Run("success", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "alice", "password": "correct",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Authentication successful", body["message"])
		assert.NotEmpty(t, body["token"])
	})
}

func TestRegisterEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "carol", "password": "secret",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "carol", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Username already registered", body["message"])
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app, _ := newTestApp(t)

	// No credentials, a non-bearer scheme and a garbage bearer token all land
	// on the same 401, never a 500.
	for name, token := range map[string]string{"none": "", "garbage": "garbage"} {
		t.Run(name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodGet, "/api/groups", token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestLoginThenAccessProtectedRoute(t *testing.T) {
	app, users := newTestApp(t)
	seedTestUser(t, users, "alice", "correct", "USER")

	_, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "correct",
	})
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, created := doJSON(t, app, http.MethodPost, "/api/groups", token, map[string]any{
		"name":    "ski trip",
		"members": []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	group := created["data"].(map[string]any)
	assert.Equal(t, "alice", group["created_by"])
	groupID := group["id"].(string)

	resp, created = doJSON(t, app, http.MethodPost, "/api/expenses", token, map[string]any{
		"group_id":    groupID,
		"description": "lift tickets",
		"amount":      120.0,
		"paid_by":     "alice",
		"owed_by":     map[string]float64{"bob": 120},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expense := created["data"].(map[string]any)
	assert.Equal(t, groupID, expense["group_id"])

	resp, listed := doJSON(t, app, http.MethodGet, "/api/expenses/group/"+groupID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed["data"], 1)
}

func TestGroupDeleteForbiddenForNonCreator(t *testing.T) {
	app, users := newTestApp(t)
	seedTestUser(t, users, "alice", "correct", "USER")
	seedTestUser(t, users, "mallory", "correct", "USER")

	_, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "correct",
	})
	aliceToken := body["token"].(string)

	_, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "mallory", "password": "correct",
	})
	malloryToken := body["token"].(string)

	resp, created := doJSON(t, app, http.MethodPost, "/api/groups", aliceToken, map[string]any{"name": "dinner"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	groupID := created["data"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/groups/"+groupID, malloryToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/groups/"+groupID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}
