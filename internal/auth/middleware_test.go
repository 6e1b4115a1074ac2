package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/expense-share/internal/domain"
	apperrors "github.com/spec-kit/expense-share/pkg/util"
)

// fakeCredentialStore implements repository.UserAccessRepository in memory.
type fakeCredentialStore struct {
	records map[string]*domain.CredentialRecord
	failing bool
}

func (f *fakeCredentialStore) Create(_ context.Context, record *domain.CredentialRecord) error {
	f.records[record.Username] = record
	return nil
}

func (f *fakeCredentialStore) Update(_ context.Context, record *domain.CredentialRecord) error {
	f.records[record.Username] = record
	return nil
}

func (f *fakeCredentialStore) GetByID(_ context.Context, id int64) (*domain.CredentialRecord, error) {
	for _, record := range f.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCredentialStore) FindByUsername(_ context.Context, username string) (*domain.CredentialRecord, error) {
	if f.failing {
		return nil, errors.New("store down")
	}
	record, ok := f.records[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return record, nil
}

func newResolverApp(t *testing.T, tm *TokenManager, store *fakeCredentialStore) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: domainErrorHandler})
	resolver := NewResolver(tm, store, zap.NewNop())

	app.Get("/whoami", resolver.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"subject": principal.Subject, "roles": principal.Roles})
	})
	app.Get("/admin", resolver.Handle, RequireAuthenticated(), RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func domainErrorHandler(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"message": domainErr.Message})
}

func whoami(t *testing.T, app *fiber.App, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.String()
}

func TestResolverAnonymousCases(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	store := &fakeCredentialStore{records: map[string]*domain.CredentialRecord{
		"alice": {ID: 1, Username: "alice", Roles: []string{"USER"}},
	}}
	app := newResolverApp(t, tm, store)

	valid, _, err := tm.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	expiredTM := newTestTokenManager(t, time.Hour)
	expiredTM.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := expiredTM.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	orphan, _, err := tm.Issue("deleted-user", []string{"USER"})
	require.NoError(t, err)

	cases := map[string]string{
		"no header":        "",
		"not bearer":       "Basic YWxpY2U6cHc=",
		"lowercase prefix": "bearer " + valid,
		"garbage token":    "Bearer garbage",
		"expired token":    "Bearer " + expired,
		"deleted subject":  "Bearer " + orphan,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := whoami(t, app, header)
			assert.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "anonymous")
		})
	}
}

func TestResolverEstablishesIdentity(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	store := &fakeCredentialStore{records: map[string]*domain.CredentialRecord{
		"alice": {ID: 1, Username: "alice", Roles: []string{"USER", "ADMIN"}},
	}}
	app := newResolverApp(t, tm, store)

	token, _, err := tm.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	status, body := whoami(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"subject":"alice"`)
	// Roles reflect the store, not the token claims.
	assert.Contains(t, body, "ADMIN")
}

func TestResolverStoreFailureDegradesToAnonymous(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	store := &fakeCredentialStore{records: map[string]*domain.CredentialRecord{}, failing: true}
	app := newResolverApp(t, tm, store)

	token, _, err := tm.Issue("alice", nil)
	require.NoError(t, err)

	status, body := whoami(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "anonymous")
}

func TestResolverDoesNotOverwriteExistingPrincipal(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	store := &fakeCredentialStore{records: map[string]*domain.CredentialRecord{
		"bob": {ID: 2, Username: "bob", Roles: []string{"USER"}},
	}}
	resolver := NewResolver(tm, store, zap.NewNop())

	app := fiber.New()
	preset := &Principal{Subject: "preset", Roles: []string{"ADMIN"}}
	app.Get("/whoami", func(c *fiber.Ctx) error {
		SetPrincipal(c, preset)
		return c.Next()
	}, resolver.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"subject": principal.Subject})
	})

	token, _, err := tm.Issue("bob", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"subject":"preset"`)
}

func TestAuthorizationGates(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	store := &fakeCredentialStore{records: map[string]*domain.CredentialRecord{
		"alice": {ID: 1, Username: "alice", Roles: []string{"ADMIN"}},
		"bob":   {ID: 2, Username: "bob", Roles: []string{"USER"}},
	}}
	app := newResolverApp(t, tm, store)

	adminToken, _, err := tm.Issue("alice", nil)
	require.NoError(t, err)
	userToken, _, err := tm.Issue("bob", nil)
	require.NoError(t, err)

	probe := func(authorization string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if authorization != "" {
			req.Header.Set(fiber.HeaderAuthorization, authorization)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, probe(""))
	assert.Equal(t, http.StatusUnauthorized, probe("Bearer garbage"))
	assert.Equal(t, http.StatusForbidden, probe("Bearer "+userToken))
	assert.Equal(t, http.StatusOK, probe("Bearer "+adminToken))
}
