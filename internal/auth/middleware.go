package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/expense-share/internal/repository"
)

const principalKey = "auth_principal"

const bearerPrefix = "Bearer "

// Principal is the request-scoped identity established by the Resolver.
// Roles come from the credential store at resolution time, not from the
// token, so role changes apply without waiting for token expiry.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the principal carries the named role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Resolver establishes a per-request identity from a bearer token. It never
// rejects a request itself: any missing, malformed, expired or orphaned
// token leaves the request anonymous, and the authorization gate downstream
// decides what anonymous callers may reach.
type Resolver struct {
	tokens *TokenManager
	store  repository.UserAccessRepository
	logger *zap.Logger
}

// NewResolver constructs the middleware.
func NewResolver(tokens *TokenManager, store repository.UserAccessRepository, logger *zap.Logger) *Resolver {
	return &Resolver{tokens: tokens, store: store, logger: logger}
}

// Handle runs once per request: read the bearer token, validate it, confirm
// the subject still exists, attach the principal. An already-attached
// principal is never overwritten.
func (r *Resolver) Handle(c *fiber.Ctx) error {
	if c.Locals(principalKey) != nil {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return c.Next()
	}

	claims, err := r.tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		r.logger.Debug("discarding bearer token", zap.Error(err))
		return c.Next()
	}

	// A valid signature is not enough: the subject must still resolve, so a
	// deleted account fails closed while its tokens are still in the wild.
	record, err := r.store.FindByUsername(c.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("token subject no longer exists", zap.String("subject", claims.Subject))
		} else {
			r.logger.Error("credential lookup failed during resolution", zap.Error(err))
		}
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Subject: record.Username, Roles: record.Roles})
	return c.Next()
}

// PrincipalFromContext retrieves the resolved identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// SetPrincipal attaches an identity directly, bypassing token resolution.
// Used by tests that exercise handlers behind the authorization gate.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}
