package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/expense-share/internal/auth"
	"github.com/spec-kit/expense-share/internal/domain"
	"github.com/spec-kit/expense-share/internal/repository"
)

// Login failures callers can branch on. Unknown username and wrong password
// collapse into ErrInvalidCredentials so responses cannot be used to
// enumerate accounts; the distinction is logged server-side only.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthUnavailable    = errors.New("authentication unavailable")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrUsernameTaken      = errors.New("username already registered")
)

// LoginThrottle tracks consecutive failed logins per username.
type LoginThrottle interface {
	TooMany(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthService orchestrates login: credential lookup, password verification,
// token issuance. It holds no per-request state.
type AuthService struct {
	users      repository.UserAccessRepository
	tokens     *auth.TokenManager
	throttle   LoginThrottle
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service. throttle may be nil when throttling is
// not wired (tests, minimal deployments).
func NewAuthService(users repository.UserAccessRepository, tokens *auth.TokenManager, throttle LoginThrottle, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		throttle:   throttle,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login verifies the credentials and mints a token carrying the record's
// role set. Store failures surface as ErrAuthUnavailable so callers can
// distinguish "retry later" from "wrong password".
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if s.overLimit(ctx, username) {
		return "", time.Time{}, ErrTooManyAttempts
	}

	record, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("login attempt for unknown username", zap.String("username", username))
			s.recordFailure(ctx, username)
			return "", time.Time{}, ErrInvalidCredentials
		}
		s.logger.Error("credential lookup failed", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	if err := auth.VerifyPassword(record.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrCorruptHash) {
			s.logger.Error("stored password hash unreadable", zap.String("username", username), zap.Error(err))
			return "", time.Time{}, fmt.Errorf("%w: corrupt credential record", ErrAuthUnavailable)
		}
		s.logger.Warn("wrong password", zap.String("username", username))
		s.recordFailure(ctx, username)
		return "", time.Time{}, ErrInvalidCredentials
	}

	s.resetFailures(ctx, username)

	token, expiresAt, err := s.tokens.Issue(record.Username, record.Roles)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	s.logger.Info("user authenticated", zap.String("username", record.Username))
	return token, expiresAt, nil
}

// Register creates a credential record with the USER role.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.CredentialRecord, error) {
	username = strings.TrimSpace(username)

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	record := &domain.CredentialRecord{
		Username:     username,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
	}
	if err := s.users.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Throttle bookkeeping fails open: a broken throttle backend must not take
// login down with it.

func (s *AuthService) overLimit(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return false
	}
	over, err := s.throttle.TooMany(ctx, throttleKey(username))
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
		return false
	}
	return over
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, throttleKey(username)); err != nil {
		s.logger.Warn("recording login failure", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, throttleKey(username)); err != nil {
		s.logger.Warn("resetting login failures", zap.Error(err))
	}
}

func throttleKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
