// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/taibuivan/stockroom/internal/platform/apperr"
	"github.com/taibuivan/stockroom/internal/platform/sec"
	"github.com/taibuivan/stockroom/internal/platform/validate"
	"github.com/taibuivan/stockroom/pkg/uuid"
)

// ErrInvalidCredentials is the single login failure returned to clients.
// Unknown usernames and wrong passwords are indistinguishable.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// PasswordHasher hashes and verifies passwords. [*sec.Hasher] satisfies it.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Compare(plainTextPassword, existingHash string) bool
	CompareDecoy(plainTextPassword string)
}

// TokenIssuer signs access tokens. [*sec.TokenService] satisfies it.
type TokenIssuer interface {
	Sign(payload sec.Payload, timeToLive time.Duration) (string, error)
}

// Service implements the account and login use cases.
//
// # Concurrency
//
// Service is stateless apart from its dependencies and safe for concurrent use.
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	throttle LoginThrottle
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService constructs a [Service]. A nil throttle disables login lockout.
func NewService(
	users UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	tokenTTL time.Duration,
	throttle LoginThrottle,
	logger *slog.Logger,
) *Service {
	if throttle == nil {
		throttle = NoopThrottle{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates a new account.
//
// # Returns
//   - The public [Identity] of the new account.
//   - [apperr.ValidationError] when the username or password breaks the rules.
//   - [apperr.Conflict] when the username is taken, even if a concurrent
//     registration slips past the existence check.
func (service *Service) Register(context context.Context, username, password string) (*Identity, error) {
	username = NormalizeUsername(username)

	// ── 1. Validation ─────────────────────────────────────────────────────

	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness ─────────────────────────────────────────────────────

	_, err := service.users.FindByUsername(context, username)
	switch {
	case err == nil:
		return nil, usernameTaken()
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	// ── 3. Hashing ────────────────────────────────────────────────────────

	passwordHash, err := service.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(context, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger.InfoContext(context, "auth_register_succeeded",
		slog.String("user_id", user.ID),
	)

	return user.Identity(), nil
}

// ValidateCredentials checks a username and password pair.
//
// It returns a nil identity and a nil error when the pair does not match.
// Unknown usernames still pay for one bcrypt comparison so response time does
// not reveal which names exist. Errors are returned only for storage failures.
func (service *Service) ValidateCredentials(context context.Context, username, password string) (*Identity, error) {
	user, err := service.users.FindByUsername(context, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			service.hasher.CompareDecoy(password)
			return nil, nil
		}
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	if !service.hasher.Compare(password, user.PasswordHash) {
		return nil, nil
	}

	return user.Identity(), nil
}

// Login issues an access token for an already validated identity.
// It performs no storage writes.
func (service *Service) Login(identity *Identity) (*AccessToken, error) {
	token, err := service.tokens.Sign(sec.Payload{
		Subject:  identity.ID,
		Username: identity.Username,
	}, service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_sign_failed: %w", err)
	}
	return &AccessToken{AccessToken: token}, nil
}

// Authenticate validates credentials and issues a token in one step.
//
// # Returns
//   - [ErrInvalidCredentials] for any credential mismatch.
//   - [apperr.RateLimited] while the username is locked out.
//
// Throttle failures are logged and ignored so an outage of Redis never blocks
// logins.
func (service *Service) Authenticate(context context.Context, username, password string) (*AccessToken, error) {
	username = NormalizeUsername(username)

	// ── 1. Lockout ────────────────────────────────────────────────────────

	locked, retryAfter, err := service.throttle.Locked(context, username)
	if err != nil {
		service.logger.WarnContext(context, "auth_throttle_unavailable", slog.String("error", err.Error()))
	}
	if locked {
		return nil, apperr.RateLimited(int(math.Ceil(retryAfter.Seconds())))
	}

	// ── 2. Credentials ────────────────────────────────────────────────────

	identity, err := service.ValidateCredentials(context, username, password)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		if err := service.throttle.RecordFailure(context, username); err != nil {
			service.logger.WarnContext(context, "auth_throttle_unavailable", slog.String("error", err.Error()))
		}
		service.logger.InfoContext(context, "auth_login_failed")
		return nil, ErrInvalidCredentials
	}

	// ── 3. Token ──────────────────────────────────────────────────────────

	if err := service.throttle.Reset(context, username); err != nil {
		service.logger.WarnContext(context, "auth_throttle_unavailable", slog.String("error", err.Error()))
	}

	return service.Login(identity)
}

// Profile returns the identity behind a verified token subject.
func (service *Service) Profile(context context.Context, userID string) (*Identity, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("auth_service_profile_failed: %w", err)
	}
	return user.Identity(), nil
}

func validateCredentials(username, password string) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, username).
		MinLen(FieldUsername, username, UsernameMinLength).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Custom(FieldPassword, password == "", "This field is required").
		MaxBytes(FieldPassword, password, PasswordMaxLength)
	return validator.Err()
}

func usernameTaken() *apperr.AppError {
	return apperr.Conflict("Username already exists")
}
