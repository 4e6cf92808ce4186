// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/stockroom/internal/auth"
	"github.com/taibuivan/stockroom/internal/platform/apperr"
	"github.com/taibuivan/stockroom/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	service  *auth.Service
	users    *memoryUsers
	hasher   *countingHasher
	tokens   *sec.TokenService
	throttle *fakeThrottle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService(testSecret, "stockroom")
	require.NoError(t, err)

	fx := &fixture{
		users:    newMemoryUsers(),
		hasher:   &countingHasher{PasswordHasher: sec.NewHasher(bcrypt.MinCost)},
		tokens:   tokens,
		throttle: newFakeThrottle(3),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fx.service = auth.NewService(fx.users, fx.hasher, tokens, time.Hour, fx.throttle, logger)
	return fx
}

/*
TestRegister covers validation and the happy path.
*/
func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantCode string
		wantName string
	}{
		{"ok", "alice", "secret1", "", "alice"},
		{"trimmed", "  alice  ", "secret1", "", "alice"},
		{"empty_username", "", "secret1", apperr.CodeValidation, ""},
		{"blank_username", "   ", "secret1", apperr.CodeValidation, ""},
		{"short_username", "al", "secret1", apperr.CodeValidation, ""},
		{"long_username", strings.Repeat("a", 65), "secret1", apperr.CodeValidation, ""},
		{"empty_password", "alice", "", apperr.CodeValidation, ""},
		{"short_password_allowed", "bob", "pw123", "", "bob"},
		{"password_over_72_bytes", "alice", strings.Repeat("p", 73), apperr.CodeValidation, ""},
		{"password_exactly_72_bytes", "alice", strings.Repeat("p", 72), "", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)

			identity, err := fx.service.Register(context.Background(), tt.username, tt.password)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, identity)
				assert.Zero(t, fx.users.count())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, identity.Username)
			assert.NotEmpty(t, identity.ID)

			stored, err := fx.users.FindByUsername(context.Background(), tt.wantName)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, stored.PasswordHash)
			assert.True(t, fx.hasher.Compare(tt.password, stored.PasswordHash))
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = fx.service.Register(ctx, "alice", "another1")
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, 1, fx.users.count())
}

/*
TestRegister_NormalizesUnicode verifies that composed and decomposed forms of
the same name collide.
*/
func TestRegister_NormalizesUnicode(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const (
		composed   = "jos\u00e9"
		decomposed = "jose\u0301"
	)

	_, err := fx.service.Register(ctx, composed, "secret1")
	require.NoError(t, err)

	_, err = fx.service.Register(ctx, decomposed, "secret1")
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	identity, err := fx.service.ValidateCredentials(ctx, decomposed, "secret1")
	require.NoError(t, err)
	require.NotNil(t, identity)
}

/*
TestRegister_RaceMapsStoreConflict simulates a duplicate that passes the
existence check and is only caught by the store.
*/
func TestRegister_RaceMapsStoreConflict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	fx.users.hideExisting = true
	_, err = fx.service.Register(ctx, "alice", "secret1")
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	fx := newFixture(t)
	const attempts = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.Register(context.Background(), "carol", "secret1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.HasCode(err, apperr.CodeConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, fx.users.count())
}

func TestRegister_StorageFailure(t *testing.T) {
	fx := newFixture(t)
	fx.users.lookupErr = errors.New("connection reset")

	_, err := fx.service.Register(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
	assert.Contains(t, err.Error(), "auth_service_lookup_failed")
}

/*
TestValidateCredentials checks that every mismatch yields the same nil result.
*/
func TestValidateCredentials(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	t.Run("match", func(t *testing.T) {
		identity, err := fx.service.ValidateCredentials(ctx, "alice", "secret1")
		require.NoError(t, err)
		assert.Equal(t, registered, identity)
	})

	t.Run("wrong_password", func(t *testing.T) {
		identity, err := fx.service.ValidateCredentials(ctx, "alice", "wrong")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("unknown_user_runs_decoy", func(t *testing.T) {
		before := fx.hasher.decoys
		identity, err := fx.service.ValidateCredentials(ctx, "nobody", "secret1")
		require.NoError(t, err)
		assert.Nil(t, identity)
		assert.Equal(t, before+1, fx.hasher.decoys)
	})

	t.Run("storage_failure", func(t *testing.T) {
		fx.users.lookupErr = errors.New("timeout")
		defer func() { fx.users.lookupErr = nil }()

		_, err := fx.service.ValidateCredentials(ctx, "alice", "secret1")
		assert.Error(t, err)
	})
}

func TestLogin_SignsIdentity(t *testing.T) {
	fx := newFixture(t)

	token, err := fx.service.Login(&auth.Identity{ID: "user-1", Username: "alice"})
	require.NoError(t, err)

	claims, err := fx.tokens.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.Zero(t, fx.users.count())
}

func TestAuthenticate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	identity, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		token, err := fx.service.Authenticate(ctx, "alice", "secret1")
		require.NoError(t, err)

		claims, err := fx.tokens.Verify(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, claims.UserID())
	})

	t.Run("wrong_password_and_unknown_user_match", func(t *testing.T) {
		_, wrongPassword := fx.service.Authenticate(ctx, "alice", "nope123")
		_, unknownUser := fx.service.Authenticate(ctx, "mallory", "secret1")

		assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUser, auth.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	})
}

/*
TestAuthenticate_Lockout verifies the throttle locks a username after repeated
failures, blocks even correct passwords, and resets on success.
*/
func TestAuthenticate_Lockout(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	for range 3 {
		_, err := fx.service.Authenticate(ctx, "alice", "wrong1")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	_, err = fx.service.Authenticate(ctx, "alice", "secret1")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeRateLimited, appErr.Code)
	assert.Contains(t, appErr.Message, "90s")

	// Unknown users lock the same way.
	for range 3 {
		_, _ = fx.service.Authenticate(ctx, "ghost", "wrong1")
	}
	_, err = fx.service.Authenticate(ctx, "ghost", "wrong1")
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))

	// Success before the threshold clears the counter.
	_, err = fx.service.Register(ctx, "bob", "pw1234")
	require.NoError(t, err)
	for range 2 {
		_, _ = fx.service.Authenticate(ctx, "bob", "wrong1")
	}
	_, err = fx.service.Authenticate(ctx, "bob", "pw1234")
	require.NoError(t, err)
	assert.Zero(t, fx.throttle.failures["bob"])
}

func TestAuthenticate_ThrottleFailsOpen(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	fx.throttle.err = errors.New("redis: connection refused")

	token, err := fx.service.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	_, err = fx.service.Authenticate(ctx, "alice", "wrong1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	identity, err := fx.service.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	got, err := fx.service.Profile(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	_, err = fx.service.Profile(ctx, "missing")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestNewService_NilThrottle(t *testing.T) {
	users := newMemoryUsers()
	tokens, err := sec.NewTokenService(testSecret, "stockroom")
	require.NoError(t, err)

	service := auth.NewService(users, sec.NewHasher(bcrypt.MinCost), tokens, time.Hour, nil, nil)

	_, err = service.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	for range 20 {
		_, err = service.Authenticate(context.Background(), "alice", "wrong1")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
}
