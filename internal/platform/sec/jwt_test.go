// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/stockroom/internal/platform/sec"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testIssuer = "stockroom-test"
)

func newTokenService(t *testing.T, opts ...sec.Option) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, testIssuer, opts...)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a signed payload verifies back unchanged.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, testIssuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t)

	token, err := service.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, -time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

/*
TestTokenService_ExpiresWithClock checks that a valid token is rejected once
the clock passes its expiry.
*/
func TestTokenService_ExpiresWithClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	service := newTokenService(t, sec.WithClock(func() time.Time { return now }))

	token, err := service.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, 10*time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token)
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	_, err = service.Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestTokenService_RejectsForgery(t *testing.T) {
	service := newTokenService(t)
	token, err := service.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(
		`{"sub":"admin","username":"admin","iss":"` + testIssuer + `","exp":4102444800}`,
	))
	forged := parts[0] + "." + forgedPayload + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"swapped_payload", forged},
		{"missing_signature", parts[0] + "." + parts[1] + "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

func TestTokenService_RejectsOtherSecret(t *testing.T) {
	other, err := sec.NewTokenService("ffffffffffffffffffffffffffffffff", testIssuer)
	require.NoError(t, err)

	token, err := other.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, time.Hour)
	require.NoError(t, err)

	_, err = newTokenService(t).Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestTokenService_RejectsOtherIssuer(t *testing.T) {
	other, err := sec.NewTokenService(testSecret, "someone-else")
	require.NoError(t, err)

	token, err := other.Sign(sec.Payload{Subject: "user-1", Username: "alice"}, time.Hour)
	require.NoError(t, err)

	_, err = newTokenService(t).Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_RejectsNoneAlgorithm guards against unsigned tokens.
*/
func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	claims := sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTokenService(t).Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

func TestNewTokenService_WeakSecret(t *testing.T) {
	_, err := sec.NewTokenService("short", testIssuer)
	assert.ErrorIs(t, err, sec.ErrWeakSecret)
}
