// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer through small interfaces declared by the consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest accepted HMAC secret, in bytes.
const MinSecretLength = 32

var (
	// ErrInvalidToken is returned by [TokenService.Verify] for any token that
	// is malformed, forged, issued by someone else, or expired.
	ErrInvalidToken = errors.New("sec: invalid token")

	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = fmt.Errorf("sec: signing secret must be at least %d bytes", MinSecretLength)
)

// Payload is the identity a token is minted for.
type Payload struct {
	Subject  string
	Username string
}

// Claims represents the payload embedded inside a JWT Access Token.
//
// The subject carries the user ID. Username is embedded so that the
// [middleware.Authenticate] gate can rebuild the caller identity without a
// database round-trip.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
}

// UserID returns the subject claim.
func (claims *Claims) UserID() string {
	return claims.Subject
}

// Option customizes a [TokenService].
type Option func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) {
		service.now = now
	}
}

// TokenService signs and verifies HS256 JWTs with a server-held secret.
//
// It is stateless and safe for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService keyed by secret.
func NewTokenService(secret, issuer string, opts ...Option) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	service := &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Sign creates a signed token for payload that expires after timeToLive.
func (service *TokenService) Sign(payload Payload, timeToLive time.Duration) (string, error) {
	currentTime := service.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Subject,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Username: payload.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, issuer and expiry of tokenString.
// Every failure wraps [ErrInvalidToken].
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return service.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
