// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements account registration, credential checks and
// access token issuance for the Stockroom API.
//
// # Layers
//
//   - user.go: entities and credential rules.
//   - store.go / store_postgres.go: the Credential Store.
//   - throttle.go: per-username login lockout backed by Redis.
//   - service.go: the Auth Service use cases.
//   - http.go: the /auth HTTP endpoints.
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Credential limits. The password bound is in bytes because bcrypt only reads
// the first 72 bytes of its input.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 64
	PasswordMaxLength = 72
)

// JSON field names used in validation details.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// User is a stored account.
//
// PasswordHash never leaves the server: it is excluded from JSON and only the
// Credential Store and the Auth Service ever read it.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdat"`
}

// Identity is the public projection of a [User].
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Identity projects the user onto its public fields.
func (user *User) Identity() *Identity {
	return &Identity{ID: user.ID, Username: user.Username}
}

// AccessToken is the result of a successful login.
type AccessToken struct {
	AccessToken string `json:"access_token"`
}

// NormalizeUsername trims surrounding whitespace and applies Unicode NFC so
// visually identical names map to the same account.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}
