// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

// Storage sentinels. Implementations must return these (optionally wrapped)
// so the service can map them to client-facing errors.
var (
	ErrUserNotFound      = errors.New("auth: user not found")
	ErrDuplicateUsername = errors.New("auth: username already exists")
)

// UserRepository defines the data access contract for user accounts.
//
// Usernames are compared exactly; callers normalize them first.
type UserRepository interface {
	// Create persists a new account.
	//
	// Returns [ErrDuplicateUsername] when the username is taken, including
	// when a concurrent registration won the race.
	Create(ctx context.Context, user *User) error

	// FindByUsername returns the account with the given username.
	//
	// Returns [ErrUserNotFound] if no account exists.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID returns the account with the given ID.
	//
	// Returns [ErrUserNotFound] if no account exists.
	FindByID(ctx context.Context, id string) (*User, error)
}
