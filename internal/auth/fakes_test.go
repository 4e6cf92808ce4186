// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/stockroom/internal/auth"
)

// memoryUsers is an in-memory [auth.UserRepository] that enforces username
// uniqueness the way the database constraint does.
type memoryUsers struct {
	mu     sync.Mutex
	byName map[string]*auth.User
	byID   map[string]*auth.User

	// hideExisting makes FindByUsername miss, simulating a concurrent
	// registration that has not committed at check time.
	hideExisting bool
	lookupErr    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byName: make(map[string]*auth.User),
		byID:   make(map[string]*auth.User),
	}
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, taken := repo.byName[user.Username]; taken {
		return auth.ErrDuplicateUsername
	}
	stored := *user
	repo.byName[user.Username] = &stored
	repo.byID[user.ID] = &stored
	return nil
}

func (repo *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.lookupErr != nil {
		return nil, repo.lookupErr
	}
	user, found := repo.byName[username]
	if !found || repo.hideExisting {
		return nil, auth.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (repo *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, found := repo.byID[id]
	if !found {
		return nil, auth.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (repo *memoryUsers) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.byName)
}

// countingHasher wraps a real hasher and records decoy comparisons.
type countingHasher struct {
	auth.PasswordHasher

	mu     sync.Mutex
	decoys int
}

func (hasher *countingHasher) CompareDecoy(plainTextPassword string) {
	hasher.mu.Lock()
	hasher.decoys++
	hasher.mu.Unlock()
	hasher.PasswordHasher.CompareDecoy(plainTextPassword)
}

// fakeThrottle is an in-memory [auth.LoginThrottle].
type fakeThrottle struct {
	mu        sync.Mutex
	failures  map[string]int
	threshold int
	err       error
}

func newFakeThrottle(threshold int) *fakeThrottle {
	return &fakeThrottle{failures: make(map[string]int), threshold: threshold}
}

func (throttle *fakeThrottle) Locked(_ context.Context, username string) (bool, time.Duration, error) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	if throttle.err != nil {
		return false, 0, throttle.err
	}
	return throttle.failures[username] >= throttle.threshold, 90 * time.Second, nil
}

func (throttle *fakeThrottle) RecordFailure(_ context.Context, username string) error {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	if throttle.err != nil {
		return throttle.err
	}
	throttle.failures[username]++
	return nil
}

func (throttle *fakeThrottle) Reset(_ context.Context, username string) error {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	if throttle.err != nil {
		return throttle.err
	}
	delete(throttle.failures, username)
	return nil
}
