// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 10

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("sec: password cannot be empty")

// Hasher hashes and verifies passwords with bcrypt at a fixed work factor.
//
// # Concurrency
//
// Hasher is safe for concurrent use. It holds no mutable state besides the
// lazily generated decoy digest.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewHasher creates a [Hasher] with the given bcrypt cost.
// Costs outside bcrypt's supported range are clamped to it.
func NewHasher(cost int) *Hasher {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the configured work factor.
func (hasher *Hasher) Cost() int {
	return hasher.cost
}

// Hash produces a salted bcrypt digest of plainTextPassword.
// Every call uses a fresh salt, so equal inputs never yield equal digests.
func (hasher *Hasher) Hash(plainTextPassword string) (string, error) {
	if plainTextPassword == "" {
		return "", ErrEmptyPassword
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare reports whether plainTextPassword matches existingHash.
// The comparison runs in constant time; a malformed digest reports false.
func (hasher *Hasher) Compare(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// CompareDecoy burns the same CPU time as a real [Hasher.Compare] against a
// digest that can never match. Callers use it when there is no stored digest
// so that response timing does not reveal whether an account exists.
func (hasher *Hasher) CompareDecoy(plainTextPassword string) {
	hasher.decoyOnce.Do(func() {
		hasher.decoy, _ = bcrypt.GenerateFromPassword([]byte("stockroom-decoy-password"), hasher.cost)
	})
	_ = bcrypt.CompareHashAndPassword(hasher.decoy, []byte(plainTextPassword))
}
