// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrBusy is returned when a login or registration is already in flight.
var ErrBusy = errors.New("client: another sign-in is in progress")

// ErrSignedOut is returned by a sign-in that a [Session.Logout] overtook.
// Its token is discarded.
var ErrSignedOut = errors.New("client: signed out during sign-in")

// AuthAPI is the server surface the session needs. [*APIClient] satisfies it.
type AuthAPI interface {
	Register(ctx context.Context, username, password string) (*Identity, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// RegisterStage names the step of [Session.Register] that failed.
type RegisterStage string

const (
	StageRegister  RegisterStage = "register"
	StageAutoLogin RegisterStage = "auto_login"
)

// RegisterError reports which step of registration failed.
type RegisterError struct {
	Stage RegisterStage
	Err   error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("client: %s failed: %v", e.Stage, e.Err)
}

func (e *RegisterError) Unwrap() error { return e.Err }

// Session holds the current bearer token.
//
// It is the only writer of the token. Readers such as the route guard and
// the API client see it through [Session.IsAuthenticated] and [Session.Token].
type Session struct {
	api   AuthAPI
	store TokenStore

	mu          sync.Mutex
	token       string
	subscribers map[uint64]func(authenticated bool)
	nextID      uint64
	// logouts counts Logout calls; a sign-in started before one is stale.
	logouts uint64

	busy atomic.Bool
}

// NewSession creates a session and loads any token left in store.
// A store read failure starts the session signed out and is returned.
func NewSession(api AuthAPI, store TokenStore) (*Session, error) {
	session := &Session{
		api:         api,
		store:       store,
		subscribers: make(map[uint64]func(bool)),
	}

	token, err := store.Load()
	if err != nil {
		return session, fmt.Errorf("client: load session: %w", err)
	}
	session.token = token
	return session, nil
}

// Token returns the current token or "".
func (session *Session) Token() string {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.token
}

// IsAuthenticated reports whether a token is held.
func (session *Session) IsAuthenticated() bool {
	return session.Token() != ""
}

// Login signs in. On success the token is persisted before it becomes
// visible in memory, so any navigation that follows already survives a
// restart. On failure the session is left untouched.
func (session *Session) Login(ctx context.Context, username, password string) error {
	if !session.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer session.busy.Store(false)

	return session.login(ctx, username, password)
}

// Register creates an account and then signs in with the same credentials.
//
// A failure of either step is returned as a [*RegisterError] naming the
// step. No login is attempted when registration fails.
func (session *Session) Register(ctx context.Context, username, password string) error {
	if !session.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer session.busy.Store(false)

	if _, err := session.api.Register(ctx, username, password); err != nil {
		return &RegisterError{Stage: StageRegister, Err: err}
	}
	if err := session.login(ctx, username, password); err != nil {
		return &RegisterError{Stage: StageAutoLogin, Err: err}
	}
	return nil
}

// Logout forgets the token in memory and in the store. Memory is always
// cleared; a store failure is still returned. A sign-in still in flight
// fails with [ErrSignedOut] instead of restoring a token.
func (session *Session) Logout() error {
	session.mu.Lock()
	session.logouts++
	listeners := session.swapTokenLocked("")
	err := session.store.Clear()
	session.mu.Unlock()

	notify(listeners, false)
	if err != nil {
		return fmt.Errorf("client: clear session: %w", err)
	}
	return nil
}

// Subscribe registers fn to be called with the new authentication state on
// every change. The returned function removes the subscription.
func (session *Session) Subscribe(fn func(authenticated bool)) (unsubscribe func()) {
	session.mu.Lock()
	id := session.nextID
	session.nextID++
	session.subscribers[id] = fn
	session.mu.Unlock()

	return func() {
		session.mu.Lock()
		delete(session.subscribers, id)
		session.mu.Unlock()
	}
}

func (session *Session) login(ctx context.Context, username, password string) error {
	session.mu.Lock()
	started := session.logouts
	session.mu.Unlock()

	token, err := session.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	session.mu.Lock()
	if session.logouts != started {
		session.mu.Unlock()
		return ErrSignedOut
	}
	if err := session.store.Save(token); err != nil {
		session.mu.Unlock()
		return fmt.Errorf("client: persist session: %w", err)
	}
	listeners := session.swapTokenLocked(token)
	session.mu.Unlock()

	notify(listeners, true)
	return nil
}

// swapTokenLocked sets the token and returns the subscribers to notify when
// the authenticated state flipped. session.mu must be held.
func (session *Session) swapTokenLocked(token string) []func(bool) {
	before := session.token != ""
	session.token = token
	if before == (token != "") {
		return nil
	}

	listeners := make([]func(bool), 0, len(session.subscribers))
	for _, fn := range session.subscribers {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []func(bool), authenticated bool) {
	for _, fn := range listeners {
		fn(authenticated)
	}
}
