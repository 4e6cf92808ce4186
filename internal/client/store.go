// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/taibuivan/stockroom/internal/platform/constants"
)

// TokenStore is durable storage for the session token.
//
// Load returns "" without error when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the raw token in a single file readable only by its owner.
type FileStore struct {
	path string
}

// NewFileStore creates a [FileStore] at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultTokenPath returns the per-user token location,
// e.g. ~/.config/stockroom/token on Linux.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("client: locate config dir: %w", err)
	}
	return filepath.Join(dir, constants.AppName, "token"), nil
}

// Path returns the file location.
func (store *FileStore) Path() string {
	return store.path
}

// Load implements [TokenStore].
func (store *FileStore) Load() (string, error) {
	raw, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("client: read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save implements [TokenStore]. The write is atomic: readers see either the
// previous token or the new one, never a partial file.
func (store *FileStore) Save(token string) error {
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("client: create token dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("client: create temp token: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("client: chmod token: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("client: write token: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("client: sync token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("client: close token: %w", err)
	}

	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("client: replace token: %w", err)
	}
	return nil
}

// Clear implements [TokenStore]. Clearing an absent token is not an error.
func (store *FileStore) Clear() error {
	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("client: remove token: %w", err)
	}
	return nil
}

// MemoryStore is a process-local [TokenStore].
type MemoryStore struct {
	mu    sync.Mutex
	token string
	err   error
}

// NewMemoryStore creates a store preloaded with token, which may be empty.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// FailWith makes every later call return err. Pass nil to recover.
func (store *MemoryStore) FailWith(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.err = err
}

func (store *MemoryStore) Load() (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.token, store.err
}

func (store *MemoryStore) Save(token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return store.err
	}
	store.token = token
	return nil
}

func (store *MemoryStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return store.err
	}
	store.token = ""
	return nil
}
