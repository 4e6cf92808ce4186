// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/stockroom/internal/platform/dberr"
	"github.com/taibuivan/stockroom/internal/platform/postgres"
)

// PostgresUserRepository implements [UserRepository] on the users table.
type PostgresUserRepository struct {
	db postgres.DB
}

// NewUserRepository creates a PostgreSQL [UserRepository].
func NewUserRepository(db postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create inserts a new account row.
//
// The unique constraint on username is the final arbiter of uniqueness: a
// violation maps to [ErrDuplicateUsername].
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (id, username, passwordhash, createdat)
		VALUES ($1, $2, $3, $4)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByUsername retrieves an account by its exact username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, passwordhash, createdat
		FROM users
		WHERE username = $1`

	return repository.findOne(ctx, "find_by_username", query, username)
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, passwordhash, createdat
		FROM users
		WHERE id = $1`

	return repository.findOne(ctx, "find_by_id", query, id)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, operation, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", operation, err)
	}

	return user, nil
}
