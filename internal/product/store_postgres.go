// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/stockroom/internal/platform/dberr"
	"github.com/taibuivan/stockroom/internal/platform/postgres"
)

const selectColumns = `id, name, price, createdat, updatedat`

// PostgresRepository implements [Repository] on the products table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a PostgreSQL [Repository].
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all products ordered by creation time.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Product, error) {
	const query = `SELECT ` + selectColumns + ` FROM products ORDER BY createdat, id`

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_product_repo_list_failed: %w", err)
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_product_repo_scan_failed: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_product_repo_list_failed: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	const query = `SELECT ` + selectColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres_product_repo_find_failed: %w", err)
	}
	return product, nil
}

// Create inserts a new product row, stamping both timestamps.
func (repository *PostgresRepository) Create(ctx context.Context, product *Product) error {
	const query = `
		INSERT INTO products (id, name, price, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5)`

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_product_repo_create_failed: %w", err)
	}
	return nil
}

// Update overwrites the writable fields and refreshes product from the row.
func (repository *PostgresRepository) Update(ctx context.Context, product *Product) error {
	const query = `
		UPDATE products
		SET name = $2, price = $3, updatedat = $4
		WHERE id = $1
		RETURNING ` + selectColumns

	updated, err := scanProduct(repository.db.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		time.Now().UTC(),
	))
	if err != nil {
		if dberr.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("postgres_product_repo_update_failed: %w", err)
	}

	*product = *updated
	return nil
}

// Delete removes a product row.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`

	tag, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_product_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	product := &Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
