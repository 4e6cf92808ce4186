// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no product has the given ID.
var ErrNotFound = errors.New("product: not found")

// Repository defines the data access contract for products.
type Repository interface {
	// List returns every product, oldest first.
	List(ctx context.Context) ([]*Product, error)

	// FindByID returns [ErrNotFound] if the product does not exist.
	FindByID(ctx context.Context, id string) (*Product, error)

	Create(ctx context.Context, product *Product) error

	// Update overwrites name and price. Returns [ErrNotFound] if missing.
	Update(ctx context.Context, product *Product) error

	// Delete returns [ErrNotFound] if missing.
	Delete(ctx context.Context, id string) error
}
