// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package product implements the protected product catalog resource.
package product

import "time"

// NameMaxLength bounds the product name in characters.
const NameMaxLength = 255

// JSON field names used in validation details.
const (
	FieldID    = "id"
	FieldName  = "name"
	FieldPrice = "price"
)

// Product is a catalog entry.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdat"`
	UpdatedAt time.Time `json:"updatedat"`
}

// Input carries the writable fields of a [Product].
type Input struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
