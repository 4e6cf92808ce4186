// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/taibuivan/stockroom/internal/platform/apperr"
	"github.com/taibuivan/stockroom/internal/platform/validate"
	"github.com/taibuivan/stockroom/pkg/uuid"
)

// Service implements the product use cases.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

// List returns every product.
func (service *Service) List(context context.Context) ([]*Product, error) {
	products, err := service.repository.List(context)
	if err != nil {
		return nil, fmt.Errorf("product_service_list_failed: %w", err)
	}
	return products, nil
}

// Get returns one product or [apperr.NotFound].
func (service *Service) Get(context context.Context, id string) (*Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	product, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, mapStoreError(err, "product_service_get_failed")
	}
	return product, nil
}

// Create validates and stores a new product.
func (service *Service) Create(context context.Context, input Input) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product := &Product{
		ID:    uuid.New(),
		Name:  input.Name,
		Price: input.Price,
	}
	if err := service.repository.Create(context, product); err != nil {
		return nil, fmt.Errorf("product_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "product_created", slog.String("product_id", product.ID))
	return product, nil
}

// Update replaces the name and price of an existing product.
func (service *Service) Update(context context.Context, id string, input Input) (*Product, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product := &Product{ID: id, Name: input.Name, Price: input.Price}
	if err := service.repository.Update(context, product); err != nil {
		return nil, mapStoreError(err, "product_service_update_failed")
	}
	return product, nil
}

// Delete removes a product.
func (service *Service) Delete(context context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := service.repository.Delete(context, id); err != nil {
		return mapStoreError(err, "product_service_delete_failed")
	}

	service.logger.InfoContext(context, "product_deleted", slog.String("product_id", id))
	return nil
}

func validateID(id string) error {
	validator := &validate.Validator{}
	return validator.UUID(FieldID, id).Err()
}

func validateInput(input Input) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, NameMaxLength).
		Custom(FieldPrice, input.Price < 0, "Must not be negative").
		Custom(FieldPrice, math.IsNaN(input.Price) || math.IsInf(input.Price, 0), "Must be a finite number")
	return validator.Err()
}

func mapStoreError(err error, operation string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Product")
	}
	return fmt.Errorf("%s: %w", operation, err)
}
