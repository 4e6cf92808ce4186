// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/stockroom/internal/product"
)

var productColumns = []string{"id", "name", "price", "createdat", "updatedat"}

func newMockRepository(t *testing.T) (*product.PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return product.NewRepository(mock), mock
}

func TestPostgresRepository_List(t *testing.T) {
	repository, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, price, createdat, updatedat FROM products ORDER BY createdat`).
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow("p1", "Widget", 2.5, now, now).
			AddRow("p2", "Gadget", 10.0, now, now))

	products, err := repository.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, 10.0, products[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List_Empty(t *testing.T) {
	repository, mock := newMockRepository(t)
	mock.ExpectQuery(`FROM products`).WillReturnRows(pgxmock.NewRows(productColumns))

	products, err := repository.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestPostgresRepository_FindByID(t *testing.T) {
	repository, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow("p1", "Widget", 2.5, now, now))
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("p2").
		WillReturnError(pgx.ErrNoRows)

	found, err := repository.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)

	_, err = repository.FindByID(context.Background(), "p2")
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	repository, mock := newMockRepository(t)
	item := &product.Product{ID: "p1", Name: "Widget", Price: 2.5}

	mock.ExpectExec(`INSERT INTO products`).
		WithArgs("p1", "Widget", 2.5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repository.Create(context.Background(), item))
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update(t *testing.T) {
	repository, mock := newMockRepository(t)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`UPDATE products`).
		WithArgs("p1", "Widget Pro", 3.0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow("p1", "Widget Pro", 3.0, created, updated))
	mock.ExpectQuery(`UPDATE products`).
		WithArgs("p9", "Ghost", 1.0, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	item := &product.Product{ID: "p1", Name: "Widget Pro", Price: 3}
	require.NoError(t, repository.Update(context.Background(), item))
	assert.Equal(t, created, item.CreatedAt)
	assert.Equal(t, updated, item.UpdatedAt)

	err := repository.Update(context.Background(), &product.Product{ID: "p9", Name: "Ghost", Price: 1})
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM products`).WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM products`).WithArgs("p2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repository.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, repository.Delete(context.Background(), "p2"), product.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
