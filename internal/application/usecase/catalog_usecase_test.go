package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newCatalog(t *testing.T) (*memory.Store, *usecase.SupplierUseCase, *usecase.ProductUseCase) {
	t.Helper()
	store := memory.NewStore()
	clock := fixedClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	return store, usecase.NewSupplierUseCase(store, clock, zerolog.Nop()), usecase.NewProductUseCase(store, clock, zerolog.Nop())
}

func ptr[T any](v T) *T { return &v }

func TestSupplierUseCase_CreateAndUpdate(t *testing.T) {
	_, suppliers, _ := newCatalog(t)
	ctx := context.Background()

	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "  Acme  ", LeadTimeDays: 14})
	require.NoError(t, err)
	assert.Equal(t, "Acme", s.Name)
	assert.NotEmpty(t, s.ID)

	updated, err := suppliers.Update(ctx, s.ID, dto.UpdateSupplierRequest{LeadTimeDays: ptr(21)})
	require.NoError(t, err)
	assert.Equal(t, 21, updated.LeadTimeDays)
	assert.Equal(t, "Acme", updated.Name)

	got, err := suppliers.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, got.LeadTimeDays)

	list, err := suppliers.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestSupplierUseCase_Validation(t *testing.T) {
	_, suppliers, _ := newCatalog(t)
	ctx := context.Background()

	_, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = suppliers.Create(ctx, dto.CreateSupplierRequest{Name: " ", LeadTimeDays: 3})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 3})
	require.NoError(t, err)
	_, err = suppliers.Update(ctx, s.ID, dto.UpdateSupplierRequest{LeadTimeDays: ptr(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = suppliers.Update(ctx, "no-existe", dto.UpdateSupplierRequest{Name: ptr("X")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = suppliers.GetByID(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSupplierUseCase_Delete(t *testing.T) {
	_, suppliers, products := newCatalog(t)
	ctx := context.Background()

	free, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Libre", LeadTimeDays: 5})
	require.NoError(t, err)
	used, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 5})
	require.NoError(t, err)
	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "A", SupplierID: used.ID})
	require.NoError(t, err)

	require.NoError(t, suppliers.Delete(ctx, free.ID))
	_, err = suppliers.GetByID(ctx, free.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = suppliers.Delete(ctx, used.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "SUPPLIER_IN_USE", de.Code)
	_, err = suppliers.GetByID(ctx, used.ID)
	assert.NoError(t, err)

	assert.True(t, errors.Is(suppliers.Delete(ctx, free.ID), domain.ErrNotFound))
	assert.True(t, errors.Is(suppliers.Delete(ctx, ""), domain.ErrInvalidInput))
}

func TestProductUseCase_CreateRecordsOpeningStockInLedger(t *testing.T) {
	store, suppliers, products := newCatalog(t)
	ctx := context.Background()
	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 14})
	require.NoError(t, err)

	p, err := products.Create(ctx, dto.CreateProductRequest{
		SKU: "WID-001", Name: "Widget", Price: decimal.RequireFromString("12.50"),
		SupplierID: s.ID, OpeningStock: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, p.CurrentStock)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))

	var entries []*entity.Transaction
	err = store.RunSnapshot(ctx, func(r inventory.Repos) error {
		var err error
		entries, err = r.Ledger.ListRecent(ctx, p.ID, 10)
		return err
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TransactionInbound, entries[0].Type)
	assert.Equal(t, 40, entries[0].Quantity)
}

func TestProductUseCase_CreateWithoutStockHasEmptyLedger(t *testing.T) {
	store, suppliers, products := newCatalog(t)
	ctx := context.Background()
	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 14})
	require.NoError(t, err)

	p, err := products.Create(ctx, dto.CreateProductRequest{SKU: "WID-001", Name: "Widget", SupplierID: s.ID})
	require.NoError(t, err)

	err = store.RunSnapshot(ctx, func(r inventory.Repos) error {
		totals, err := r.Ledger.Totals(ctx, p.ID)
		assert.Zero(t, totals.Balance())
		return err
	})
	require.NoError(t, err)
}

func TestProductUseCase_CreateErrors(t *testing.T) {
	_, suppliers, products := newCatalog(t)
	ctx := context.Background()
	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 14})
	require.NoError(t, err)

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", SupplierID: "no-existe"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", SupplierID: s.ID, OpeningStock: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", SupplierID: s.ID, Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", SupplierID: s.ID})
	require.NoError(t, err)
	_, err = products.Create(ctx, dto.CreateProductRequest{SKU: " A ", Name: "B", SupplierID: s.ID})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestProductUseCase_UpdateDoesNotTouchStock(t *testing.T) {
	_, suppliers, products := newCatalog(t)
	ctx := context.Background()
	s1, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 14})
	require.NoError(t, err)
	s2, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Beta", LeadTimeDays: 3})
	require.NoError(t, err)
	p, err := products.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", SupplierID: s1.ID, OpeningStock: 7})
	require.NoError(t, err)

	out, err := products.Update(ctx, p.ID, dto.UpdateProductRequest{
		Name:       ptr("Nuevo"),
		Price:      ptr(decimal.NewFromInt(99)),
		SupplierID: ptr(s2.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", out.Name)
	assert.Equal(t, s2.ID, out.SupplierID)
	assert.Equal(t, 7, out.CurrentStock)

	_, err = products.Update(ctx, p.ID, dto.UpdateProductRequest{SupplierID: ptr("no-existe")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = products.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: ptr("X")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductUseCase_ListIsPaged(t *testing.T) {
	_, suppliers, products := newCatalog(t)
	ctx := context.Background()
	s, err := suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Acme", LeadTimeDays: 14})
	require.NoError(t, err)
	for _, sku := range []string{"C", "A", "B"} {
		_, err := products.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: sku, SupplierID: s.ID})
		require.NoError(t, err)
	}

	page, err := products.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A", page.Items[0].SKU)
	assert.Equal(t, "B", page.Items[1].SKU)

	page, err = products.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "C", page.Items[0].SKU)
}
