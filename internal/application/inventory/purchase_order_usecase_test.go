package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/memory"
)

func TestCreatePurchaseOrder_DoesNotMoveStock(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)

	po, err := f.orders.Create(context.Background(), pid, 25)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderSent, po.Status)
	assert.Equal(t, 25, po.Quantity)
	assert.Nil(t, po.ReceivedAt)
	assert.Equal(t, 10, f.stock(t, pid))
	assert.Len(t, f.ledger(t, pid), 1)
}

func TestCreatePurchaseOrder_Validation(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)

	_, err := f.orders.Create(context.Background(), pid, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	_, err = f.orders.Create(context.Background(), "no-existe", 5)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReceivePurchaseOrder_CreditsStockOnce(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	po, err := f.orders.Create(context.Background(), pid, 25)
	require.NoError(t, err)

	res, err := f.orders.Receive(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, res.NewStock)

	_, err = f.orders.Receive(context.Background(), po.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyReceived))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	assert.Equal(t, 35, f.stock(t, pid))
	entries := f.ledger(t, pid)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.TransactionInbound, entries[0].Type)
	assert.Equal(t, po.ID, entries[0].Reference)

	stored := f.order(t, po.ID)
	assert.True(t, stored.IsReceived())
	require.NotNil(t, stored.ReceivedAt)
	assert.Equal(t, baseTime, *stored.ReceivedAt)
}

func TestReceivePurchaseOrder_ConcurrentReceivesCreditOnce(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 0)
	po, err := f.orders.Create(context.Background(), pid, 20)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.Receive(context.Background(), po.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAlreadyReceived):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, conflict)
	assert.Equal(t, 20, f.stock(t, pid))
	assert.Len(t, f.publisher.Events(), 1)
}

func TestReceivePurchaseOrder_StockFailureKeepsOrderSent(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	po, err := f.orders.Create(context.Background(), pid, 5)
	require.NoError(t, err)

	f.store.FailOn(memory.OpProductUpdateStock, errors.New("timeout"))
	_, err = f.orders.Receive(context.Background(), po.ID)
	require.Error(t, err)
	f.store.ClearFaults()

	assert.Equal(t, entity.PurchaseOrderSent, f.order(t, po.ID).Status)
	assert.Equal(t, 10, f.stock(t, pid))

	// La orden sigue recibible después del fallo.
	res, err := f.orders.Receive(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, res.NewStock)
}

func TestReceivePurchaseOrder_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Receive(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListPurchaseOrders(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	first, err := f.orders.Create(context.Background(), pid, 1)
	require.NoError(t, err)
	f.clock.Set(baseTime.Add(1))
	second, err := f.orders.Create(context.Background(), pid, 2)
	require.NoError(t, err)
	_, err = f.orders.Receive(context.Background(), first.ID)
	require.NoError(t, err)

	all, err := f.orders.List(context.Background(), "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, second.ID, all.Items[0].ID)

	sent, err := f.orders.List(context.Background(), entity.PurchaseOrderSent, 10, 0)
	require.NoError(t, err)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, second.ID, sent.Items[0].ID)

	_, err = f.orders.List(context.Background(), "LOST", 10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPurchaseOrderPDF(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	po, err := f.orders.Create(context.Background(), pid, 3)
	require.NoError(t, err)

	out, filename, err := f.orders.PDF(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, "orden-compra-"+po.ID[:8]+".pdf", filename)
	assert.Equal(t, "%PDF-"+po.ID, string(out))

	_, _, err = f.orders.PDF(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
