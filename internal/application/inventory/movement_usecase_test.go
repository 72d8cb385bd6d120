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

func TestRecordStockOut_DecrementsAndAppendsLedger(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 40)

	res, err := f.movements.RecordStockOut(context.Background(), pid, 15)
	require.NoError(t, err)
	assert.Equal(t, 25, res.NewStock)
	assert.Equal(t, 25, f.stock(t, pid))

	entries := f.ledger(t, pid)
	require.Len(t, entries, 2)
	assert.Equal(t, res.LedgerEntryID, entries[0].ID)
	assert.Equal(t, entity.TransactionOutbound, entries[0].Type)
	assert.Equal(t, 15, entries[0].Quantity)
	assert.Equal(t, baseTime, entries[0].CreatedAt)
}

func TestRecordStockOut_ExactStockLeavesZero(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 7)

	res, err := f.movements.RecordStockOut(context.Background(), pid, 7)
	require.NoError(t, err)
	assert.Zero(t, res.NewStock)
}

func TestRecordStockOut_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 5)

	_, err := f.movements.RecordStockOut(context.Background(), pid, 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindConflict, de.Kind)
	assert.Equal(t, 5, de.Available)

	assert.Equal(t, 5, f.stock(t, pid))
	assert.Len(t, f.ledger(t, pid), 1)
	assert.Empty(t, f.publisher.Events())
}

func TestRecordStockOut_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 5)

	for _, qty := range []int{0, -3} {
		_, err := f.movements.RecordStockOut(context.Background(), pid, qty)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity), "qty %d", qty)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	}
	assert.Equal(t, 5, f.stock(t, pid))
	assert.Len(t, f.ledger(t, pid), 1)
}

func TestRecordStockOut_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.movements.RecordStockOut(context.Background(), "no-existe", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

// Dos salidas de 30 sobre stock 40: exactamente una se confirma.
func TestRecordStockOut_ConcurrentOversellIsRejected(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 40)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.movements.RecordStockOut(context.Background(), pid, 30)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected = append(rejected, err)
				return
			}
			ok++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	require.Len(t, rejected, 1)
	var de *domain.Error
	require.True(t, errors.As(rejected[0], &de))
	assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
	assert.Equal(t, 10, de.Available)
	assert.Equal(t, 10, f.stock(t, pid))
	assert.Len(t, f.ledger(t, pid), 2)
}

func TestRecordStockOut_ManyConcurrentWritersKeepLedgerConsistent(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.movements.RecordStockOut(context.Background(), pid, 3)
		}()
	}
	wg.Wait()

	// 33 salidas de 3 caben en 100; la 34ª no.
	assert.Equal(t, 1, f.stock(t, pid))
	rec, err := f.reconcile.Reconcile(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 99, rec.Outbound)
}

func TestRecordStockOut_LedgerFailureRollsBackCounter(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	f.store.FailOn(memory.OpLedgerAppend, errors.New("disco lleno"))

	_, err := f.movements.RecordStockOut(context.Background(), pid, 4)
	require.Error(t, err)

	f.store.ClearFaults()
	assert.Equal(t, 10, f.stock(t, pid))
	assert.Len(t, f.ledger(t, pid), 1)
	assert.Empty(t, f.publisher.Events())
}

func TestRecordStockOut_CommitFailureIsStorage(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	f.store.FailOn(memory.OpCommit, errors.New("conexión perdida"))

	_, err := f.movements.RecordStockOut(context.Background(), pid, 4)
	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrStorage))

	f.store.ClearFaults()
	assert.Equal(t, 10, f.stock(t, pid))
}

func TestRecordStockOut_CancelledContext(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.movements.RecordStockOut(ctx, pid, 1)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	assert.Equal(t, 10, f.stock(t, pid))
}

func TestRecordStockOut_PublishesEventAfterCommit(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)

	res, err := f.movements.RecordStockOut(context.Background(), pid, 4)
	require.NoError(t, err)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, res.LedgerEntryID, events[0].TransactionID)
	assert.Equal(t, pid, events[0].ProductID)
	assert.Equal(t, entity.TransactionOutbound, events[0].Type)
	assert.Equal(t, 4, events[0].Quantity)
	assert.Equal(t, 6, events[0].NewStock)
}

func TestRecordStockOut_PublisherFailureDoesNotFailMovement(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)
	f.publisher.err = errors.New("broker caído")

	res, err := f.movements.RecordStockOut(context.Background(), pid, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, res.NewStock)
	assert.Equal(t, 6, f.stock(t, pid))
}

func TestApplyMovement_InvalidType(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)

	_, err := f.movements.ApplyMovement(context.Background(), pid, "TRANSFER", 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 10, f.stock(t, pid))
}

func TestApplyMovement_Inbound(t *testing.T) {
	f := newFixture(t)
	pid := f.product(t, f.supplier(t, 14), "SKU-1", 10)

	res, err := f.movements.ApplyMovement(context.Background(), pid, entity.TransactionInbound, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, res.NewStock)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	sid := f.supplier(t, 14)
	p1 := f.product(t, sid, "SKU-1", 10)
	p2 := f.product(t, sid, "SKU-2", 10)
	f.sellDaily(t, p1, 5, []int{1})

	h, err := f.movements.History(context.Background(), p1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Limit)
	require.Len(t, h.Items, 3)
	assert.True(t, !h.Items[0].CreatedAt.Before(h.Items[1].CreatedAt))

	all, err := f.movements.History(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, all.Limit)
	assert.Len(t, all.Items, 7)

	_, err = f.movements.History(context.Background(), "no-existe", 10)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	h2, err := f.movements.History(context.Background(), p2, 10000)
	require.NoError(t, err)
	assert.Equal(t, 500, h2.Limit)
	assert.Len(t, h2.Items, 1)
}
