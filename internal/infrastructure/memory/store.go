// Package memory implementa el almacenamiento transaccional en memoria (STORE_DRIVER=memory).
// Cada unidad de trabajo opera sobre una copia; la copia reemplaza al estado solo si la unidad termina sin error.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Operaciones donde se puede inyectar un fallo (tests de atomicidad).
const (
	OpProductCreate      = "products.Create"
	OpProductUpdate      = "products.Update"
	OpProductUpdateStock = "products.UpdateStock"
	OpSupplierCreate     = "suppliers.Create"
	OpSupplierUpdate     = "suppliers.Update"
	OpSupplierDelete     = "suppliers.Delete"
	OpOrderCreate        = "orders.Create"
	OpOrderMarkReceived  = "orders.MarkReceived"
	OpLedgerAppend       = "ledger.Append"
	OpCommit             = "commit"
)

var errReadOnly = errors.New("transacción de solo lectura")

type state struct {
	products  map[string]entity.Product
	suppliers map[string]entity.Supplier
	orders    map[string]entity.PurchaseOrder
	ledger    []entity.Transaction
}

func newState() *state {
	return &state{
		products:  make(map[string]entity.Product),
		suppliers: make(map[string]entity.Supplier),
		orders:    make(map[string]entity.PurchaseOrder),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]entity.Product, len(s.products)),
		suppliers: make(map[string]entity.Supplier, len(s.suppliers)),
		orders:    make(map[string]entity.PurchaseOrder, len(s.orders)),
		// cap limitado: un append en la copia nunca escribe sobre el arreglo confirmado.
		ledger: s.ledger[:len(s.ledger):len(s.ledger)],
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// Store guarda productos, proveedores, órdenes y ledger en memoria.
// Los escritores se serializan con el mutex, lo que cumple "un escritor por producto".
type Store struct {
	mu   sync.RWMutex
	data *state

	faultMu sync.Mutex
	faults  map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), faults: make(map[string]error)}
}

// FailOn hace que la operación op devuelva err en todas las unidades siguientes hasta ClearFaults.
func (s *Store) FailOn(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults = make(map[string]error)
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[op]
}

// Run ejecuta fn con repos sobre una copia del estado y la confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Storage("begin transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(s.repos(staged, false)); err != nil {
		return err
	}
	if err := s.fault(OpCommit); err != nil {
		return domain.Storage("commit transaction", err)
	}
	s.data = staged
	return nil
}

// RunSnapshot ejecuta fn sobre el estado confirmado sin permitir escrituras.
func (s *Store) RunSnapshot(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Storage("begin transaction", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.repos(s.data, true))
}

func (s *Store) repos(st *state, readOnly bool) inventory.Repos {
	tx := &txState{store: s, st: st, readOnly: readOnly}
	return inventory.Repos{
		Products:  &productRepo{tx},
		Suppliers: &supplierRepo{tx},
		Orders:    &orderRepo{tx},
		Ledger:    &ledgerRepo{tx},
	}
}

type txState struct {
	store    *Store
	st       *state
	readOnly bool
}

// write verifica que la tx admita escrituras y que no haya un fallo inyectado para op.
func (t *txState) write(op string) error {
	if t.readOnly {
		return errReadOnly
	}
	return t.store.fault(op)
}
