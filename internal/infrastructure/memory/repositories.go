package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.SupplierRepository      = (*supplierRepo)(nil)
	_ repository.PurchaseOrderRepository = (*orderRepo)(nil)
	_ repository.TransactionRepository   = (*ledgerRepo)(nil)
)

type productRepo struct{ tx *txState }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	if err := r.tx.write(OpProductCreate); err != nil {
		return err
	}
	for _, existing := range r.tx.st.products {
		if existing.SKU == p.SKU {
			return domain.Duplicate("ya existe un producto con SKU " + p.SKU)
		}
	}
	if p.CurrentStock < 0 {
		return domain.InsufficientStock(0, -p.CurrentStock)
	}
	cp := *p
	cp.ID = strings.Clone(p.ID)
	cp.SKU = strings.Clone(p.SKU)
	cp.Name = strings.Clone(p.Name)
	cp.SupplierID = strings.Clone(p.SupplierID)
	r.tx.st.products[cp.ID] = cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.tx.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.tx.st.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// GetForUpdate no necesita bloqueo propio: Run ya tiene el mutex de escritura.
func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	if err := r.tx.write(OpProductUpdate); err != nil {
		return err
	}
	cur, ok := r.tx.st.products[p.ID]
	if !ok {
		return domain.NotFound("producto", p.ID)
	}
	cur.Name = strings.Clone(p.Name)
	cur.Price = p.Price
	cur.SupplierID = strings.Clone(p.SupplierID)
	cur.UpdatedAt = p.UpdatedAt
	r.tx.st.products[cur.ID] = cur
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock int) error {
	if err := r.tx.write(OpProductUpdateStock); err != nil {
		return err
	}
	cur, ok := r.tx.st.products[id]
	if !ok {
		return domain.NotFound("producto", id)
	}
	if stock < 0 {
		return domain.InsufficientStock(cur.CurrentStock, cur.CurrentStock-stock)
	}
	cur.CurrentStock = stock
	// La clave se reescribe con el ID ya almacenado, nunca con el del llamador.
	r.tx.st.products[cur.ID] = cur
	return nil
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	all := make([]*entity.Product, 0, len(r.tx.st.products))
	for _, p := range r.tx.st.products {
		cp := p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

type supplierRepo struct{ tx *txState }

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	if err := r.tx.write(OpSupplierCreate); err != nil {
		return err
	}
	cp := cloneSupplier(s)
	r.tx.st.suppliers[cp.ID] = cp
	return nil
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	s, ok := r.tx.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *supplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	if err := r.tx.write(OpSupplierUpdate); err != nil {
		return err
	}
	cur, ok := r.tx.st.suppliers[s.ID]
	if !ok {
		return domain.NotFound("proveedor", s.ID)
	}
	cp := cloneSupplier(s)
	cp.ID = cur.ID
	r.tx.st.suppliers[cur.ID] = cp
	return nil
}

func (r *supplierRepo) Delete(_ context.Context, id string) error {
	if err := r.tx.write(OpSupplierDelete); err != nil {
		return err
	}
	if _, ok := r.tx.st.suppliers[id]; !ok {
		return domain.NotFound("proveedor", id)
	}
	for _, p := range r.tx.st.products {
		if p.SupplierID == id {
			return domain.SupplierInUse(id)
		}
	}
	delete(r.tx.st.suppliers, id)
	return nil
}

func (r *supplierRepo) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	all := make([]*entity.Supplier, 0, len(r.tx.st.suppliers))
	for _, s := range r.tx.st.suppliers {
		cp := s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), nil
}

type orderRepo struct{ tx *txState }

func (r *orderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	if err := r.tx.write(OpOrderCreate); err != nil {
		return err
	}
	cp := *po
	cp.ID = strings.Clone(po.ID)
	cp.ProductID = strings.Clone(po.ProductID)
	cp.Status = strings.Clone(po.Status)
	r.tx.st.orders[cp.ID] = cp
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := r.tx.st.orders[id]
	if !ok {
		return nil, nil
	}
	return &po, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) MarkReceived(_ context.Context, id string, receivedAt time.Time) (bool, error) {
	if err := r.tx.write(OpOrderMarkReceived); err != nil {
		return false, err
	}
	po, ok := r.tx.st.orders[id]
	if !ok || po.Status != entity.PurchaseOrderSent {
		return false, nil
	}
	at := receivedAt
	po.Status = entity.PurchaseOrderReceived
	po.ReceivedAt = &at
	r.tx.st.orders[po.ID] = po
	return true, nil
}

func (r *orderRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	all := make([]*entity.PurchaseOrder, 0, len(r.tx.st.orders))
	for _, po := range r.tx.st.orders {
		if status != "" && po.Status != status {
			continue
		}
		cp := po
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, limit, offset), nil
}

type ledgerRepo struct{ tx *txState }

func (r *ledgerRepo) Append(_ context.Context, t *entity.Transaction) error {
	if err := r.tx.write(OpLedgerAppend); err != nil {
		return err
	}
	if t.Quantity <= 0 {
		return domain.InvalidQuantity(t.Quantity)
	}
	// Igual que el índice único parcial de PostgreSQL: una sola entrada por orden recibida.
	if t.Type == entity.TransactionInbound && t.Reference != "" {
		for _, e := range r.tx.st.ledger {
			if e.Type == entity.TransactionInbound && e.Reference == t.Reference {
				return domain.AlreadyReceived(t.Reference)
			}
		}
	}
	cp := *t
	cp.ID = strings.Clone(t.ID)
	cp.ProductID = strings.Clone(t.ProductID)
	cp.Type = strings.Clone(t.Type)
	cp.Reference = strings.Clone(t.Reference)
	r.tx.st.ledger = append(r.tx.st.ledger, cp)
	return nil
}

func (r *ledgerRepo) ListOutboundInWindow(_ context.Context, productID string, from, to time.Time) ([]*entity.Transaction, error) {
	out := make([]*entity.Transaction, 0)
	for _, t := range r.tx.st.ledger {
		if t.ProductID != productID || t.Type != entity.TransactionOutbound {
			continue
		}
		if t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) {
			continue
		}
		cp := t
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ledgerRepo) ListRecent(_ context.Context, productID string, limit int) ([]*entity.Transaction, error) {
	out := make([]*entity.Transaction, 0)
	// Recorrido inverso: a igual fecha, el último insertado va primero.
	for i := len(r.tx.st.ledger) - 1; i >= 0; i-- {
		t := r.tx.st.ledger[i]
		if productID != "" && t.ProductID != productID {
			continue
		}
		cp := t
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ledgerRepo) Totals(_ context.Context, productID string) (repository.LedgerTotals, error) {
	var totals repository.LedgerTotals
	for _, t := range r.tx.st.ledger {
		if t.ProductID != productID {
			continue
		}
		switch t.Type {
		case entity.TransactionInbound:
			totals.Inbound += t.Quantity
		case entity.TransactionOutbound:
			totals.Outbound += t.Quantity
		}
	}
	return totals, nil
}

// cloneSupplier copia los strings: el llamador puede reutilizar su memoria.
func cloneSupplier(s *entity.Supplier) entity.Supplier {
	cp := *s
	cp.ID = strings.Clone(s.ID)
	cp.Name = strings.Clone(s.Name)
	return cp
}

func page[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
