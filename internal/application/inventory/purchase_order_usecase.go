package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// PurchaseOrderDocument datos necesarios para el documento que se envía al proveedor.
type PurchaseOrderDocument struct {
	Order    *entity.PurchaseOrder
	Product  *entity.Product
	Supplier *entity.Supplier
}

// PurchaseOrderPDFGenerator puerto para renderizar la orden de compra.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// PurchaseOrderUseCase flujo de órdenes de compra: SENT_TO_SUPPLIER -> RECEIVED.
type PurchaseOrderUseCase struct {
	txRunner  TxRunner
	clock     Clock
	publisher EventPublisher
	generator PurchaseOrderPDFGenerator
	log       zerolog.Logger
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner TxRunner,
	clock Clock,
	publisher EventPublisher,
	generator PurchaseOrderPDFGenerator,
	log zerolog.Logger,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:  txRunner,
		clock:     clock,
		publisher: publisher,
		generator: generator,
		log:       log.With().Str("usecase", "purchase_order").Logger(),
	}
}

// Create registra una orden enviada al proveedor. No mueve stock.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, productID string, quantity int) (*dto.PurchaseOrderResponse, error) {
	ctx, span := startSpan(ctx, "inventory.CreatePurchaseOrder",
		attribute.String("product_id", productID),
		attribute.Int("quantity", quantity))
	po, err := uc.create(ctx, productID, quantity)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

func (uc *PurchaseOrderUseCase) create(ctx context.Context, productID string, quantity int) (*entity.PurchaseOrder, error) {
	if quantity <= 0 {
		return nil, domain.InvalidQuantity(quantity)
	}
	if productID == "" {
		return nil, domain.InvalidInput("product_id es obligatorio")
	}
	var po *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		po, err = createPurchaseOrderTx(ctx, r, productID, quantity, uc.clock)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("purchase_order_id", po.ID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("orden de compra enviada al proveedor")
	return po, nil
}

// createPurchaseOrderTx valida que el producto exista y persiste la orden con los repos de la tx.
func createPurchaseOrderTx(ctx context.Context, r Repos, productID string, quantity int, clock Clock) (*entity.PurchaseOrder, error) {
	if quantity <= 0 {
		return nil, domain.InvalidQuantity(quantity)
	}
	product, err := r.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", productID)
	}
	po := &entity.PurchaseOrder{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  quantity,
		Status:    entity.PurchaseOrderSent,
		CreatedAt: clock.Now(),
	}
	if err := r.Orders.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Receive marca la orden como RECEIVED y acredita el stock en una sola transacción.
// Una segunda recepción devuelve ALREADY_RECEIVED sin efectos.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, poID string) (*dto.ReceivePurchaseOrderResponse, error) {
	ctx, span := startSpan(ctx, "inventory.ReceivePurchaseOrder", attribute.String("purchase_order_id", poID))
	res, err := uc.receive(ctx, poID)
	endSpan(span, err)
	return res, err
}

func (uc *PurchaseOrderUseCase) receive(ctx context.Context, poID string) (*dto.ReceivePurchaseOrderResponse, error) {
	if poID == "" {
		return nil, domain.InvalidInput("id de orden es obligatorio")
	}
	now := uc.clock.Now()
	var (
		po       *entity.PurchaseOrder
		txn      *entity.Transaction
		newStock int
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		// Bloquea la orden: dos recepciones concurrentes se serializan aquí.
		po, err = r.Orders.GetForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.NotFound("orden de compra", poID)
		}
		if po.IsReceived() {
			return domain.AlreadyReceived(poID)
		}
		ok, err := r.Orders.MarkReceived(ctx, poID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.AlreadyReceived(poID)
		}
		txn, newStock, err = applyMovementTx(ctx, r, po.ProductID, entity.TransactionInbound, po.Quantity, po.ID, now)
		return err
	})
	if err != nil {
		if de, ok := asDomainError(err); ok && de.Kind == domain.KindConflict {
			countConflict(ctx, de.Code)
			uc.log.Warn().Str("purchase_order_id", poID).Str("code", de.Code).Msg("recepción rechazada")
		} else if domain.KindOf(err) == domain.KindStorage {
			uc.log.Error().Err(err).Str("purchase_order_id", poID).Msg("fallo al recibir orden de compra")
		}
		return nil, err
	}

	uc.log.Info().
		Str("purchase_order_id", poID).
		Str("product_id", po.ProductID).
		Int("quantity", po.Quantity).
		Int("new_stock", newStock).
		Msg("orden de compra recibida")
	committed(ctx, uc.publisher, uc.log, txn, newStock)

	return &dto.ReceivePurchaseOrderResponse{
		PurchaseOrderID: poID,
		ProductID:       po.ProductID,
		NewStock:        newStock,
		LedgerEntryID:   txn.ID,
	}, nil
}

// Get obtiene una orden por ID.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, poID string) (*dto.PurchaseOrderResponse, error) {
	var po *entity.PurchaseOrder
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		var err error
		po, err = r.Orders.GetByID(ctx, poID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFound("orden de compra", poID)
	}
	return toPurchaseOrderResponse(po), nil
}

// List lista órdenes de la más reciente a la más antigua; status vacío = todas.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, status string, limit, offset int) (*dto.PurchaseOrderListResponse, error) {
	if status != "" && status != entity.PurchaseOrderSent && status != entity.PurchaseOrderReceived {
		return nil, domain.InvalidInput("estado de orden inválido: " + status)
	}
	var list []*entity.PurchaseOrder
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		var err error
		list, err = r.Orders.List(ctx, status, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		items = append(items, *toPurchaseOrderResponse(po))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// PDF genera el documento de la orden para el proveedor.
// Retorna (pdfBytes, filename, nil) o NOT_FOUND si la orden no existe.
func (uc *PurchaseOrderUseCase) PDF(ctx context.Context, poID string) ([]byte, string, error) {
	var doc PurchaseOrderDocument
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		po, err := r.Orders.GetByID(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.NotFound("orden de compra", poID)
		}
		product, err := r.Products.GetByID(ctx, po.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto", po.ProductID)
		}
		supplier, err := r.Suppliers.GetByID(ctx, product.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.NotFound("proveedor", product.SupplierID)
		}
		doc = PurchaseOrderDocument{Order: po, Product: product, Supplier: supplier}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GeneratePurchaseOrderPDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar orden de compra: %w", err)
	}
	return pdfBytes, fmt.Sprintf("orden-compra-%s.pdf", shortID(poID)), nil
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	return &dto.PurchaseOrderResponse{
		ID:         po.ID,
		ProductID:  po.ProductID,
		Quantity:   po.Quantity,
		Status:     po.Status,
		CreatedAt:  po.CreatedAt,
		ReceivedAt: po.ReceivedAt,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
