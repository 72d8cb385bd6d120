package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// DefaultHistoryLimit cantidad de movimientos que devuelve el historial si no se indica otra.
const DefaultHistoryLimit = 50

// MovementUseCase registra movimientos del ledger de forma transaccional con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback.
type MovementUseCase struct {
	txRunner  TxRunner
	clock     Clock
	publisher EventPublisher
	log       zerolog.Logger
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, clock Clock, publisher EventPublisher, log zerolog.Logger) *MovementUseCase {
	return &MovementUseCase{
		txRunner:  txRunner,
		clock:     clock,
		publisher: publisher,
		log:       log.With().Str("usecase", "movement").Logger(),
	}
}

// ApplyMovement aplica un movimiento INBOUND u OUTBOUND y devuelve el stock resultante.
// Contador y ledger cambian juntos o no cambian.
func (uc *MovementUseCase) ApplyMovement(ctx context.Context, productID, typ string, quantity int) (*dto.MovementResponse, error) {
	ctx, span := startSpan(ctx, "inventory.ApplyMovement",
		attribute.String("product_id", productID),
		attribute.String("type", typ),
		attribute.Int("quantity", quantity))
	res, err := uc.applyMovement(ctx, productID, typ, quantity)
	endSpan(span, err)
	return res, err
}

// RecordStockOut registra una salida (venta/consumo) del producto.
func (uc *MovementUseCase) RecordStockOut(ctx context.Context, productID string, quantity int) (*dto.MovementResponse, error) {
	ctx, span := startSpan(ctx, "inventory.RecordStockOut",
		attribute.String("product_id", productID),
		attribute.Int("quantity", quantity))
	res, err := uc.applyMovement(ctx, productID, entity.TransactionOutbound, quantity)
	endSpan(span, err)
	return res, err
}

func (uc *MovementUseCase) applyMovement(ctx context.Context, productID, typ string, quantity int) (*dto.MovementResponse, error) {
	// Validaciones previas: ninguna abre transacción.
	if quantity <= 0 {
		return nil, domain.InvalidQuantity(quantity)
	}
	if productID == "" {
		return nil, domain.InvalidInput("product_id es obligatorio")
	}
	if !entity.IsValidTransactionType(typ) {
		return nil, domain.InvalidInput("tipo de movimiento inválido: " + typ)
	}

	now := uc.clock.Now()
	var (
		txn      *entity.Transaction
		newStock int
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		txn, newStock, err = applyMovementTx(ctx, r, productID, typ, quantity, "", now)
		return err
	})
	if err != nil {
		uc.logRejected(ctx, err, productID, typ, quantity)
		return nil, err
	}

	uc.log.Info().
		Str("product_id", productID).
		Str("type", typ).
		Int("quantity", quantity).
		Int("new_stock", newStock).
		Str("transaction_id", txn.ID).
		Msg("movimiento registrado")
	committed(ctx, uc.publisher, uc.log, txn, newStock)

	return &dto.MovementResponse{ProductID: productID, NewStock: newStock, LedgerEntryID: txn.ID}, nil
}

func (uc *MovementUseCase) logRejected(ctx context.Context, err error, productID, typ string, quantity int) {
	if domain.KindOf(err) == domain.KindStorage {
		uc.log.Error().Err(err).Str("product_id", productID).Str("type", typ).Msg("fallo al registrar movimiento")
		return
	}
	if de, ok := asDomainError(err); ok && de.Kind == domain.KindConflict {
		countConflict(ctx, de.Code)
		uc.log.Warn().
			Str("product_id", productID).
			Str("code", de.Code).
			Int("requested", quantity).
			Int("available", de.Available).
			Msg("movimiento rechazado")
	}
}

// History devuelve los últimos movimientos del ledger, del más reciente al más antiguo.
// productID vacío = todos los productos.
func (uc *MovementUseCase) History(ctx context.Context, productID string, limit int) (*dto.TransactionListResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > 500 {
		limit = 500
	}
	var list []*entity.Transaction
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		if productID != "" {
			p, err := r.Products.GetByID(ctx, productID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto", productID)
			}
		}
		var err error
		list, err = r.Ledger.ListRecent(ctx, productID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransactionResponse(t))
	}
	return &dto.TransactionListResponse{Items: items, Limit: limit}, nil
}

// applyMovementTx es el paso atómico compartido por salidas y recepciones:
// bloquea el producto, valida stock, escribe el contador y agrega la fila al ledger
// con los repositorios de la transacción del llamador.
func applyMovementTx(
	ctx context.Context,
	r Repos,
	productID, typ string,
	quantity int,
	reference string,
	now time.Time,
) (*entity.Transaction, int, error) {
	if quantity <= 0 {
		return nil, 0, domain.InvalidQuantity(quantity)
	}
	// Bloquea la fila del producto (SELECT FOR UPDATE) para evitar condiciones de carrera
	product, err := r.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if product == nil {
		return nil, 0, domain.NotFound("producto", productID)
	}

	newStock := product.CurrentStock
	switch typ {
	case entity.TransactionInbound:
		newStock += quantity
	case entity.TransactionOutbound:
		if quantity > product.CurrentStock {
			return nil, 0, domain.InsufficientStock(product.CurrentStock, quantity)
		}
		newStock -= quantity
	default:
		return nil, 0, domain.InvalidInput("tipo de movimiento inválido: " + typ)
	}

	if err := r.Products.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, 0, err
	}
	txn := &entity.Transaction{
		ID:        uuid.New().String(),
		ProductID: productID,
		Type:      typ,
		Quantity:  quantity,
		Reference: reference,
		CreatedAt: now,
	}
	if err := r.Ledger.Append(ctx, txn); err != nil {
		return nil, 0, err
	}
	return txn, newStock, nil
}

// committed se llama solo después del commit: métricas y evento best-effort.
func committed(ctx context.Context, publisher EventPublisher, log zerolog.Logger, txn *entity.Transaction, newStock int) {
	countMovement(ctx, txn.Type, txn.Quantity)
	evt := MovementEvent{
		TransactionID: txn.ID,
		ProductID:     txn.ProductID,
		Type:          txn.Type,
		Quantity:      txn.Quantity,
		NewStock:      newStock,
		Reference:     txn.Reference,
		OccurredAt:    txn.CreatedAt,
	}
	if err := publisher.Publish(ctx, evt); err != nil {
		log.Warn().Err(err).Str("transaction_id", txn.ID).Msg("no se pudo publicar el evento de movimiento")
	}
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID,
		ProductID: t.ProductID,
		Type:      t.Type,
		Quantity:  t.Quantity,
		Reference: t.Reference,
		CreatedAt: t.CreatedAt,
	}
}

func asDomainError(err error) (*domain.Error, bool) {
	var de *domain.Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
