package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ReconciliationUseCase compara el contador de stock con el replay del ledger (Σ INBOUND − Σ OUTBOUND).
type ReconciliationUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(txRunner TxRunner, log zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txRunner: txRunner,
		log:      log.With().Str("usecase", "reconciliation").Logger(),
	}
}

// Reconcile verifica un producto.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	if productID == "" {
		return nil, domain.InvalidInput("product_id es obligatorio")
	}
	var res dto.ReconciliationResponse
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		p, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto", productID)
		}
		res, err = reconcileProduct(ctx, r, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !res.Consistent {
		uc.warnDrift(res)
	}
	return &res, nil
}

// ReconcileAll verifica todo el catálogo en un mismo snapshot.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*dto.ReconciliationReport, error) {
	report := &dto.ReconciliationReport{Items: make([]dto.ReconciliationResponse, 0)}
	err := uc.txRunner.RunSnapshot(ctx, func(r Repos) error {
		return forEachProduct(ctx, r, func(p *entity.Product) error {
			res, err := reconcileProduct(ctx, r, p)
			if err != nil {
				return err
			}
			report.Items = append(report.Items, res)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	for _, it := range report.Items {
		if !it.Consistent {
			report.Inconsistent++
			uc.warnDrift(it)
		}
	}
	return report, nil
}

func (uc *ReconciliationUseCase) warnDrift(res dto.ReconciliationResponse) {
	uc.log.Warn().
		Str("product_id", res.ProductID).
		Int("current_stock", res.CurrentStock).
		Int("ledger_balance", res.LedgerBalance).
		Msg("contador de stock no coincide con el ledger")
}

func reconcileProduct(ctx context.Context, r Repos, p *entity.Product) (dto.ReconciliationResponse, error) {
	totals, err := r.Ledger.Totals(ctx, p.ID)
	if err != nil {
		return dto.ReconciliationResponse{}, err
	}
	balance := totals.Balance()
	return dto.ReconciliationResponse{
		ProductID:     p.ID,
		SKU:           p.SKU,
		CurrentStock:  p.CurrentStock,
		Inbound:       totals.Inbound,
		Outbound:      totals.Outbound,
		LedgerBalance: balance,
		Consistent:    balance == p.CurrentStock,
	}, nil
}
