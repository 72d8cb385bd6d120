package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	txRunner inventory.TxRunner
	clock    inventory.Clock
	log      zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner, clock inventory.Clock, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, clock: clock, log: log.With().Str("usecase", "product").Logger()}
}

// Create crea un nuevo producto. Si trae stock inicial se registra una entrada en el ledger
// en la misma transacción, así el contador queda conciliado desde el primer momento.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" || in.SupplierID == "" {
		return nil, domain.InvalidInput("sku, name y supplier_id son obligatorios")
	}
	if in.OpeningStock < 0 {
		return nil, domain.InvalidQuantity(in.OpeningStock)
	}
	if in.Price.IsNegative() {
		return nil, domain.InvalidInput("price no puede ser negativo")
	}

	now := uc.clock.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		SKU:          in.SKU,
		Price:        in.Price,
		CurrentStock: in.OpeningStock,
		SupplierID:   in.SupplierID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		existing, err := r.Products.GetBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Duplicate("ya existe un producto con SKU " + product.SKU)
		}
		supplier, err := r.Suppliers.GetByID(ctx, product.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.NotFound("proveedor", product.SupplierID)
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if product.CurrentStock == 0 {
			return nil
		}
		return r.Ledger.Append(ctx, &entity.Transaction{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Type:      entity.TransactionInbound,
			Quantity:  product.CurrentStock,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Int("opening_stock", product.CurrentStock).Msg("producto creado")
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.RunSnapshot(ctx, func(r inventory.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, precio o proveedor. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		var err error
		product, err = r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto", id)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.InvalidInput("name no puede estar vacío")
			}
			product.Name = name
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return domain.InvalidInput("price no puede ser negativo")
			}
			product.Price = *in.Price
		}
		if in.SupplierID != nil && *in.SupplierID != product.SupplierID {
			supplier, err := r.Suppliers.GetByID(ctx, *in.SupplierID)
			if err != nil {
				return err
			}
			if supplier == nil {
				return domain.NotFound("proveedor", *in.SupplierID)
			}
			product.SupplierID = supplier.ID
		}
		product.UpdatedAt = uc.clock.Now()
		return r.Products.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	var list []*entity.Product
	err := uc.txRunner.RunSnapshot(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Products.List(ctx, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		SupplierID:   p.SupplierID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
