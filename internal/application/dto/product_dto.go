package dto

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. OpeningStock queda registrado como entrada en el ledger.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	SupplierID   string          `json:"supplier_id"`
	OpeningStock int             `json:"opening_stock"`
}

func (r *CreateProductRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.SKU, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.SupplierID, validation.Required),
		validation.Field(&r.Price, validation.By(nonNegativeDecimal)),
		validation.Field(&r.OpeningStock, validation.Min(0)),
	)
}

// UpdateProductRequest entrada para actualizar un producto (sin stock: solo cambia vía movimientos).
type UpdateProductRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	SupplierID *string          `json:"supplier_id"`
}

func (r *UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.By(nonNegativeDecimal)),
		validation.Field(&r.SupplierID, validation.NilOrNotEmpty),
	)
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"current_stock"`
	SupplierID   string          `json:"supplier_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

func nonNegativeDecimal(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return nil
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
