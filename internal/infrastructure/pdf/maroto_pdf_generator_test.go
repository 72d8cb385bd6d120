package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/pdf"
)

func TestGeneratePurchaseOrderPDF(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Reabastecimiento")
	doc := inventory.PurchaseOrderDocument{
		Order: &entity.PurchaseOrder{
			ID:        "5f0c9a53-4d57-4a1e-9d1c-8b2f3e7a9c10",
			ProductID: "p-1",
			Quantity:  158,
			Status:    entity.PurchaseOrderSent,
			CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Product:  &entity.Product{ID: "p-1", SKU: "WID-001", Name: "Widget", Price: decimal.RequireFromString("12500.50")},
		Supplier: &entity.Supplier{ID: "s-1", Name: "Acme", LeadTimeDays: 14},
	}

	out, err := g.GeneratePurchaseOrderPDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGeneratePurchaseOrderPDF_IncompleteDocument(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Reabastecimiento")
	_, err := g.GeneratePurchaseOrderPDF(context.Background(), inventory.PurchaseOrderDocument{})
	assert.Error(t, err)
}
