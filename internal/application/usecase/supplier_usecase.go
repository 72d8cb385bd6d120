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

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	txRunner inventory.TxRunner
	clock    inventory.Clock
	log      zerolog.Logger
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(txRunner inventory.TxRunner, clock inventory.Clock, log zerolog.Logger) *SupplierUseCase {
	return &SupplierUseCase{txRunner: txRunner, clock: clock, log: log.With().Str("usecase", "supplier").Logger()}
}

// Create registra un proveedor; el lead time debe ser positivo.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInput("name es obligatorio")
	}
	if in.LeadTimeDays <= 0 {
		return nil, domain.InvalidInput("lead_time_days debe ser mayor que cero")
	}
	now := uc.clock.Now()
	s := &entity.Supplier{
		ID:           uuid.New().String(),
		Name:         name,
		LeadTimeDays: in.LeadTimeDays,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		return r.Suppliers.Create(ctx, s)
	}); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", s.ID).Str("name", s.Name).Int("lead_time_days", s.LeadTimeDays).Msg("proveedor creado")
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	var s *entity.Supplier
	err := uc.txRunner.RunSnapshot(ctx, func(r inventory.Repos) error {
		var err error
		s, err = r.Suppliers.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("proveedor", id)
	}
	return toSupplierResponse(s), nil
}

// Update cambia nombre o lead time.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	var s *entity.Supplier
	err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		var err error
		s, err = r.Suppliers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.NotFound("proveedor", id)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.InvalidInput("name no puede estar vacío")
			}
			s.Name = name
		}
		if in.LeadTimeDays != nil {
			if *in.LeadTimeDays <= 0 {
				return domain.InvalidInput("lead_time_days debe ser mayor que cero")
			}
			s.LeadTimeDays = *in.LeadTimeDays
		}
		s.UpdatedAt = uc.clock.Now()
		return r.Suppliers.Update(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", s.ID).Int("lead_time_days", s.LeadTimeDays).Msg("proveedor actualizado")
	return toSupplierResponse(s), nil
}

// Delete elimina un proveedor sin productos asociados; si los tiene devuelve SUPPLIER_IN_USE.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.InvalidInput("id es obligatorio")
	}
	if err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		return r.Suppliers.Delete(ctx, id)
	}); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			uc.log.Warn().Str("supplier_id", id).Msg("proveedor con productos asociados, no se elimina")
		}
		return err
	}
	uc.log.Info().Str("supplier_id", id).Msg("proveedor eliminado")
	return nil
}

// List lista proveedores con paginación.
func (uc *SupplierUseCase) List(ctx context.Context, limit, offset int) (*dto.SupplierListResponse, error) {
	var list []*entity.Supplier
	err := uc.txRunner.RunSnapshot(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Suppliers.List(ctx, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID,
		Name:         s.Name,
		LeadTimeDays: s.LeadTimeDays,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
