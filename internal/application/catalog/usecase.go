// Package catalog casos de uso del catálogo de insumos y de proveedores.
package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

const maxNameLen = 80

// CatalogUseCase alta, edición, baja y búsqueda de insumos y proveedores.
type CatalogUseCase struct {
	insumos repository.InsumoRepository
	vendors repository.VendorRepository
	log     *logger.Logger
	now     func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(insumos repository.InsumoRepository, vendors repository.VendorRepository, log *logger.Logger) *CatalogUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogUseCase{insumos: insumos, vendors: vendors, log: log, now: time.Now}
}

// ListInsumos página del catálogo (máx. 10), más reciente primero. query filtra por nombre sin distinguir mayúsculas.
func (uc *CatalogUseCase) ListInsumos(ctx context.Context, query string, page dto.PageRequest) (*dto.InsumoListResponse, error) {
	page.Normalize()
	query = strings.TrimSpace(query)
	list, total, err := uc.insumos.List(ctx, repository.InsumoFilter{Name: query}, page.PerPage, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.InsumoResponse, 0, len(list))
	for _, i := range list {
		items = append(items, toInsumoResponse(i))
	}
	return &dto.InsumoListResponse{Items: items, Page: dto.NewPageResponse(page, total), Query: query}, nil
}

// GetInsumo para el formulario de edición.
func (uc *CatalogUseCase) GetInsumo(ctx context.Context, id int64) (*dto.InsumoResponse, error) {
	i, err := uc.insumos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, domain.ErrNotFound
	}
	r := toInsumoResponse(i)
	return &r, nil
}

// CreateInsumo valida y da de alta. El proveedor debe existir (domain.ErrVendorNotFound).
func (uc *CatalogUseCase) CreateInsumo(ctx context.Context, p entity.Principal, in dto.InsumoRequest) (*dto.InsumoResponse, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	i, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	i.LastUpdated = uc.now()
	if err := uc.insumos.Create(ctx, i); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("insumo_id", i.ID).Str("name", i.Name).Str("by", p.Email).Msg("insumo creado")
	r := toInsumoResponse(i)
	return &r, nil
}

// UpdateInsumo edita nombre, stock, costo y proveedor.
func (uc *CatalogUseCase) UpdateInsumo(ctx context.Context, p entity.Principal, id int64, in dto.InsumoRequest) (*dto.InsumoResponse, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	cur, err := uc.insumos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	next, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.OrderID = cur.OrderID
	next.LastUpdated = uc.now()
	if err := uc.insumos.Update(ctx, next); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("insumo_id", id).Str("by", p.Email).Msg("insumo actualizado")
	r := toInsumoResponse(next)
	return &r, nil
}

// DeleteInsumo baja del catálogo. Los pedidos conservan su copia en el snapshot.
func (uc *CatalogUseCase) DeleteInsumo(ctx context.Context, p entity.Principal, id int64) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := uc.insumos.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Int64("insumo_id", id).Str("by", p.Email).Msg("insumo eliminado")
	return nil
}

func (uc *CatalogUseCase) validate(ctx context.Context, in dto.InsumoRequest) (*entity.Insumo, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(in.UnitCost))
	if err != nil || cost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	v, err := uc.vendors.GetByID(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}
	return &entity.Insumo{
		Name:       name,
		Stock:      in.Stock,
		UnitCost:   cost.Round(2),
		VendorID:   v.ID,
		VendorName: v.Name,
	}, nil
}

// ListVendors página de proveedores.
func (uc *CatalogUseCase) ListVendors(ctx context.Context, page dto.PageRequest) (*dto.VendorListResponse, error) {
	page.Normalize()
	list, total, err := uc.vendors.List(ctx, page.PerPage, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.VendorResponse, 0, len(list))
	for _, v := range list {
		items = append(items, toVendorResponse(v))
	}
	return &dto.VendorListResponse{Items: items, Page: dto.NewPageResponse(page, total)}, nil
}

// AllVendors lista completa para los selects (/getvendorlist).
func (uc *CatalogUseCase) AllVendors(ctx context.Context) ([]dto.VendorResponse, error) {
	list, err := uc.vendors.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendorResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVendorResponse(v))
	}
	return out, nil
}

// CreateVendor alta de proveedor; el dueño es quien lo registra.
func (uc *CatalogUseCase) CreateVendor(ctx context.Context, p entity.Principal, in dto.VendorRequest) (*dto.VendorResponse, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return nil, domain.ErrInvalidInput
	}
	v := &entity.Vendor{
		Name:         name,
		Cellphone:    strings.TrimSpace(in.Cellphone),
		UserEmail:    p.Email,
		CreationDate: uc.now(),
	}
	if err := uc.vendors.Create(ctx, v); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("vendor_id", v.ID).Str("name", v.Name).Str("by", p.Email).Msg("proveedor creado")
	r := toVendorResponse(v)
	return &r, nil
}

// DeleteVendor domain.ErrConflict si aún tiene insumos.
func (uc *CatalogUseCase) DeleteVendor(ctx context.Context, p entity.Principal, id int64) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := uc.vendors.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Int64("vendor_id", id).Str("by", p.Email).Msg("proveedor eliminado")
	return nil
}

func toInsumoResponse(i *entity.Insumo) dto.InsumoResponse {
	return dto.InsumoResponse{
		ID:          i.ID,
		Name:        i.Name,
		Stock:       i.Stock,
		UnitCost:    i.UnitCost,
		VendorID:    i.VendorID,
		VendorName:  i.VendorName,
		OrderID:     i.OrderID,
		LastUpdated: i.LastUpdated,
	}
}

func toVendorResponse(v *entity.Vendor) dto.VendorResponse {
	return dto.VendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		Cellphone:    v.Cellphone,
		UserEmail:    v.UserEmail,
		CreationDate: v.CreationDate,
	}
}
