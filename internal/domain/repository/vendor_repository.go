package repository

import (
	"context"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// VendorRepository define el puerto de persistencia para Vendor.
type VendorRepository interface {
	Create(ctx context.Context, v *entity.Vendor) error
	// GetByID debe resolver exactamente una fila; si no, domain.ErrVendorNotFound.
	GetByID(ctx context.Context, id int64) (*entity.Vendor, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Vendor, int, error)
	ListAll(ctx context.Context) ([]*entity.Vendor, error)
	// Delete devuelve domain.ErrConflict si el proveedor aún tiene insumos.
	Delete(ctx context.Context, id int64) error
}
