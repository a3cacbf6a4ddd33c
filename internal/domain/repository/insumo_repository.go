package repository

import (
	"context"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// InsumoFilter filtros del listado del catálogo.
type InsumoFilter struct {
	Name string // substring, sin distinguir mayúsculas; vacío = todos
}

// InsumoRepository define el puerto de persistencia para Insumo (usable con pool o tx).
type InsumoRepository interface {
	Create(ctx context.Context, i *entity.Insumo) error
	GetByID(ctx context.Context, id int64) (*entity.Insumo, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Insumo, error)
	Update(ctx context.Context, i *entity.Insumo) error
	Delete(ctx context.Context, id int64) error
	// List ordena por last_updated DESC y devuelve también el total sin paginar.
	List(ctx context.Context, f InsumoFilter, limit, offset int) ([]*entity.Insumo, int, error)
	// DecrementStock resta qty en un solo UPDATE condicional y devuelve la fila resultante.
	// Con allowNegative=false y stock insuficiente devuelve domain.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, qty int, allowNegative bool) (*entity.Insumo, error)
	AssignOrder(ctx context.Context, ids []int64, orderID int64) error
}
