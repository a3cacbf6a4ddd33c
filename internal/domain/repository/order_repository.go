package repository

import (
	"context"
	"time"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// OrderFilter filtros de listado de pedidos. Campos vacíos no filtran.
type OrderFilter struct {
	UserEmail       string   // vista del representante
	UserEmails      []string // búsqueda por nombre de representante (resuelto vía padrón)
	FilterByEmails  bool     // true: aplicar UserEmails aunque venga vacío (ninguna coincidencia = lista vacía)
	Status          entity.OrderStatus
	ExcludeStatuses []entity.OrderStatus
}

// OrderRepository define el puerto de persistencia para Order (usable con pool o tx).
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Order, error)
	// List ordena por creation_date DESC y devuelve también el total sin paginar.
	List(ctx context.Context, f OrderFilter, limit, offset int) ([]*entity.Order, int, error)
	Update(ctx context.Context, o *entity.Order) error
	SetStatus(ctx context.Context, ids []int64, status entity.OrderStatus, at time.Time) error
}
