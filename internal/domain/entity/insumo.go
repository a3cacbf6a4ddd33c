package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Insumo artículo del catálogo con stock propio y un proveedor.
// OrderID apunta al último pedido que lo incluyó.
type Insumo struct {
	ID          int64
	Name        string
	Stock       int // puede quedar negativo con la política allow_negative
	UnitCost    decimal.Decimal
	VendorID    int64
	VendorName  string // sólo lectura (JOIN vendors)
	OrderID     *int64
	LastUpdated time.Time
}
