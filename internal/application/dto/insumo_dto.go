package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsumoRequest formulario de alta/edición de insumo (POST /add_insumos_records, /edit_insumo/:id).
// UnitCost llega como texto y se valida en el caso de uso.
type InsumoRequest struct {
	Name     string `form:"name"`
	Stock    int    `form:"stock"`
	UnitCost string `form:"unit_cost"`
	VendorID int64  `form:"vendorselect"`
}

// InsumoResponse fila del catálogo.
type InsumoResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Stock       int             `json:"stock"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	VendorID    int64           `json:"vendor_id"`
	VendorName  string          `json:"vendor_name"`
	OrderID     *int64          `json:"order_id,omitempty"`
	LastUpdated time.Time       `json:"last_updated"`
}

// InsumoListResponse página del catálogo.
type InsumoListResponse struct {
	Items []InsumoResponse `json:"items"`
	Page  PageResponse     `json:"page"`
	Query string           `json:"query,omitempty"`
}
