package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea seleccionada en el carrito.
type OrderLineRequest struct {
	InsumoID int64
	Quantity int
}

// CreateOrderRequest entrada de POST /add_order_record.
type CreateOrderRequest struct {
	Lines           []OrderLineRequest
	DoctorName      string
	DoctorPosition  string
	Institution     string
	DeliveryAddress string
}

// OrderLineResponse línea del snapshot.
type OrderLineResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderResponse pedido para tablas y detalle.
type OrderResponse struct {
	ID                    int64               `json:"id"`
	UserEmail             string              `json:"user_email"`
	RepresentativeName    string              `json:"representative_name"`
	CreationDate          time.Time           `json:"creation_date"`
	EstimatedDeliveryDate *time.Time          `json:"estimated_delivery_date,omitempty"`
	LastUpdated           time.Time           `json:"last_updated"`
	Lines                 []OrderLineResponse `json:"lines"`
	Status                string              `json:"status"`
	HasRequestSignature   bool                `json:"has_request_signature"`
	HasResponseSignature  bool                `json:"has_response_signature"`
	LetterResponseDate    *time.Time          `json:"letter_response_date,omitempty"`
	DeliveryInformation   string              `json:"delivery_information"`
	DeliveryInstitute     string              `json:"delivery_institute"`
	DoctorName            string              `json:"doctor_name"`
	DoctorPosition        string              `json:"doctor_position"`
	Total                 decimal.Decimal     `json:"total"`
}

// OrderSearch filtros de tablas de pedidos (?representante=&status=).
type OrderSearch struct {
	RepresentativeName string `query:"representante"`
	Status             string `query:"status"` // "todos" o vacío = sin filtro
}

// OrderListResponse página de pedidos.
type OrderListResponse struct {
	Items  []OrderResponse `json:"items"`
	Page   PageResponse    `json:"page"`
	Search OrderSearch     `json:"search"`
}

// EditOrderRequest formulario admin de /edit_order/:id.
type EditOrderRequest struct {
	Status                string `form:"status"`
	EstimatedDeliveryDate string `form:"estimated_delivery_date"` // YYYY-MM-DD, opcional
}

// CartItem insumo seleccionado para el modal de pedido.
type CartItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Stock    int             `json:"stock"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Letter PDF generado.
type Letter struct {
	Filename string
	Content  []byte
}
