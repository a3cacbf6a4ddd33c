package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido. Los valores se guardan tal cual en la columna status.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "Creada"
	OrderStatusInTransit OrderStatus = "En camino"
	OrderStatusDelivered OrderStatus = "Entregado"
	OrderStatusCancelled OrderStatus = "Cancelado"
	OrderStatusRejected  OrderStatus = "Rechazada"
)

// OrderStatuses lista completa en el orden en que se muestra en los selects.
var OrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRejected,
}

// Valid indica si s es uno de los cinco estados.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus acepta el valor exacto o sin distinguir mayúsculas ("en camino").
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, v := range OrderStatuses {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// OrderLine copia de un insumo al momento de pedirlo. Se guarda como JSON en orders.data.
type OrderLine struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// Subtotal unit cost * quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Cost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order pedido de un representante.
type Order struct {
	ID                      int64
	UserEmail               string
	CreationDate            time.Time
	EstimatedDeliveryDate   *time.Time
	LastUpdated             time.Time
	Lines                   []OrderLine
	LetterSignature         string // data URL de la firma de la carta de solicitud
	LetterResponseSignature string // data URL de la firma de la carta de respuesta
	LetterResponseDate      *time.Time
	Status                  OrderStatus
	DeliveryInformation     string
	DeliveryInstitute       string
	DoctorName              string
	DoctorPosition          string
	Total                   decimal.Decimal
}

// LetterType carta que se genera a partir del pedido.
type LetterType string

const (
	LetterRequest  LetterType = "solicitud"
	LetterResponse LetterType = "respuesta"
)

// ParseLetterType valida el segmento de ruta /order_pdf_letter/:id/:type.
func ParseLetterType(s string) (LetterType, bool) {
	switch LetterType(s) {
	case LetterRequest, LetterResponse:
		return LetterType(s), true
	}
	return "", false
}

// SignatureSlot campo del pedido donde se guarda una firma capturada.
type SignatureSlot string

const (
	SlotLetterSignature         SignatureSlot = "letter_signature"
	SlotLetterResponseSignature SignatureSlot = "letter_response_signature"
)
