package order

import (
	"context"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repos de insumos y pedidos atados a ella.
// Si fn devuelve error se revierten todos los decrementos de stock.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		insumoRepo repository.InsumoRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// LetterData datos que necesita una carta.
type LetterData struct {
	Order          *entity.Order
	Representative *entity.BayerUser // nil si el correo ya no está en el padrón
}

// LetterGenerator produce el PDF de una carta.
type LetterGenerator interface {
	GenerateLetter(ctx context.Context, letterType entity.LetterType, data LetterData) ([]byte, error)
}

// LetterArchive guarda una copia de la carta firmada (bucket S3).
type LetterArchive interface {
	Store(ctx context.Context, orderID int64, letterType entity.LetterType, pdf []byte) error
}
