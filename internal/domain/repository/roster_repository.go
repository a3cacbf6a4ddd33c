package repository

import (
	"context"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// RosterRepository puerto de lectura del padrón de representantes (bayer_users).
// GetBy* devuelven (nil, nil) si no existe.
type RosterRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.BayerUser, error)
	GetByCWID(ctx context.Context, cwid string) (*entity.BayerUser, error)
	// FindEmailsByName resuelve un nombre (substring, sin distinguir mayúsculas) a los emails que coinciden.
	FindEmailsByName(ctx context.Context, name string) ([]string, error)
	ListByEmails(ctx context.Context, emails []string) ([]*entity.BayerUser, error)
	// Upsert sólo lo usa cmd/seed; la aplicación nunca modifica el padrón.
	Upsert(ctx context.Context, u *entity.BayerUser) error
}
