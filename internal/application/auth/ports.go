package auth

import (
	"context"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// IdentityProvider puerto hacia el directorio de usuarios hospedado (Cognito) o su versión local.
// Los adaptadores traducen sus fallas a los errores de identidad de internal/domain.
type IdentityProvider interface {
	Authenticate(ctx context.Context, username, password string) (*entity.AuthTokens, error)
	Register(ctx context.Context, username, password string) error
	Confirm(ctx context.Context, username, code string) error
	RequestPasswordReset(ctx context.Context, username string) error
	CompletePasswordReset(ctx context.Context, username, code, newPassword string) error
	// Refresh puede devolver RefreshToken vacío: se conserva el anterior.
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error)
	// GetUser devuelve el email del dueño del access token.
	GetUser(ctx context.Context, accessToken string) (string, error)
}
