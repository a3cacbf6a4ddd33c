package entity

import "time"

// Roles válidos para el portal.
const (
	RoleAdmin          = "admin"
	RoleRepresentative = "representante"
)

// Principal identidad autenticada que llega a los casos de uso (email + rol ya clasificado).
type Principal struct {
	Email string
	Role  string
}

// IsAdmin indica si el principal opera como administrador.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// AuthTokens tokens emitidos por el proveedor de identidad al autenticar o refrescar.
type AuthTokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}
