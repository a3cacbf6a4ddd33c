package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrVendorNotFound    = errors.New("el proveedor no existe")
	ErrInvalidSignature  = errors.New("firma inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
)

// Errores del proveedor de identidad. Los adaptadores (Cognito, local) traducen sus fallas a estos.
var (
	ErrInvalidCredentials  = errors.New("credenciales inválidas")
	ErrIdentityNotFound    = errors.New("recurso de identidad no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrUserNotConfirmed    = errors.New("usuario no confirmado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrCodeExpired         = errors.New("código expirado")
	ErrCodeMismatch        = errors.New("código inválido")
	ErrTooManyAttempts     = errors.New("máximo de intentos superado")
	ErrWeakPassword        = errors.New("contraseña débil")
	ErrCodeDeliveryFailure = errors.New("no se pudo enviar el código")
	ErrIdentityFailure     = errors.New("falla del proveedor de identidad")
	ErrSessionExpired      = errors.New("sesión expirada")
)
