package dto

import "time"

// LoginRequest formulario de /login.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterRequest formulario de /registro.
type RegisterRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// ConfirmRequest formulario de /confirmar_cuenta.
type ConfirmRequest struct {
	Username string `form:"email_not_confirmed"`
	Code     string `form:"custom_code"`
}

// PasswordResetRequest formulario de /enviar_link_contrasena (envía el código).
type PasswordResetRequest struct {
	Username string `form:"email_forgot_password"`
}

// CompletePasswordResetRequest formulario de /olvido_contrasena (código + nueva contraseña).
type CompletePasswordResetRequest struct {
	Username    string `form:"email_forgot_password"`
	Code        string `form:"custom_code"`
	NewPassword string `form:"password"`
}

// SessionData lo que queda guardado en la sesión del navegador tras autenticar.
type SessionData struct {
	Email        string
	Role         string
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// RosterEntryResponse datos de /autocomplete para prellenar el registro por cwid.
// Found=false deja el formulario vacío con el cwid tecleado.
type RosterEntryResponse struct {
	Found        bool
	CWID         string
	Email        string
	Name         string
	CustomerTeam string
	Address      string
	ExtNumber    string
	IntNumber    string
	Colonia      string
	City         string
	State        string
	PostalCode   string
	Phone        string
}
