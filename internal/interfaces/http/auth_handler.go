package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

// AuthHandler páginas públicas: login, registro, confirmación, recuperación de contraseña.
type AuthHandler struct {
	uc       *auth.AuthUseCase
	sessions *Sessions
	log      *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, sessions *Sessions, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, sessions: sessions, log: log}
}

func renderPage(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	return c.Status(status).Render(name, data, layoutMain)
}

// LoginPage GET /login. ?reason=expired muestra el aviso de sesión expirada.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	data := fiber.Map{}
	if c.Query("reason") == "expired" {
		data["Error"] = msgSessionExpired
	}
	return renderPage(c, fiber.StatusOK, "login", data)
}

// Login POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return renderPage(c, fiber.StatusBadRequest, "login", fiber.Map{"Error": msgRequiredCredentials})
	}
	sess, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotConfirmed):
			return renderPage(c, fiber.StatusForbidden, "confirmar_cuenta", fiber.Map{"Email": in.Username, "Error": msgUserNotConfirmed})
		case errors.Is(err, domain.ErrForbidden):
			_ = h.sessions.Destroy(c)
		}
		status, msg := errorMessage(err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error().Err(err).Msg("login")
		}
		return renderPage(c, status, "login", fiber.Map{"Error": msg, "Email": in.Username})
	}
	if err := h.sessions.SaveLogin(c, sess); err != nil {
		return err
	}
	if sess.Role == entity.RoleAdmin {
		return c.Redirect("/admin", fiber.StatusSeeOther)
	}
	return c.Redirect("/representante", fiber.StatusSeeOther)
}

// Logout GET /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Warn().Err(err).Msg("destruir sesión")
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// RegisterPage GET /registro.
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, "registro", fiber.Map{"Entry": dto.RosterEntryResponse{}})
}

// Register POST /registro. Éxito: pantalla de confirmación con el correo prellenado.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return renderPage(c, fiber.StatusBadRequest, "registro", fiber.Map{"Error": msgRequiredCredentials, "Entry": dto.RosterEntryResponse{}})
	}
	if err := h.uc.Register(c.UserContext(), in); err != nil {
		status, msg := errorMessage(err)
		return renderPage(c, status, "registro", fiber.Map{"Error": msg, "Entry": dto.RosterEntryResponse{Email: in.Username}})
	}
	return renderPage(c, fiber.StatusOK, "confirmar_cuenta", fiber.Map{"Email": in.Username, "Info": msgCodeSent})
}

// Autocomplete GET /autocomplete?cwid_custom_id=. Prellena el formulario de registro desde el padrón.
func (h *AuthHandler) Autocomplete(c *fiber.Ctx) error {
	entry, err := h.uc.LookupCWID(c.UserContext(), c.Query("cwid_custom_id"))
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/registro_form", fiber.Map{"Entry": entry})
}

// ConfirmPage GET /confirmar_cuenta.
func (h *AuthHandler) ConfirmPage(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, "confirmar_cuenta", fiber.Map{"Email": c.Query("email")})
}

// Confirm POST /confirmar_cuenta.
func (h *AuthHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmRequest
	if err := c.BodyParser(&in); err != nil {
		return renderPage(c, fiber.StatusBadRequest, "confirmar_cuenta", fiber.Map{"Error": msgInvalidInput})
	}
	if err := h.uc.Confirm(c.UserContext(), in); err != nil {
		status, msg := errorMessage(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			msg = msgUserGone
		}
		return renderPage(c, status, "confirmar_cuenta", fiber.Map{"Email": in.Username, "Error": msg})
	}
	return renderPage(c, fiber.StatusOK, "login", fiber.Map{"Info": msgAccountConfirmed, "Email": in.Username})
}

// SendResetPage GET /enviar_link_contrasena.
func (h *AuthHandler) SendResetPage(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, "enviar_link_contrasena", fiber.Map{})
}

// SendReset POST /enviar_link_contrasena: pide el código de recuperación.
func (h *AuthHandler) SendReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := c.BodyParser(&in); err != nil {
		return renderPage(c, fiber.StatusBadRequest, "enviar_link_contrasena", fiber.Map{"Error": msgInvalidInput})
	}
	if err := h.uc.RequestPasswordReset(c.UserContext(), in); err != nil {
		status, msg := errorMessage(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			msg = msgUserGone
		}
		return renderPage(c, status, "enviar_link_contrasena", fiber.Map{"Email": in.Username, "Error": msg})
	}
	return renderPage(c, fiber.StatusOK, "olvido_contrasena", fiber.Map{"Email": in.Username, "Info": msgResetCodeSent})
}

// ResetPage GET /olvido_contrasena.
func (h *AuthHandler) ResetPage(c *fiber.Ctx) error {
	return renderPage(c, fiber.StatusOK, "olvido_contrasena", fiber.Map{"Email": c.Query("email")})
}

// Reset POST /olvido_contrasena: código + nueva contraseña.
func (h *AuthHandler) Reset(c *fiber.Ctx) error {
	var in dto.CompletePasswordResetRequest
	if err := c.BodyParser(&in); err != nil {
		return renderPage(c, fiber.StatusBadRequest, "olvido_contrasena", fiber.Map{"Error": msgInvalidInput})
	}
	if err := h.uc.CompletePasswordReset(c.UserContext(), in); err != nil {
		status, msg := errorMessage(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			msg = msgUserGone
		}
		return renderPage(c, status, "olvido_contrasena", fiber.Map{"Email": in.Username, "Error": msg})
	}
	return renderPage(c, fiber.StatusOK, "login", fiber.Map{"Info": msgPasswordReset, "Email": in.Username})
}
