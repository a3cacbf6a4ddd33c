package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// Locals keys para el principal y la sesión en Fiber.
const (
	LocalPrincipal = "principal"
	LocalSession   = "session_data"
)

// Claves dentro de la sesión del navegador.
const (
	keyEmail        = "email"
	keyRole         = "role"
	keyAccessToken  = "access_token"
	keyIDToken      = "id_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
)

// Sessions envuelve el store de sesiones de Fiber (memoria o Redis).
type Sessions struct {
	store *session.Store
}

// NewSessions crea el store. storage nil = memoria del proceso.
func NewSessions(storage fiber.Storage, expiration time.Duration, secure bool) *Sessions {
	cfg := session.Config{
		Expiration:     expiration,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
		KeyLookup:      "cookie:insumos_session",
	}
	if storage != nil {
		cfg.Storage = storage
	}
	return &Sessions{store: session.New(cfg)}
}

// Load devuelve los datos guardados o nil si no hay sesión autenticada.
func (s *Sessions) Load(c *fiber.Ctx) (*dto.SessionData, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, err
	}
	email, _ := sess.Get(keyEmail).(string)
	access, _ := sess.Get(keyAccessToken).(string)
	if email == "" || access == "" {
		return nil, nil
	}
	data := &dto.SessionData{Email: email, AccessToken: access}
	data.Role, _ = sess.Get(keyRole).(string)
	data.IDToken, _ = sess.Get(keyIDToken).(string)
	data.RefreshToken, _ = sess.Get(keyRefreshToken).(string)
	if exp, ok := sess.Get(keyExpiresAt).(int64); ok {
		data.ExpiresAt = time.Unix(exp, 0)
	}
	return data, nil
}

// Save reescribe la sesión actual tras un refresco de tokens.
func (s *Sessions) Save(c *fiber.Ctx, data *dto.SessionData) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	return write(sess, data)
}

// SaveLogin guarda una identidad nueva bajo un id de sesión nuevo; el id que traía la petición deja de valer.
func (s *Sessions) SaveLogin(c *fiber.Ctx, data *dto.SessionData) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	return write(sess, data)
}

func write(sess *session.Session, data *dto.SessionData) error {
	sess.Set(keyEmail, data.Email)
	sess.Set(keyRole, data.Role)
	sess.Set(keyAccessToken, data.AccessToken)
	sess.Set(keyIDToken, data.IDToken)
	sess.Set(keyRefreshToken, data.RefreshToken)
	sess.Set(keyExpiresAt, data.ExpiresAt.Unix())
	return sess.Save()
}

// Destroy borra la sesión del store y la cookie.
func (s *Sessions) Destroy(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// RequireSession exige sesión autenticada y vigente. Con el access token vencido hace UN refresco;
// si falla limpia la sesión y manda a /login (HX-Redirect en peticiones de fragmento).
func RequireSession(uc *auth.AuthUseCase, sessions *Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := sessions.Load(c)
		if err != nil {
			return err
		}
		if data == nil {
			return redirectToLogin(c, "")
		}
		changed, err := uc.EnsureFresh(c.UserContext(), data)
		if err != nil {
			_ = sessions.Destroy(c)
			if errors.Is(err, domain.ErrSessionExpired) {
				return redirectToLogin(c, "expired")
			}
			return err
		}
		if changed {
			if err := sessions.Save(c, data); err != nil {
				return err
			}
		}
		c.Locals(LocalSession, data)
		c.Locals(LocalPrincipal, auth.Principal(data))
		return c.Next()
	}
}

// RequireRole autoriza si el principal tiene alguno de los roles. Usar después de RequireSession.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.Role == "" {
			return redirectToLogin(c, "")
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return renderAlert(c, fiber.StatusForbidden, msgForbidden, true)
	}
}

// GetPrincipal principal autenticado (vacío fuera de RequireSession).
func GetPrincipal(c *fiber.Ctx) entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(entity.Principal)
	return p
}

// GetSession datos de sesión (nil fuera de RequireSession).
func GetSession(c *fiber.Ctx) *dto.SessionData {
	s, _ := c.Locals(LocalSession).(*dto.SessionData)
	return s
}

// redirectToLogin reason viaja como ?reason= para que /login muestre el mensaje.
func redirectToLogin(c *fiber.Ctx, reason string) error {
	target := "/login"
	if reason != "" {
		target += "?reason=" + reason
	}
	if isFragment(c) {
		c.Set("HX-Redirect", target)
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}
