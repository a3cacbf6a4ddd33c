package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/pkg/jwt"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

// AuthUseCase casos de uso de autenticación: login, registro, confirmación, contraseña y refresco de sesión.
type AuthUseCase struct {
	idp         IdentityProvider
	roster      repository.RosterRepository
	adminEmails map[string]struct{}
	log         *logger.Logger
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth. adminEmails es la lista de correos con rol admin.
func NewAuthUseCase(idp IdentityProvider, roster repository.RosterRepository, adminEmails []string, log *logger.Logger) *AuthUseCase {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{idp: idp, roster: roster, adminEmails: admins, log: log, now: time.Now}
}

// Login autentica contra el proveedor y clasifica el rol. Un usuario autenticado que no es admin
// ni está en el padrón recibe domain.ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.SessionData, error) {
	email := normalizeEmail(in.Username)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	tokens, err := uc.idp.Authenticate(ctx, email, in.Password)
	if err != nil {
		uc.log.Warn().Err(err).Str("email", email).Msg("login rechazado")
		return nil, err
	}
	role, err := uc.classify(ctx, email)
	if err != nil {
		return nil, err
	}
	sess := &dto.SessionData{Email: email, Role: role}
	uc.applyTokens(sess, tokens)
	uc.log.Info().Str("email", email).Str("role", role).Msg("login")
	return sess, nil
}

func (uc *AuthUseCase) classify(ctx context.Context, email string) (string, error) {
	if _, ok := uc.adminEmails[email]; ok {
		return entity.RoleAdmin, nil
	}
	u, err := uc.roster.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("consultar padrón: %w", err)
	}
	if u == nil {
		uc.log.Warn().Str("email", email).Msg("usuario autenticado fuera del padrón")
		return "", domain.ErrForbidden
	}
	return entity.RoleRepresentative, nil
}

// Register da de alta la cuenta en el proveedor; queda pendiente de confirmación.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) error {
	email := normalizeEmail(in.Username)
	if email == "" || in.Password == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.idp.Register(ctx, email, in.Password); err != nil {
		uc.log.Warn().Err(err).Str("email", email).Msg("registro rechazado")
		return err
	}
	return nil
}

// Confirm confirma la cuenta con el código enviado por correo.
func (uc *AuthUseCase) Confirm(ctx context.Context, in dto.ConfirmRequest) error {
	email := normalizeEmail(in.Username)
	code := strings.TrimSpace(in.Code)
	if email == "" || code == "" {
		return domain.ErrInvalidInput
	}
	return uc.idp.Confirm(ctx, email, code)
}

// RequestPasswordReset pide al proveedor enviar el código de recuperación.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequest) error {
	email := normalizeEmail(in.Username)
	if email == "" {
		return domain.ErrInvalidInput
	}
	return uc.idp.RequestPasswordReset(ctx, email)
}

// CompletePasswordReset fija la nueva contraseña usando el código recibido.
func (uc *AuthUseCase) CompletePasswordReset(ctx context.Context, in dto.CompletePasswordResetRequest) error {
	email := normalizeEmail(in.Username)
	code := strings.TrimSpace(in.Code)
	if email == "" || code == "" || in.NewPassword == "" {
		return domain.ErrInvalidInput
	}
	return uc.idp.CompletePasswordReset(ctx, email, code, in.NewPassword)
}

// EnsureFresh revisa el exp del access token (sin verificar firma). Vencido: intenta UN refresco.
// Devuelve true si la sesión cambió y hay que guardarla. Sin refresco posible: domain.ErrSessionExpired.
func (uc *AuthUseCase) EnsureFresh(ctx context.Context, sess *dto.SessionData) (bool, error) {
	if sess == nil || sess.AccessToken == "" {
		return false, domain.ErrSessionExpired
	}
	if !jwt.Expired(sess.AccessToken, uc.now()) {
		return false, nil
	}
	if sess.RefreshToken == "" {
		return false, domain.ErrSessionExpired
	}
	tokens, err := uc.idp.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		uc.log.Info().Err(err).Str("email", sess.Email).Msg("refresco de sesión fallido")
		return false, domain.ErrSessionExpired
	}
	uc.applyTokens(sess, tokens)
	if jwt.Expired(sess.AccessToken, uc.now()) {
		return false, domain.ErrSessionExpired
	}
	return true, nil
}

// VerifyUser confirma que el directorio aún reconoce al dueño del token (antes de crear un pedido).
func (uc *AuthUseCase) VerifyUser(ctx context.Context, sess *dto.SessionData) error {
	email, err := uc.idp.GetUser(ctx, sess.AccessToken)
	if err != nil {
		return err
	}
	if normalizeEmail(email) != sess.Email {
		return domain.ErrUserNotFound
	}
	return nil
}

// LookupCWID busca en el padrón para prellenar el formulario de registro.
func (uc *AuthUseCase) LookupCWID(ctx context.Context, cwid string) (dto.RosterEntryResponse, error) {
	cwid = strings.TrimSpace(cwid)
	out := dto.RosterEntryResponse{CWID: cwid}
	if cwid == "" {
		return out, nil
	}
	u, err := uc.roster.GetByCWID(ctx, cwid)
	if err != nil {
		return out, err
	}
	if u == nil {
		return out, nil
	}
	return dto.RosterEntryResponse{
		Found:        true,
		CWID:         u.CWID,
		Email:        u.Email,
		Name:         u.Name,
		CustomerTeam: u.CustomerTeam,
		Address:      u.Address,
		ExtNumber:    u.ExtNumber,
		IntNumber:    u.IntNumber,
		Colonia:      u.Colonia,
		City:         u.City,
		State:        u.State,
		PostalCode:   u.PostalCode,
		Phone:        u.Phone,
	}, nil
}

// Principal identidad explícita que reciben los casos de uso de catálogo y pedidos.
func Principal(sess *dto.SessionData) entity.Principal {
	return entity.Principal{Email: sess.Email, Role: sess.Role}
}

func (uc *AuthUseCase) applyTokens(sess *dto.SessionData, t *entity.AuthTokens) {
	sess.AccessToken = t.AccessToken
	if t.IDToken != "" {
		sess.IDToken = t.IDToken
	}
	if t.RefreshToken != "" {
		sess.RefreshToken = t.RefreshToken
	}
	sess.ExpiresAt = t.ExpiresAt
	if exp, err := jwt.ExpiresAt(t.AccessToken); err == nil {
		sess.ExpiresAt = exp
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
