package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/jwt"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

var _ auth.IdentityProvider = (*LocalProvider)(nil)

const (
	codeTTL         = 24 * time.Hour
	maxCodeAttempts = 5
)

// LocalConfig parámetros del directorio local.
type LocalConfig struct {
	Secret     string
	Issuer     string
	ExpMinutes int
}

type localUser struct {
	hash         []byte
	confirmed    bool
	code         string
	codeExpires  time.Time
	attempts     int
	resetCode    string
	resetExpires time.Time
}

// LocalProvider directorio en memoria con las mismas reglas que el user pool (desarrollo y tests).
// Los códigos no se envían: quedan en el log y en LastCode.
type LocalProvider struct {
	cfg LocalConfig
	log *logger.Logger
	now func() time.Time

	mu       sync.Mutex
	users    map[string]*localUser
	refresh  map[string]string // refresh token -> email
	lastCode map[string]string
}

// NewLocalProvider construye el directorio vacío.
func NewLocalProvider(cfg LocalConfig, log *logger.Logger) *LocalProvider {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ExpMinutes <= 0 {
		cfg.ExpMinutes = 60
	}
	return &LocalProvider{
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		users:    make(map[string]*localUser),
		refresh:  make(map[string]string),
		lastCode: make(map[string]string),
	}
}

// SeedUser crea una cuenta ya confirmada (cuentas de desarrollo).
func (p *LocalProvider) SeedUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[key(username)] = &localUser{hash: hash, confirmed: true}
	return nil
}

// LastCode último código de confirmación o recuperación emitido para el usuario.
func (p *LocalProvider) LastCode(username string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCode[key(username)]
}

// Authenticate valida la contraseña y emite tokens.
func (p *LocalProvider) Authenticate(_ context.Context, username, password string) (*entity.AuthTokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[key(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.confirmed {
		return nil, domain.ErrUserNotConfirmed
	}
	return p.issue(key(username))
}

// Register crea la cuenta sin confirmar y genera el código.
func (p *LocalProvider) Register(_ context.Context, username, password string) error {
	if !strongPassword(password) {
		return domain.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("local: hash: %w", err)
	}
	code, err := sixDigits()
	if err != nil {
		return domain.ErrCodeDeliveryFailure
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	k := key(username)
	if _, ok := p.users[k]; ok {
		return domain.ErrEmailAlreadyExists
	}
	p.users[k] = &localUser{hash: hash, code: code, codeExpires: p.now().Add(codeTTL)}
	p.lastCode[k] = code
	p.log.Info().Str("email", k).Str("code", code).Msg("código de confirmación (proveedor local)")
	return nil
}

// Confirm valida el código de alta. Tras maxCodeAttempts fallos queda bloqueado.
func (p *LocalProvider) Confirm(_ context.Context, username, code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[key(username)]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.confirmed {
		return nil
	}
	if u.attempts >= maxCodeAttempts {
		return domain.ErrTooManyAttempts
	}
	if p.now().After(u.codeExpires) {
		return domain.ErrCodeExpired
	}
	if code != u.code {
		u.attempts++
		return domain.ErrCodeMismatch
	}
	u.confirmed = true
	u.code = ""
	u.attempts = 0
	return nil
}

// RequestPasswordReset genera el código de recuperación.
func (p *LocalProvider) RequestPasswordReset(_ context.Context, username string) error {
	code, err := sixDigits()
	if err != nil {
		return domain.ErrCodeDeliveryFailure
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	k := key(username)
	u, ok := p.users[k]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.resetCode = code
	u.resetExpires = p.now().Add(codeTTL)
	p.lastCode[k] = code
	p.log.Info().Str("email", k).Str("code", code).Msg("código de recuperación (proveedor local)")
	return nil
}

// CompletePasswordReset fija la nueva contraseña si el código coincide.
func (p *LocalProvider) CompletePasswordReset(_ context.Context, username, code, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[key(username)]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.resetCode == "" || code != u.resetCode {
		return domain.ErrCodeMismatch
	}
	if p.now().After(u.resetExpires) {
		return domain.ErrCodeExpired
	}
	if !strongPassword(newPassword) {
		return domain.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("local: hash: %w", err)
	}
	u.hash = hash
	u.resetCode = ""
	// Recuperar la contraseña también confirma el correo.
	u.confirmed = true
	return nil
}

// Refresh emite un access token nuevo para un refresh token conocido.
func (p *LocalProvider) Refresh(_ context.Context, refreshToken string) (*entity.AuthTokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	email, ok := p.refresh[refreshToken]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if _, ok := p.users[email]; !ok {
		delete(p.refresh, refreshToken)
		return nil, domain.ErrUserNotFound
	}
	t, err := p.sign(email)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetUser valida la firma del access token local y que la cuenta siga existiendo.
func (p *LocalProvider) GetUser(_ context.Context, accessToken string) (string, error) {
	email, err := jwt.Parse(p.cfg.Secret, accessToken)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[key(email)]; !ok {
		return "", domain.ErrUserNotFound
	}
	return key(email), nil
}

// issue: access + id + refresh. Llamar con mu tomado.
func (p *LocalProvider) issue(email string) (*entity.AuthTokens, error) {
	t, err := p.sign(email)
	if err != nil {
		return nil, err
	}
	t.RefreshToken = uuid.NewString()
	p.refresh[t.RefreshToken] = email
	return t, nil
}

func (p *LocalProvider) sign(email string) (*entity.AuthTokens, error) {
	access, err := jwt.Generate(p.cfg.Secret, email, "access", p.cfg.Issuer, p.cfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("local: firmar access token: %w", domain.ErrIdentityFailure)
	}
	id, err := jwt.Generate(p.cfg.Secret, email, "id", p.cfg.Issuer, p.cfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("local: firmar id token: %w", domain.ErrIdentityFailure)
	}
	return &entity.AuthTokens{
		AccessToken: access,
		IDToken:     id,
		ExpiresAt:   p.now().Add(time.Duration(p.cfg.ExpMinutes) * time.Minute),
	}, nil
}

// strongPassword misma política que el user pool: 8+ caracteres, mayúscula, número y carácter especial.
func strongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && digit && special
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
