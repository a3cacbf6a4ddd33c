// Package identity implementa auth.IdentityProvider contra Amazon Cognito y un directorio local para desarrollo.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/config"
)

var _ auth.IdentityProvider = (*CognitoProvider)(nil)

// cognitoAPI subconjunto del cliente de Cognito que usamos (permite un fake en tests).
type cognitoAPI interface {
	AdminInitiateAuth(ctx context.Context, in *cip.AdminInitiateAuthInput, opts ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, opts ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, opts ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, opts ...func(*cip.Options)) (*cip.GetUserOutput, error)
}

// CognitoProvider adaptador sobre un user pool de Cognito (flujo ADMIN_NO_SRP_AUTH).
type CognitoProvider struct {
	api        cognitoAPI
	clientID   string
	userPoolID string
	now        func() time.Time
}

// NewCognitoProvider crea el cliente con la región y credenciales de la configuración.
// Sin access key se usa la cadena de credenciales por defecto del SDK (rol de la instancia, perfil, etc.).
func NewCognitoProvider(ctx context.Context, cfg config.IdentityConfig) (*CognitoProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cognito: cargar configuración AWS: %w", err)
	}
	return newCognitoProvider(cip.NewFromConfig(awsCfg), cfg.ClientID, cfg.UserPoolID), nil
}

func newCognitoProvider(api cognitoAPI, clientID, userPoolID string) *CognitoProvider {
	return &CognitoProvider{api: api, clientID: clientID, userPoolID: userPoolID, now: time.Now}
}

// Authenticate usuario + contraseña.
func (p *CognitoProvider) Authenticate(ctx context.Context, username, password string) (*entity.AuthTokens, error) {
	out, err := p.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		AuthFlow:   types.AuthFlowTypeAdminNoSrpAuth,
		ClientId:   aws.String(p.clientID),
		UserPoolId: aws.String(p.userPoolID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}
	return p.tokens(out.AuthenticationResult)
}

// Refresh flujo REFRESH_TOKEN_AUTH. Cognito no rota el refresh token: vuelve vacío.
func (p *CognitoProvider) Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	out, err := p.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		AuthFlow:   types.AuthFlowTypeRefreshTokenAuth,
		ClientId:   aws.String(p.clientID),
		UserPoolId: aws.String(p.userPoolID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}
	return p.tokens(out.AuthenticationResult)
}

func (p *CognitoProvider) tokens(res *types.AuthenticationResultType) (*entity.AuthTokens, error) {
	// Con MFA u otro challenge Cognito no devuelve AuthenticationResult.
	if res == nil || aws.ToString(res.AccessToken) == "" {
		return nil, fmt.Errorf("cognito: respuesta sin AuthenticationResult: %w", domain.ErrIdentityFailure)
	}
	return &entity.AuthTokens{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresAt:    p.now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}, nil
}

// Register SignUp; Cognito envía el código de confirmación por correo.
func (p *CognitoProvider) Register(ctx context.Context, username, password string) error {
	_, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
		Password: aws.String(password),
	})
	return mapCognitoError(err)
}

// Confirm ConfirmSignUp.
func (p *CognitoProvider) Confirm(ctx context.Context, username, code string) error {
	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	return mapCognitoError(err)
}

// RequestPasswordReset ForgotPassword.
func (p *CognitoProvider) RequestPasswordReset(ctx context.Context, username string) error {
	_, err := p.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
	})
	return mapCognitoError(err)
}

// CompletePasswordReset ConfirmForgotPassword.
func (p *CognitoProvider) CompletePasswordReset(ctx context.Context, username, code, newPassword string) error {
	_, err := p.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	return mapCognitoError(err)
}

// GetUser devuelve el atributo email (o el username si el pool no lo expone).
func (p *CognitoProvider) GetUser(ctx context.Context, accessToken string) (string, error) {
	out, err := p.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return "", mapCognitoError(err)
	}
	for _, a := range out.UserAttributes {
		if aws.ToString(a.Name) == "email" {
			return strings.ToLower(aws.ToString(a.Value)), nil
		}
	}
	return strings.ToLower(aws.ToString(out.Username)), nil
}

// mapCognitoError traduce las excepciones tipadas del SDK a errores de dominio.
func mapCognitoError(err error) error {
	if err == nil {
		return nil
	}
	var (
		notAuthorized   *types.NotAuthorizedException
		resourceMissing *types.ResourceNotFoundException
		userMissing     *types.UserNotFoundException
		notConfirmed    *types.UserNotConfirmedException
		exists          *types.UsernameExistsException
		weak            *types.InvalidPasswordException
		expired         *types.ExpiredCodeException
		mismatch        *types.CodeMismatchException
		tooMany         *types.TooManyFailedAttemptsException
		limit           *types.LimitExceededException
		delivery        *types.CodeDeliveryFailureException
	)
	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("cognito: %w", domain.ErrInvalidCredentials)
	case errors.As(err, &resourceMissing):
		return fmt.Errorf("cognito: %w", domain.ErrIdentityNotFound)
	case errors.As(err, &userMissing):
		return fmt.Errorf("cognito: %w", domain.ErrUserNotFound)
	case errors.As(err, &notConfirmed):
		return fmt.Errorf("cognito: %w", domain.ErrUserNotConfirmed)
	case errors.As(err, &exists):
		return fmt.Errorf("cognito: %w", domain.ErrEmailAlreadyExists)
	case errors.As(err, &weak):
		return fmt.Errorf("cognito: %w", domain.ErrWeakPassword)
	case errors.As(err, &expired):
		return fmt.Errorf("cognito: %w", domain.ErrCodeExpired)
	case errors.As(err, &mismatch):
		return fmt.Errorf("cognito: %w", domain.ErrCodeMismatch)
	case errors.As(err, &tooMany), errors.As(err, &limit):
		return fmt.Errorf("cognito: %w", domain.ErrTooManyAttempts)
	case errors.As(err, &delivery):
		return fmt.Errorf("cognito: %w", domain.ErrCodeDeliveryFailure)
	}
	return fmt.Errorf("cognito: %v: %w", err, domain.ErrIdentityFailure)
}
