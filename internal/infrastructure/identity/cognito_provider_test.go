package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/domain"
)

// fakeCognito responde con lo configurado y guarda el último input de auth.
type fakeCognito struct {
	authOut  *cip.AdminInitiateAuthOutput
	err      error
	lastAuth *cip.AdminInitiateAuthInput
	user     *cip.GetUserOutput
}

func (f *fakeCognito) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	f.lastAuth = in
	return f.authOut, f.err
}

func (f *fakeCognito) SignUp(context.Context, *cip.SignUpInput, ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	return &cip.SignUpOutput{}, f.err
}

func (f *fakeCognito) ConfirmSignUp(context.Context, *cip.ConfirmSignUpInput, ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	return &cip.ConfirmSignUpOutput{}, f.err
}

func (f *fakeCognito) ForgotPassword(context.Context, *cip.ForgotPasswordInput, ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, f.err
}

func (f *fakeCognito) ConfirmForgotPassword(context.Context, *cip.ConfirmForgotPasswordInput, ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, f.err
}

func (f *fakeCognito) GetUser(context.Context, *cip.GetUserInput, ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	return f.user, f.err
}

func TestCognito_Authenticate(t *testing.T) {
	fake := &fakeCognito{authOut: &cip.AdminInitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String("access"),
			IdToken:      aws.String("id"),
			RefreshToken: aws.String("refresh"),
			ExpiresIn:    3600,
		},
	}}
	p := newCognitoProvider(fake, "client", "pool")
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	tok, err := p.Authenticate(context.Background(), "rep@bayer.com", "Secreta1!")
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.Equal(t, fixed.Add(time.Hour), tok.ExpiresAt)

	assert.Equal(t, types.AuthFlowTypeAdminNoSrpAuth, fake.lastAuth.AuthFlow)
	assert.Equal(t, "pool", aws.ToString(fake.lastAuth.UserPoolId))
	assert.Equal(t, "rep@bayer.com", fake.lastAuth.AuthParameters["USERNAME"])
}

func TestCognito_RefreshUsaFlujoRefreshToken(t *testing.T) {
	fake := &fakeCognito{authOut: &cip.AdminInitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("nuevo"), ExpiresIn: 60},
	}}
	p := newCognitoProvider(fake, "client", "pool")

	tok, err := p.Refresh(context.Background(), "refresh-viejo")
	require.NoError(t, err)
	assert.Equal(t, "nuevo", tok.AccessToken)
	assert.Empty(t, tok.RefreshToken)
	assert.Equal(t, types.AuthFlowTypeRefreshTokenAuth, fake.lastAuth.AuthFlow)
	assert.Equal(t, "refresh-viejo", fake.lastAuth.AuthParameters["REFRESH_TOKEN"])
}

func TestCognito_SinAuthenticationResult(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{authOut: &cip.AdminInitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}}, "c", "p")
	_, err := p.Authenticate(context.Background(), "rep@bayer.com", "x")
	assert.ErrorIs(t, err, domain.ErrIdentityFailure)
}

func TestCognito_GetUserPrefiereAtributoEmail(t *testing.T) {
	fake := &fakeCognito{user: &cip.GetUserOutput{
		Username: aws.String("0b1c-uuid"),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("sub"), Value: aws.String("0b1c-uuid")},
			{Name: aws.String("email"), Value: aws.String("Rep@Bayer.com")},
		},
	}}
	email, err := newCognitoProvider(fake, "c", "p").GetUser(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "rep@bayer.com", email)
}

func TestMapCognitoError(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{&types.NotAuthorizedException{}, domain.ErrInvalidCredentials},
		{&types.ResourceNotFoundException{}, domain.ErrIdentityNotFound},
		{&types.UserNotFoundException{}, domain.ErrUserNotFound},
		{&types.UserNotConfirmedException{}, domain.ErrUserNotConfirmed},
		{&types.UsernameExistsException{}, domain.ErrEmailAlreadyExists},
		{&types.InvalidPasswordException{}, domain.ErrWeakPassword},
		{&types.ExpiredCodeException{}, domain.ErrCodeExpired},
		{&types.CodeMismatchException{}, domain.ErrCodeMismatch},
		{&types.TooManyFailedAttemptsException{}, domain.ErrTooManyAttempts},
		{&types.LimitExceededException{}, domain.ErrTooManyAttempts},
		{&types.CodeDeliveryFailureException{}, domain.ErrCodeDeliveryFailure},
		{errors.New("timeout de red"), domain.ErrIdentityFailure},
	}
	for _, tt := range tests {
		got := mapCognitoError(tt.in)
		assert.ErrorIs(t, got, tt.want, "%T", tt.in)
	}
	assert.NoError(t, mapCognitoError(nil))
}

func TestCognito_RegisterPropagaError(t *testing.T) {
	p := newCognitoProvider(&fakeCognito{err: &types.UsernameExistsException{}}, "c", "p")
	err := p.Register(context.Background(), "rep@bayer.com", "Secreta1!")
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}
