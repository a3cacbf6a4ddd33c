package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/xaldigital/insumos-portal/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testEmail  = "rep@bayer.com"
	testIssuer = "insumos-portal-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testEmail, "access", testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	email, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testEmail, email)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testEmail, "access", testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testEmail, "access", testIssuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testEmail, "access", testIssuer, 60)
	assert.Error(t, err)
}

func TestExpiresAt_SinVerificarFirma(t *testing.T) {
	// Firmado con otro secreto: ExpiresAt no valida la firma.
	tok, err := pkgjwt.Generate("secreto-de-un-tercero", testEmail, "access", testIssuer, 30)
	require.NoError(t, err)

	exp, err := pkgjwt.ExpiresAt(tok)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)
}

func TestExpired(t *testing.T) {
	vigente, err := pkgjwt.Generate(testSecret, testEmail, "access", testIssuer, 30)
	require.NoError(t, err)
	vencido, err := pkgjwt.Generate(testSecret, testEmail, "access", testIssuer, -1)
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, pkgjwt.Expired(vigente, now))
	assert.True(t, pkgjwt.Expired(vencido, now))
	assert.True(t, pkgjwt.Expired("no-es-un-jwt", now))
	assert.True(t, pkgjwt.Expired(vigente, now.Add(time.Hour)))
}
