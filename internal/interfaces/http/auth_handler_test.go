package http_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/testutil"
)

func TestLogin_RedirigeSegunRol(t *testing.T) {
	env := buildTestApp(t)

	resp := env.postForm(t, "/login", url.Values{"username": {testutil.Admin.Email}, "password": {testPassword}}, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = env.postForm(t, "/login", url.Values{"username": {"ANA.LOPEZ@bayer.com"}, "password": {testPassword}}, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/representante", resp.Header.Get("Location"))
}

func TestLogin_Errores(t *testing.T) {
	env := buildTestApp(t)
	require.NoError(t, env.idp.SeedUser("externo@bayer.com", testPassword))

	tests := []struct {
		name     string
		form     url.Values
		status   int
		contains string
	}{
		{"campos vacíos", url.Values{"username": {""}, "password": {""}}, http.StatusBadRequest, "Nombre de usuario y Contraseña obligatorios"},
		{"contraseña incorrecta", url.Values{"username": {testutil.Rep1.Email}, "password": {"Otra123!"}}, http.StatusUnauthorized, "Credenciales Inválidas"},
		{"usuario inexistente", url.Values{"username": {"nadie@bayer.com"}, "password": {testPassword}}, http.StatusNotFound, "Usuario No Encontrado"},
		{"fuera del padrón", url.Values{"username": {"externo@bayer.com"}, "password": {testPassword}}, http.StatusForbidden, "Usuario no Autorizado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postForm(t, "/login", tt.form, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body(t, resp), tt.contains)
		})
	}
}

func TestLoginPage_SesionExpirada(t *testing.T) {
	env := buildTestApp(t)
	resp := env.get(t, "/login?reason=expired", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Sesión Expirada")
}

func TestRegistro_ConfirmacionYLogin(t *testing.T) {
	env := buildTestApp(t)
	const email = "nuevo.rep@bayer.com"

	resp := env.postForm(t, "/registro", url.Values{"username": {email}, "password": {"debil"}}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Crea una contraseña")

	resp = env.postForm(t, "/registro", url.Values{"username": {email}, "password": {testPassword}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Se envió un código de confirmación")
	assert.Contains(t, html, email, "el correo queda prellenado")

	resp = env.postForm(t, "/registro", url.Values{"username": {email}, "password": {testPassword}}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.postForm(t, "/login", url.Values{"username": {email}, "password": {testPassword}}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Usuario No Confirmado")

	resp = env.postForm(t, "/confirmar_cuenta", url.Values{"email_not_confirmed": {email}, "custom_code": {"000000x"}}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "El código no es válido")

	resp = env.postForm(t, "/confirmar_cuenta", url.Values{"email_not_confirmed": {email}, "custom_code": {env.idp.LastCode(email)}}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Cuenta confirmada")
}

func TestRecuperarContrasena(t *testing.T) {
	env := buildTestApp(t)
	email := testutil.Rep2.Email

	resp := env.postForm(t, "/enviar_link_contrasena", url.Values{"email_forgot_password": {"nadie@bayer.com"}}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Usuario No Encontrado o Eliminado.")

	resp = env.postForm(t, "/enviar_link_contrasena", url.Values{"email_forgot_password": {email}}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Se envió un código a su correo")

	resp = env.postForm(t, "/olvido_contrasena", url.Values{
		"email_forgot_password": {email},
		"custom_code":           {env.idp.LastCode(email)},
		"password":              {"NuevaClave9$"},
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Contraseña actualizada")

	resp = env.postForm(t, "/login", url.Values{"username": {email}, "password": {"NuevaClave9$"}}, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAutocomplete_PrellenaDesdePadron(t *testing.T) {
	env := buildTestApp(t)

	resp := env.get(t, "/autocomplete?cwid_custom_id=examp01", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, testutil.Rep1.Email)
	assert.Contains(t, html, "Monterrey")

	resp = env.get(t, "/autocomplete?cwid_custom_id=ZZZ", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "CWID no encontrado")
}
