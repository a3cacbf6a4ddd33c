package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	apphttp "github.com/xaldigital/insumos-portal/internal/interfaces/http"
	"github.com/xaldigital/insumos-portal/internal/testutil"
)

func TestInsumos_AltaEdicionYBaja(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Norte")
	cookie := env.login(t, testutil.Admin)

	resp := env.postForm(t, "/add_insumos_records", url.Values{
		"name": {"Gasas estériles"}, "stock": {"25"}, "unit_cost": {"12.5"}, "vendorselect": {fmt.Sprint(v.ID)},
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "insumos-changed", resp.Header.Get("HX-Trigger"))
	assert.Contains(t, body(t, resp), "Insumo agregado correctamente!")

	resp = env.get(t, "/search_insumos?search=GASAS", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Gasas estériles")
	assert.Contains(t, html, "$12.50")
	assert.Contains(t, html, "Proveedor Norte")

	list, _, err := env.store.Insumos().List(context.Background(), repository.InsumoFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	resp = env.get(t, fmt.Sprintf("/edit_insumo/%d", id), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `value="12.50"`)

	resp = env.postForm(t, fmt.Sprintf("/edit_insumo/%d", id), url.Values{
		"name": {"Gasas estériles"}, "stock": {"40"}, "unit_cost": {"11"}, "vendorselect": {fmt.Sprint(v.ID)},
	}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := env.store.Insumos().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Stock)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/delete_insumo/%d", id), nil)
	resp = env.do(t, req, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err = env.store.Insumos().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsumos_Validaciones(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Sur")
	cookie := env.login(t, testutil.Admin)

	tests := []struct {
		name     string
		form     url.Values
		status   int
		contains string
	}{
		{"proveedor inexistente", url.Values{"name": {"Jeringa"}, "stock": {"1"}, "unit_cost": {"1"}, "vendorselect": {"9999"}}, http.StatusBadRequest, "El proveedor no existe"},
		{"costo negativo", url.Values{"name": {"Jeringa"}, "stock": {"1"}, "unit_cost": {"-1"}, "vendorselect": {fmt.Sprint(v.ID)}}, http.StatusBadRequest, "Datos inválidos"},
		{"sin nombre", url.Values{"name": {""}, "stock": {"1"}, "unit_cost": {"1"}, "vendorselect": {fmt.Sprint(v.ID)}}, http.StatusBadRequest, "Datos inválidos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postForm(t, "/add_insumos_records", tt.form, cookie)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body(t, resp), tt.contains)
		})
	}
}

// Las alertas de error conservan el status y llevan X-Alert; el layout las muestra aunque sean 4xx.
func TestAlertas_ErrorMarcadoParaHtmx(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Este")
	cookie := env.login(t, testutil.Admin)

	send := func(form url.Values) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/add_insumos_records", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		return env.do(t, req, cookie)
	}

	resp := send(url.Values{"name": {"Jeringa"}, "stock": {"1"}, "unit_cost": {"1"}, "vendorselect": {"9999"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", resp.Header.Get(apphttp.HeaderAlert))
	html := body(t, resp)
	assert.Contains(t, html, "alert-danger")
	assert.Contains(t, html, "El proveedor no existe")

	resp = send(url.Values{"name": {"Jeringa"}, "stock": {"1"}, "unit_cost": {"1"}, "vendorselect": {fmt.Sprint(v.ID)}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "info", resp.Header.Get(apphttp.HeaderAlert))

	repCookie := env.login(t, testutil.Rep1)
	resp = env.get(t, "/api/vendors", repCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "error", resp.Header.Get(apphttp.HeaderAlert))

	page := body(t, env.get(t, "/login", ""))
	assert.Contains(t, page, "htmx:beforeSwap")
	assert.Contains(t, page, "getResponseHeader('X-Alert')")
}

func TestInsumosAdmin_PaginaDeDiez(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Centro")
	for i := 0; i < 12; i++ {
		testutil.SeedInsumo(t, env.store, v.ID, fmt.Sprintf("Insumo %02d", i), 5, "1.00")
	}
	cookie := env.login(t, testutil.Admin)

	resp := env.get(t, "/api/vendors?per_page=50", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "1 / 2 (12)")
	assert.Contains(t, html, "page=2")
	assert.NotContains(t, html, "Insumo 01", "los más antiguos quedan en la segunda página")
}

func TestInsumosAdmin_PaginaFueraDeRango(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Lejano")
	testutil.SeedInsumo(t, env.store, v.ID, "Gasas", 5, "3.00")
	cookie := env.login(t, testutil.Admin)

	resp := env.get(t, "/api/vendors?page=9223372036854775807", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Sin insumos")
}

func TestVendorOptions_JSON(t *testing.T) {
	env := buildTestApp(t)
	a := testutil.SeedVendor(t, env.store, "Beta")
	testutil.SeedVendor(t, env.store, "Alfa")
	cookie := env.login(t, testutil.Admin)

	resp := env.get(t, "/getvendorlist", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var opts []struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opts))
	require.Len(t, opts, 2)
	assert.Contains(t, opts, struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
	}{a.ID, "Beta"})
}

func TestVendors_AltaDuplicadoYBajaConInsumos(t *testing.T) {
	env := buildTestApp(t)
	cookie := env.login(t, testutil.Admin)

	resp := env.postForm(t, "/add_vendor", url.Values{"name": {"Medissa"}, "cellphone": {"5551234567"}}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.postForm(t, "/add_vendor", url.Values{"name": {"MEDISSA"}}, cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Ya existe un registro con ese nombre")

	all, err := env.store.Vendors().ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	testutil.SeedInsumo(t, env.store, all[0].ID, "Guantes", 3, "2.00")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/delete_vendor/%d", all[0].ID), nil)
	resp = env.do(t, req, cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body(t, resp), "El proveedor tiene insumos asignados")

	req = httptest.NewRequest(http.MethodGet, "/vendors", nil)
	req.Header.Set("HX-Request", "true")
	resp = env.do(t, req, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Medissa")
	assert.NotContains(t, html, "<html", "con HX-Request solo la tabla")
}

func TestRepresentante_CatalogoYBusqueda(t *testing.T) {
	env := buildTestApp(t)
	v := testutil.SeedVendor(t, env.store, "Proveedor Oeste")
	testutil.SeedInsumo(t, env.store, v.ID, "Catéter venoso", 8, "40.00")
	testutil.SeedInsumo(t, env.store, v.ID, "Sonda Foley", 4, "18.00")
	cookie := env.login(t, testutil.Rep1)

	resp := env.get(t, "/representante", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Catéter venoso")
	assert.Contains(t, html, "Sonda Foley")
	assert.Contains(t, html, testutil.Rep1.Email)

	resp = env.get(t, "/search_insumos_representante?search=sonda", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html = body(t, resp)
	assert.Contains(t, html, "Sonda Foley")
	assert.NotContains(t, html, "Catéter venoso")
}
