package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/catalog"
	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/identity"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/pdf"
	apphttp "github.com/xaldigital/insumos-portal/internal/interfaces/http"
	"github.com/xaldigital/insumos-portal/internal/testutil"
)

const (
	testSecret   = "secreto-http-test"
	testPassword = "Correcta1!"
	cookieName   = "insumos_session"
)

// testEnv app completa sobre el store en memoria y el directorio local.
type testEnv struct {
	app   *fiber.App
	store *testutil.Store
	idp   *identity.LocalProvider
}

// buildTestApp arma el portal con Admin, Rep1 y Rep2 dados de alta y confirmados.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	s := testutil.NewStore()
	testutil.SeedRoster(t, s)

	idp := identity.NewLocalProvider(identity.LocalConfig{Secret: testSecret, Issuer: "insumos-test", ExpMinutes: 60}, nil)
	for _, p := range []entity.Principal{testutil.Admin, testutil.Rep1, testutil.Rep2} {
		require.NoError(t, idp.SeedUser(p.Email, testPassword))
	}
	letters, err := pdf.NewMarotoLetterGenerator("")
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(idp, s.Roster(), []string{testutil.Admin.Email}, nil)
	catalogUC := catalog.NewCatalogUseCase(s.Insumos(), s.Vendors(), nil)
	orderUC := order.NewOrderUseCase(s, s.Orders(), s.Insumos(), s.Roster(), letters, nil, order.StockAllowNegative, nil)

	app := fiber.New(fiber.Config{Views: apphttp.NewViews()})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		CatalogUC: catalogUC,
		OrderUC:   orderUC,
		Sessions:  apphttp.NewSessions(nil, time.Hour, false),
		AppName:   "insumos-test",
	})
	return &testEnv{app: app, store: s, idp: idp}
}

// do lanza la petición; cookie vacía = sin sesión.
func (e *testEnv) do(t *testing.T, req *http.Request, cookie string) *http.Response {
	t.Helper()
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path, cookie string) *http.Response {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, cookie)
}

// login devuelve el valor de la cookie de sesión.
func (e *testEnv) login(t *testing.T, p entity.Principal) string {
	t.Helper()
	resp := e.postForm(t, "/login", url.Values{"username": {p.Email}, "password": {testPassword}}, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatal("login sin cookie de sesión")
	return ""
}

func (e *testEnv) orders(t *testing.T) []*entity.Order {
	t.Helper()
	list, _, err := e.store.Orders().List(context.Background(), repository.OrderFilter{}, 100, 0)
	require.NoError(t, err)
	return list
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
