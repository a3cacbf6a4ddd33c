package http

import (
	"embed"
	"io/fs"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/logger"
	"github.com/xaldigital/insumos-portal/pkg/money"
)

//go:embed views
var viewsFS embed.FS

const layoutMain = "layouts/main"

// NewViews motor de plantillas sobre las vistas embebidas.
func NewViews() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return money.Format(d) })
	engine.AddFunc("date", formatDate)
	engine.AddFunc("statuses", func() []entity.OrderStatus { return entity.OrderStatuses })
	engine.AddFunc("isodate", func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	})
	return engine
}

// formatDate acepta time.Time o *time.Time; nil se muestra vacío.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	}
	return ""
}

// isFragment petición hecha por htmx (swap parcial).
func isFragment(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// HeaderAlert marca las respuestas que son una alerta. El layout la usa para que htmx
// haga el swap también con 4xx/5xx.
const HeaderAlert = "X-Alert"

// renderAlert fragmento custom_alert_message.
func renderAlert(c *fiber.Ctx, status int, message string, isError bool) error {
	kind := "info"
	if isError {
		kind = "error"
	}
	c.Set(HeaderAlert, kind)
	return c.Status(status).Render("partials/alert", fiber.Map{"Message": message, "Error": isError})
}

// renderError traduce err y dibuja la alerta. 5xx se registran en el logger de la app.
func renderError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, msg := errorMessage(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("error interno")
	}
	return renderAlert(c, status, msg, true)
}

// page lee ?page= y ?per_page= (tope de 10 lo aplica Normalize).
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Page: c.QueryInt("page", 1), PerPage: c.QueryInt("per_page", dto.MaxPerPage)}
	p.Normalize()
	return p
}

// paramID id numérico de la ruta; 0 si no es válido.
func paramID(c *fiber.Ctx, name string) int64 {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// parseIDs acepta "[1,2,3]" (JSON del front) o "1,2,3".
func parseIDs(raw string) []int64 {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return ""
}
