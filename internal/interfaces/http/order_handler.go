package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

const (
	triggerOrders  = "orders-changed"
	quantityPrefix = "quantity_insumo_"
	maxSignature   = 2 << 20
)

// OrderHandler pedidos, cartas PDF y firmas.
type OrderHandler struct {
	uc       *order.OrderUseCase
	auth     *auth.AuthUseCase
	sessions *Sessions
	log      *logger.Logger
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(uc *order.OrderUseCase, authUC *auth.AuthUseCase, sessions *Sessions, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, auth: authUC, sessions: sessions, log: log}
}

func (h *OrderHandler) ordersData(c *fiber.Ctx, path string) (fiber.Map, error) {
	var search dto.OrderSearch
	if err := c.QueryParser(&search); err != nil {
		return nil, domain.ErrInvalidInput
	}
	list, err := h.uc.ListOrders(c.UserContext(), GetPrincipal(c), search, page(c))
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"Orders":    list.Items,
		"Page":      list.Page,
		"Search":    list.Search,
		"PageURL":   pageURL(path, url.Values{"representante": {search.RepresentativeName}, "status": {search.Status}}),
		"Principal": GetPrincipal(c),
	}, nil
}

// ── Admin ───────────────────────────────────────────────────

// AdminOrdersPage GET /pedidos.
func (h *OrderHandler) AdminOrdersPage(c *fiber.Ctx) error {
	data, err := h.ordersData(c, "/api/orders_admin")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("pedidos", data, layoutMain)
}

// AdminOrdersTable GET /api/orders_admin?representante=&status=.
func (h *OrderHandler) AdminOrdersTable(c *fiber.Ctx) error {
	data, err := h.ordersData(c, "/api/orders_admin")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/orders_admin_table", data)
}

// EditOrderForm GET /edit_order/:id.
func (h *OrderHandler) EditOrderForm(c *fiber.Ctx) error {
	o, err := h.uc.GetOrderDetail(c.UserContext(), GetPrincipal(c), paramID(c, "id"))
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/order_edit_form", fiber.Map{"Order": o})
}

// EditOrder POST /edit_order/:id: nuevo estado y fecha estimada de entrega.
func (h *OrderHandler) EditOrder(c *fiber.Ctx) error {
	var in dto.EditOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if _, err := h.uc.TransitionStatus(c.UserContext(), GetPrincipal(c), paramID(c, "id"), in); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerOrders)
	return renderAlert(c, fiber.StatusOK, msgOrderUpdated, false)
}

// DeleteOrdersModal GET /api/get_orders_to_delete_html?orders_id_list=[..]: confirma la cancelación masiva.
func (h *OrderHandler) DeleteOrdersModal(c *fiber.Ctx) error {
	ids := parseIDs(c.Query("orders_id_list"))
	orders := make([]*dto.OrderResponse, 0, len(ids))
	for _, id := range ids {
		o, err := h.uc.GetOrderDetail(c.UserContext(), GetPrincipal(c), id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return renderError(c, h.log, err)
		}
		orders = append(orders, o)
	}
	return c.Render("partials/orders_delete_modal", fiber.Map{"Orders": orders, "IDs": c.Query("orders_id_list")})
}

// DeleteOrders POST /api/get_orders_to_delete_html: cancela los pedidos del formulario.
func (h *OrderHandler) DeleteOrders(c *fiber.Ctx) error {
	n, err := h.uc.CancelOrders(c.UserContext(), GetPrincipal(c), parseIDs(c.FormValue("orders_id_list")))
	if err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerOrders)
	return renderAlert(c, fiber.StatusOK, fmt.Sprintf("%s: %d", msgOrdersCancelled, n), false)
}

// ── Representante ───────────────────────────────────────────

// CartModal GET /api/generate_insumos_list_html?insumos_id_list=[..].
func (h *OrderHandler) CartModal(c *fiber.Ctx) error {
	items, err := h.uc.PrepareCart(c.UserContext(), parseIDs(c.Query("insumos_id_list")))
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/order_modal", fiber.Map{"Items": items})
}

// CreateOrder POST /add_order_record. Antes de descontar stock confirma con el directorio
// que la cuenta sigue existiendo; si no, cierra la sesión.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	if err := h.auth.VerifyUser(c.UserContext(), GetSession(c)); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			_ = h.sessions.Destroy(c)
			return redirectToLogin(c, "expired")
		}
		return renderError(c, h.log, err)
	}
	in, err := parseOrderForm(formValues(c))
	if err != nil {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if _, err := h.uc.CreateOrder(c.UserContext(), GetPrincipal(c), in); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerOrders+", "+triggerInsumos)
	return renderAlert(c, fiber.StatusCreated, msgOrderCreated, false)
}

// RepresentativeOrdersTable GET /api/orders_representante.
func (h *OrderHandler) RepresentativeOrdersTable(c *fiber.Ctx) error {
	data, err := h.ordersData(c, "/api/orders_representante")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/orders_rep_table", data)
}

// CancelOrder POST /api/cancel_order (order_id).
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.FormValue("order_id"), 10, 64)
	if err != nil || id <= 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if err := h.uc.CancelOrder(c.UserContext(), GetPrincipal(c), id); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerOrders)
	return renderAlert(c, fiber.StatusOK, msgOrderCancelled, false)
}

// UploadSignature POST /upload_signature: order_id, slot y la firma como data URL (campo signature)
// o como archivo (campo file).
func (h *OrderHandler) UploadSignature(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.FormValue("order_id"), 10, 64)
	if err != nil || id <= 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	slot := entity.SignatureSlot(c.FormValue("slot", string(entity.SlotLetterSignature)))
	payload := c.FormValue("signature")
	if payload == "" {
		payload, err = signatureFromFile(c)
		if err != nil {
			return renderError(c, h.log, err)
		}
	}
	if _, err := h.uc.CaptureSignature(c.UserContext(), GetPrincipal(c), id, slot, payload); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerOrders)
	return renderAlert(c, fiber.StatusOK, msgSignatureSaved, false)
}

// ── Ambos roles ─────────────────────────────────────────────

// OrderDetail GET /order_detail/:id.
func (h *OrderHandler) OrderDetail(c *fiber.Ctx) error {
	o, err := h.uc.GetOrderDetail(c.UserContext(), GetPrincipal(c), paramID(c, "id"))
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/order_detail", fiber.Map{"Order": o, "Principal": GetPrincipal(c)})
}

// OrderLetter GET /order_pdf_letter/:id/:type. Se sirve inline para abrirla en el navegador.
func (h *OrderHandler) OrderLetter(c *fiber.Ctx) error {
	lt, ok := entity.ParseLetterType(c.Params("type"))
	id := paramID(c, "id")
	if !ok || id == 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	letter, err := h.uc.RenderLetter(c.UserContext(), GetPrincipal(c), id, lt)
	if err != nil {
		return renderError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "inline; filename="+letter.Filename)
	return c.Send(letter.Content)
}

// ── Formularios ─────────────────────────────────────────────

// formValues campos del cuerpo, urlencoded o multipart.
func formValues(c *fiber.Ctx) map[string]string {
	out := make(map[string]string)
	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			if len(v) > 0 {
				out[k] = v[0]
			}
		}
		return out
	}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		out[string(k)] = string(v)
	})
	return out
}

// parseOrderForm arma el pedido a partir de quantity_insumo_<id> y los datos del médico.
// Cantidades vacías se ignoran; las que no son número invalidan el formulario.
func parseOrderForm(form map[string]string) (dto.CreateOrderRequest, error) {
	in := dto.CreateOrderRequest{
		DoctorName:      strings.TrimSpace(form["medico_solicitante"]),
		DoctorPosition:  strings.TrimSpace(form["posicion_medico"]),
		Institution:     strings.TrimSpace(form["nombre_institucion"]),
		DeliveryAddress: strings.TrimSpace(form["direccion_entrega"]),
	}
	for k, v := range form {
		if !strings.HasPrefix(k, quantityPrefix) {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(k, quantityPrefix), 10, 64)
		if err != nil {
			return in, domain.ErrInvalidInput
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			return in, domain.ErrInvalidInput
		}
		in.Lines = append(in.Lines, dto.OrderLineRequest{InsumoID: id, Quantity: qty})
	}
	return in, nil
}

// signatureFromFile convierte el archivo subido en data URL.
func signatureFromFile(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", domain.ErrInvalidSignature
	}
	if fh.Size > maxSignature {
		return "", domain.ErrInvalidSignature
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("abrir firma: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxSignature))
	if err != nil {
		return "", fmt.Errorf("leer firma: %w", err)
	}
	mime := nethttp.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
