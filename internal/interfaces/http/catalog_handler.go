package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/xaldigital/insumos-portal/internal/application/catalog"
	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

// HX-Trigger que recarga las tablas tras una escritura.
const (
	triggerInsumos = "insumos-changed"
	triggerVendors = "vendors-changed"
)

// CatalogHandler catálogo de insumos y proveedores.
type CatalogHandler struct {
	uc  *catalog.CatalogUseCase
	log *logger.Logger
}

// NewCatalogHandler construye el handler de catálogo.
func NewCatalogHandler(uc *catalog.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// pageURL base de los enlaces de paginación conservando los filtros activos.
func pageURL(path string, params url.Values) string {
	for k, v := range params {
		if len(v) == 0 || v[0] == "" {
			delete(params, k)
		}
	}
	if len(params) == 0 {
		return path + "?"
	}
	return path + "?" + params.Encode() + "&"
}

func (h *CatalogHandler) insumosData(c *fiber.Ctx, path string) (fiber.Map, error) {
	search := c.Query("search")
	list, err := h.uc.ListInsumos(c.UserContext(), search, page(c))
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"Insumos":   list.Items,
		"Page":      list.Page,
		"Search":    list.Query,
		"PageURL":   pageURL(path, url.Values{"search": {search}}),
		"Principal": GetPrincipal(c),
	}, nil
}

// ── Admin ───────────────────────────────────────────────────

// AdminPage GET /admin.
func (h *CatalogHandler) AdminPage(c *fiber.Ctx) error {
	data, err := h.insumosData(c, "/search_insumos")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("admin", data, layoutMain)
}

// InsumosTable GET /api/vendors y /search_insumos?search=.
func (h *CatalogHandler) InsumosTable(c *fiber.Ctx) error {
	data, err := h.insumosData(c, "/search_insumos")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/insumos_admin_table", data)
}

// InsumoForm GET /add_insumos_form.
func (h *CatalogHandler) InsumoForm(c *fiber.Ctx) error {
	vendors, err := h.uc.AllVendors(c.UserContext())
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/insumo_form", fiber.Map{"Vendors": vendors, "Action": "/add_insumos_records"})
}

// CreateInsumo POST /add_insumos_records.
func (h *CatalogHandler) CreateInsumo(c *fiber.Ctx) error {
	var in dto.InsumoRequest
	if err := c.BodyParser(&in); err != nil {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if _, err := h.uc.CreateInsumo(c.UserContext(), GetPrincipal(c), in); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerInsumos)
	return renderAlert(c, fiber.StatusCreated, msgInsumoCreated, false)
}

// EditInsumoForm GET /edit_insumo/:id.
func (h *CatalogHandler) EditInsumoForm(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if id == 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	ins, err := h.uc.GetInsumo(c.UserContext(), id)
	if err != nil {
		return renderError(c, h.log, err)
	}
	vendors, err := h.uc.AllVendors(c.UserContext())
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/insumo_form", fiber.Map{
		"Insumo":  ins,
		"Vendors": vendors,
		"Action":  "/edit_insumo/" + c.Params("id"),
	})
}

// UpdateInsumo POST /edit_insumo/:id.
func (h *CatalogHandler) UpdateInsumo(c *fiber.Ctx) error {
	id := paramID(c, "id")
	var in dto.InsumoRequest
	if err := c.BodyParser(&in); err != nil || id == 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if _, err := h.uc.UpdateInsumo(c.UserContext(), GetPrincipal(c), id, in); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerInsumos)
	return renderAlert(c, fiber.StatusOK, msgInsumoUpdated, false)
}

// DeleteInsumo DELETE /delete_insumo/:id.
func (h *CatalogHandler) DeleteInsumo(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if id == 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if err := h.uc.DeleteInsumo(c.UserContext(), GetPrincipal(c), id); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerInsumos)
	return renderAlert(c, fiber.StatusOK, msgInsumoDeleted, false)
}

// ── Proveedores ─────────────────────────────────────────────

type vendorOption struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// VendorOptions GET /getvendorlist: [{id, text}] para el select del formulario.
func (h *CatalogHandler) VendorOptions(c *fiber.Ctx) error {
	vendors, err := h.uc.AllVendors(c.UserContext())
	if err != nil {
		status, msg := errorMessage(err)
		h.log.Error().Err(err).Msg("listar proveedores")
		return c.Status(status).JSON(dto.ErrorResponse{Code: "VENDOR_LIST", Message: msg})
	}
	out := make([]vendorOption, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorOption{ID: v.ID, Text: v.Name})
	}
	return c.JSON(out)
}

// VendorsPage GET /vendors. Con HX-Request devuelve solo la tabla.
func (h *CatalogHandler) VendorsPage(c *fiber.Ctx) error {
	list, err := h.uc.ListVendors(c.UserContext(), page(c))
	if err != nil {
		return renderError(c, h.log, err)
	}
	data := fiber.Map{"Vendors": list.Items, "Page": list.Page, "PageURL": "/vendors?", "Principal": GetPrincipal(c)}
	if isFragment(c) {
		return c.Render("partials/vendors_table", data)
	}
	return c.Render("vendors", data, layoutMain)
}

// CreateVendor POST /add_vendor.
func (h *CatalogHandler) CreateVendor(c *fiber.Ctx) error {
	var in dto.VendorRequest
	if err := c.BodyParser(&in); err != nil {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if _, err := h.uc.CreateVendor(c.UserContext(), GetPrincipal(c), in); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerVendors)
	return renderAlert(c, fiber.StatusCreated, msgVendorCreated, false)
}

// DeleteVendor DELETE /delete_vendor/:id.
func (h *CatalogHandler) DeleteVendor(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if id == 0 {
		return renderAlert(c, fiber.StatusBadRequest, msgInvalidInput, true)
	}
	if err := h.uc.DeleteVendor(c.UserContext(), GetPrincipal(c), id); err != nil {
		return renderError(c, h.log, err)
	}
	c.Set("HX-Trigger", triggerVendors)
	return renderAlert(c, fiber.StatusOK, msgVendorDeleted, false)
}

// ── Representante ───────────────────────────────────────────

// RepresentativePage GET /representante.
func (h *CatalogHandler) RepresentativePage(c *fiber.Ctx) error {
	data, err := h.insumosData(c, "/search_insumos_representante")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("representante", data, layoutMain)
}

// RepresentativeInsumosTable GET /api/insumos_representante y /search_insumos_representante.
func (h *CatalogHandler) RepresentativeInsumosTable(c *fiber.Ctx) error {
	data, err := h.insumosData(c, "/search_insumos_representante")
	if err != nil {
		return renderError(c, h.log, err)
	}
	return c.Render("partials/insumos_rep_table", data)
}
