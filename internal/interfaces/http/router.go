package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/catalog"
	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CatalogUC *catalog.CatalogUseCase
	OrderUC   *order.OrderUseCase
	Sessions  *Sessions
	Logger    *logger.Logger
	AppName   string
}

// Router registra las rutas del portal.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	authHandler := NewAuthHandler(deps.AuthUC, deps.Sessions, log)
	catalogHandler := NewCatalogHandler(deps.CatalogUC, log)
	orderHandler := NewOrderHandler(deps.OrderUC, deps.AuthUC, deps.Sessions, log)

	// Público
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/login", fiber.StatusSeeOther) })
	app.Get("/login", authHandler.LoginPage)
	app.Post("/login", authHandler.Login)
	app.Get("/logout", authHandler.Logout)
	app.Get("/registro", authHandler.RegisterPage)
	app.Post("/registro", authHandler.Register)
	app.Get("/autocomplete", authHandler.Autocomplete)
	app.Get("/confirmar_cuenta", authHandler.ConfirmPage)
	app.Post("/confirmar_cuenta", authHandler.Confirm)
	app.Get("/enviar_link_contrasena", authHandler.SendResetPage)
	app.Post("/enviar_link_contrasena", authHandler.SendReset)
	app.Get("/olvido_contrasena", authHandler.ResetPage)
	app.Post("/olvido_contrasena", authHandler.Reset)

	// Rutas con sesión
	session := RequireSession(deps.AuthUC, deps.Sessions)
	admin := RequireRole(entity.RoleAdmin)
	rep := RequireRole(entity.RoleRepresentative)
	both := RequireRole(entity.RoleAdmin, entity.RoleRepresentative)

	// Admin: catálogo
	app.Get("/admin", session, admin, catalogHandler.AdminPage)
	app.Get("/api/vendors", session, admin, catalogHandler.InsumosTable)
	app.Get("/search_insumos", session, admin, catalogHandler.InsumosTable)
	app.Get("/add_insumos_form", session, admin, catalogHandler.InsumoForm)
	app.Post("/add_insumos_records", session, admin, catalogHandler.CreateInsumo)
	app.Get("/edit_insumo/:id", session, admin, catalogHandler.EditInsumoForm)
	app.Post("/edit_insumo/:id", session, admin, catalogHandler.UpdateInsumo)
	app.Delete("/delete_insumo/:id", session, admin, catalogHandler.DeleteInsumo)
	app.Get("/getvendorlist", session, admin, catalogHandler.VendorOptions)
	app.Get("/vendors", session, admin, catalogHandler.VendorsPage)
	app.Post("/add_vendor", session, admin, catalogHandler.CreateVendor)
	app.Delete("/delete_vendor/:id", session, admin, catalogHandler.DeleteVendor)

	// Admin: pedidos
	app.Get("/pedidos", session, admin, orderHandler.AdminOrdersPage)
	app.Get("/api/orders_admin", session, admin, orderHandler.AdminOrdersTable)
	app.Get("/edit_order/:id", session, admin, orderHandler.EditOrderForm)
	app.Post("/edit_order/:id", session, admin, orderHandler.EditOrder)
	app.Get("/api/get_orders_to_delete_html", session, admin, orderHandler.DeleteOrdersModal)
	app.Post("/api/get_orders_to_delete_html", session, admin, orderHandler.DeleteOrders)

	// Representante
	app.Get("/representante", session, rep, catalogHandler.RepresentativePage)
	app.Get("/api/insumos_representante", session, rep, catalogHandler.RepresentativeInsumosTable)
	app.Get("/search_insumos_representante", session, rep, catalogHandler.RepresentativeInsumosTable)
	app.Get("/api/generate_insumos_list_html", session, rep, orderHandler.CartModal)
	app.Post("/add_order_record", session, rep, orderHandler.CreateOrder)
	app.Get("/api/orders_representante", session, rep, orderHandler.RepresentativeOrdersTable)
	app.Post("/api/cancel_order", session, both, orderHandler.CancelOrder)
	app.Post("/upload_signature", session, both, orderHandler.UploadSignature)

	// Ambos
	app.Get("/order_detail/:id", session, both, orderHandler.OrderDetail)
	app.Get("/order_pdf_letter/:id/:type", session, both, orderHandler.OrderLetter)
}
