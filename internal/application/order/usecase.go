// Package order casos de uso de pedidos: alta con descuento de stock, cartas PDF, firmas y ciclo de estados.
package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

// StockPolicy qué hacer cuando un pedido excede el stock.
type StockPolicy string

const (
	StockAllowNegative StockPolicy = "allow_negative"
	StockReject        StockPolicy = "reject"
)

// StatusAll valor del filtro de estado que equivale a no filtrar.
const StatusAll = "todos"

const dateLayout = "2006-01-02"

// OrderUseCase casos de uso de pedidos.
type OrderUseCase struct {
	tx      TxRunner
	orders  repository.OrderRepository
	insumos repository.InsumoRepository
	roster  repository.RosterRepository
	letters LetterGenerator
	archive LetterArchive // opcional
	policy  StockPolicy
	log     *logger.Logger
	now     func() time.Time
}

// NewOrderUseCase construye el caso de uso. archive puede ser nil.
func NewOrderUseCase(
	tx TxRunner,
	orders repository.OrderRepository,
	insumos repository.InsumoRepository,
	roster repository.RosterRepository,
	letters LetterGenerator,
	archive LetterArchive,
	policy StockPolicy,
	log *logger.Logger,
) *OrderUseCase {
	if policy == "" {
		policy = StockAllowNegative
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		tx:      tx,
		orders:  orders,
		insumos: insumos,
		roster:  roster,
		letters: letters,
		archive: archive,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

// CreateOrder descuenta el stock de cada línea y guarda el pedido en estado Creada, todo en una transacción.
// Líneas con cantidad 0 se ignoran; repetir un insumo suma las cantidades.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, p entity.Principal, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if p.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	qty := make(map[int64]int)
	for _, l := range in.Lines {
		if l.Quantity < 0 || l.InsumoID <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if l.Quantity > 0 {
			qty[l.InsumoID] += l.Quantity
		}
	}
	if len(qty) == 0 {
		return nil, domain.ErrInvalidInput
	}
	// Orden fijo de ids: dos pedidos concurrentes bloquean las filas en el mismo orden.
	ids := make([]int64, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	now := uc.now()
	allowNegative := uc.policy != StockReject
	var created *entity.Order

	err := uc.tx.RunOrder(ctx, func(insumoRepo repository.InsumoRepository, orderRepo repository.OrderRepository) error {
		total := decimal.Zero
		lines := make([]entity.OrderLine, 0, len(ids))
		for _, id := range ids {
			ins, err := insumoRepo.DecrementStock(ctx, id, qty[id], allowNegative)
			if err != nil {
				return fmt.Errorf("insumo %d: %w", id, err)
			}
			line := entity.OrderLine{ID: ins.ID, Name: ins.Name, Quantity: qty[id], Cost: ins.UnitCost}
			total = total.Add(line.Subtotal())
			lines = append(lines, line)
		}
		o := &entity.Order{
			UserEmail:           strings.ToLower(p.Email),
			CreationDate:        now,
			LastUpdated:         now,
			Lines:               lines,
			Status:              entity.OrderStatusCreated,
			DeliveryInformation: strings.TrimSpace(in.DeliveryAddress),
			DeliveryInstitute:   strings.TrimSpace(in.Institution),
			DoctorName:          strings.TrimSpace(in.DoctorName),
			DoctorPosition:      strings.TrimSpace(in.DoctorPosition),
			Total:               total,
		}
		if err := orderRepo.Create(ctx, o); err != nil {
			return err
		}
		if err := insumoRepo.AssignOrder(ctx, ids, o.ID); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("email", p.Email).Msg("pedido rechazado")
		return nil, err
	}
	uc.log.Info().Int64("order_id", created.ID).Str("email", created.UserEmail).
		Str("total", created.Total.StringFixed(2)).Int("lines", len(created.Lines)).Msg("pedido creado")
	return uc.toResponse(ctx, created, nil), nil
}

// PrepareCart carga los insumos seleccionados para el modal de pedido. Ids inexistentes se omiten.
func (uc *OrderUseCase) PrepareCart(ctx context.Context, ids []int64) ([]dto.CartItem, error) {
	if len(ids) == 0 {
		return []dto.CartItem{}, nil
	}
	list, err := uc.insumos.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CartItem, 0, len(list))
	for _, i := range list {
		out = append(out, dto.CartItem{ID: i.ID, Name: i.Name, Stock: i.Stock, UnitCost: i.UnitCost})
	}
	return out, nil
}

// RenderLetter genera el PDF de la carta de solicitud o de respuesta.
func (uc *OrderUseCase) RenderLetter(ctx context.Context, p entity.Principal, orderID int64, lt entity.LetterType) (*dto.Letter, error) {
	o, err := uc.load(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generate(ctx, o, lt)
	if err != nil {
		return nil, err
	}
	return &dto.Letter{Filename: LetterFilename(orderID, lt), Content: pdf}, nil
}

// LetterFilename nombre del archivo en Content-Disposition.
func LetterFilename(orderID int64, lt entity.LetterType) string {
	if lt == entity.LetterResponse {
		return fmt.Sprintf("carta_respuesta_order_%d.pdf", orderID)
	}
	return fmt.Sprintf("carta_insumo_order_%d.pdf", orderID)
}

func (uc *OrderUseCase) generate(ctx context.Context, o *entity.Order, lt entity.LetterType) ([]byte, error) {
	rep, err := uc.roster.GetByEmail(ctx, o.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("consultar padrón: %w", err)
	}
	pdf, err := uc.letters.GenerateLetter(ctx, lt, LetterData{Order: o, Representative: rep})
	if err != nil {
		return nil, fmt.Errorf("generar carta %s del pedido %d: %w", lt, o.ID, err)
	}
	return pdf, nil
}

// CaptureSignature guarda la firma en el slot indicado y avanza el estado:
// letter_signature -> En camino, letter_response_signature -> Entregado. La última firma reemplaza a la anterior.
func (uc *OrderUseCase) CaptureSignature(ctx context.Context, p entity.Principal, orderID int64, slot entity.SignatureSlot, payload string) (*dto.OrderResponse, error) {
	action, ok := entity.SlotAction(slot)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	sig, err := entity.ParseSignature(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	o, err := uc.load(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	next, err := entity.NextStatus(action, o.Status, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
	}
	now := uc.now()
	lt := entity.LetterRequest
	switch slot {
	case entity.SlotLetterSignature:
		o.LetterSignature = sig.DataURL()
	case entity.SlotLetterResponseSignature:
		o.LetterResponseSignature = sig.DataURL()
		o.LetterResponseDate = &now
		lt = entity.LetterResponse
	}
	prev := o.Status
	o.Status = next
	o.LastUpdated = now
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("order_id", o.ID).Str("slot", string(slot)).
		Str("from", string(prev)).Str("to", string(next)).Str("by", p.Email).Msg("firma capturada")
	uc.archiveLetter(ctx, o, lt)
	return uc.toResponse(ctx, o, nil), nil
}

// archiveLetter sube la carta recién firmada. Los errores sólo se registran.
func (uc *OrderUseCase) archiveLetter(ctx context.Context, o *entity.Order, lt entity.LetterType) {
	if uc.archive == nil {
		return
	}
	pdf, err := uc.generate(ctx, o, lt)
	if err == nil {
		err = uc.archive.Store(ctx, o.ID, lt, pdf)
	}
	if err != nil {
		uc.log.Error().Err(err).Int64("order_id", o.ID).Str("letter", string(lt)).Msg("no se pudo archivar la carta")
	}
}

// TransitionStatus cambio de estado por el administrador (cualquier origen, cualquier destino)
// con fecha estimada de entrega opcional.
func (uc *OrderUseCase) TransitionStatus(ctx context.Context, p entity.Principal, orderID int64, in dto.EditOrderRequest) (*dto.OrderResponse, error) {
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	target, ok := entity.ParseOrderStatus(in.Status)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	var eta *time.Time
	if s := strings.TrimSpace(in.EstimatedDeliveryDate); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		eta = &d
	}
	o, err := uc.load(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	next, err := entity.NextStatus(entity.ActionAdminSet, o.Status, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
	}
	prev := o.Status
	o.Status = next
	if eta != nil {
		o.EstimatedDeliveryDate = eta
	}
	o.LastUpdated = uc.now()
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("order_id", o.ID).Str("from", string(prev)).Str("to", string(next)).Str("by", p.Email).Msg("estado actualizado")
	return uc.toResponse(ctx, o, nil), nil
}

// CancelOrder cancela un pedido propio (o cualquiera si es admin). No devuelve stock.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, p entity.Principal, orderID int64) error {
	o, err := uc.load(ctx, p, orderID)
	if err != nil {
		return err
	}
	next, err := entity.NextStatus(entity.ActionCancel, o.Status, "")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
	}
	if err := uc.orders.SetStatus(ctx, []int64{o.ID}, next, uc.now()); err != nil {
		return err
	}
	uc.log.Info().Int64("order_id", o.ID).Str("from", string(o.Status)).Str("by", p.Email).Msg("pedido cancelado")
	return nil
}

// CancelOrders cancelación masiva (admin). Devuelve cuántos pedidos existían y se cancelaron.
func (uc *OrderUseCase) CancelOrders(ctx context.Context, p entity.Principal, ids []int64) (int, error) {
	if !p.IsAdmin() {
		return 0, domain.ErrForbidden
	}
	if len(ids) == 0 {
		return 0, domain.ErrInvalidInput
	}
	found, err := uc.orders.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, domain.ErrNotFound
	}
	existing := make([]int64, 0, len(found))
	for _, o := range found {
		existing = append(existing, o.ID)
	}
	if err := uc.orders.SetStatus(ctx, existing, entity.OrderStatusCancelled, uc.now()); err != nil {
		return 0, err
	}
	uc.log.Info().Ints64("order_ids", existing).Str("by", p.Email).Msg("pedidos cancelados")
	return len(existing), nil
}

// ListOrders tabla de pedidos. El admin nunca ve pedidos en Creada; el representante sólo ve los suyos.
// search.Status vacío o "todos" no filtra; search.RepresentativeName se resuelve a correos vía padrón.
func (uc *OrderUseCase) ListOrders(ctx context.Context, p entity.Principal, search dto.OrderSearch, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.Normalize()
	var f repository.OrderFilter
	if p.IsAdmin() {
		f.ExcludeStatuses = []entity.OrderStatus{entity.OrderStatusCreated}
	} else {
		if p.Email == "" {
			return nil, domain.ErrUnauthorized
		}
		f.UserEmail = p.Email
	}
	status := strings.TrimSpace(search.Status)
	if status != "" && !strings.EqualFold(status, StatusAll) {
		s, ok := entity.ParseOrderStatus(status)
		if !ok {
			return nil, domain.ErrInvalidInput
		}
		f.Status = s
	}
	if name := strings.TrimSpace(search.RepresentativeName); name != "" {
		emails, err := uc.roster.FindEmailsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("buscar representante: %w", err)
		}
		f.FilterByEmails = true
		f.UserEmails = emails
	}

	list, total, err := uc.orders.List(ctx, f, page.PerPage, page.Offset())
	if err != nil {
		return nil, err
	}
	names, err := uc.representativeNames(ctx, list)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *uc.toResponse(ctx, o, names))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.NewPageResponse(page, total), Search: search}, nil
}

// GetOrderDetail detalle de un pedido propio (o cualquiera si es admin).
func (uc *OrderUseCase) GetOrderDetail(ctx context.Context, p entity.Principal, orderID int64) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, o, nil), nil
}

// load trae el pedido y aplica la regla de propiedad.
func (uc *OrderUseCase) load(ctx context.Context, p entity.Principal, orderID int64) (*entity.Order, error) {
	if orderID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !p.IsAdmin() && !strings.EqualFold(o.UserEmail, p.Email) {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

func (uc *OrderUseCase) representativeNames(ctx context.Context, list []*entity.Order) (map[string]string, error) {
	seen := make(map[string]struct{})
	var emails []string
	for _, o := range list {
		if _, ok := seen[o.UserEmail]; !ok {
			seen[o.UserEmail] = struct{}{}
			emails = append(emails, o.UserEmail)
		}
	}
	names := make(map[string]string, len(emails))
	if len(emails) == 0 {
		return names, nil
	}
	users, err := uc.roster.ListByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("consultar padrón: %w", err)
	}
	for _, u := range users {
		names[strings.ToLower(u.Email)] = u.Name
	}
	return names, nil
}

// toResponse con names nil consulta el padrón para ese pedido.
func (uc *OrderUseCase) toResponse(ctx context.Context, o *entity.Order, names map[string]string) *dto.OrderResponse {
	var name string
	if names != nil {
		name = names[strings.ToLower(o.UserEmail)]
	} else if u, err := uc.roster.GetByEmail(ctx, o.UserEmail); err == nil && u != nil {
		name = u.Name
	}
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{ID: l.ID, Name: l.Name, Quantity: l.Quantity, Cost: l.Cost, Subtotal: l.Subtotal()})
	}
	return &dto.OrderResponse{
		ID:                    o.ID,
		UserEmail:             o.UserEmail,
		RepresentativeName:    name,
		CreationDate:          o.CreationDate,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		LastUpdated:           o.LastUpdated,
		Lines:                 lines,
		Status:                string(o.Status),
		HasRequestSignature:   o.LetterSignature != "",
		HasResponseSignature:  o.LetterResponseSignature != "",
		LetterResponseDate:    o.LetterResponseDate,
		DeliveryInformation:   o.DeliveryInformation,
		DeliveryInstitute:     o.DeliveryInstitute,
		DoctorName:            o.DoctorName,
		DoctorPosition:        o.DoctorPosition,
		Total:                 o.Total,
	}
}
