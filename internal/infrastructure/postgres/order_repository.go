package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, user_email, creation_date, estimated_delivery_date, last_updated, data,
	letter_signature, letter_response_signature, letter_response_date, status,
	delivery_information, delivery_institute, doctor_name, doctor_position, total`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o      entity.Order
		data   []byte
		status string
	)
	err := row.Scan(&o.ID, &o.UserEmail, &o.CreationDate, &o.EstimatedDeliveryDate, &o.LastUpdated, &data,
		&o.LetterSignature, &o.LetterResponseSignature, &o.LetterResponseDate, &status,
		&o.DeliveryInformation, &o.DeliveryInstitute, &o.DoctorName, &o.DoctorPosition, &o.Total)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	if o.Lines, err = decodeLines(data); err != nil {
		return nil, fmt.Errorf("decode order data: %w", err)
	}
	return &o, nil
}

// Create persiste el pedido con su snapshot de líneas y asigna el ID.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	data, err := encodeLines(o.Lines)
	if err != nil {
		return fmt.Errorf("encode order data: %w", err)
	}
	query := `
		INSERT INTO orders (user_email, creation_date, estimated_delivery_date, last_updated, data, status,
			delivery_information, delivery_institute, doctor_name, doctor_position, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err = r.q.QueryRow(ctx, query, o.UserEmail, o.CreationDate, o.EstimatedDeliveryDate, o.LastUpdated, data,
		string(o.Status), o.DeliveryInformation, o.DeliveryInstitute, o.DoctorName, o.DoctorPosition, o.Total,
	).Scan(&o.ID)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByIDs pedidos indicados, más recientes primero.
func (r *OrderRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ANY($1) ORDER BY creation_date DESC, id DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// List lista pedidos (más recientes primero) aplicando el filtro y la paginación.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter, limit, offset int) ([]*entity.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserEmail != "" {
		conds = append(conds, "lower(user_email) = lower("+arg(f.UserEmail)+")")
	}
	if f.FilterByEmails || len(f.UserEmails) > 0 {
		lowered := make([]string, 0, len(f.UserEmails))
		for _, e := range f.UserEmails {
			lowered = append(lowered, strings.ToLower(e))
		}
		conds = append(conds, "lower(user_email) = ANY("+arg(lowered)+")")
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(string(f.Status)))
	}
	if len(f.ExcludeStatuses) > 0 {
		ex := make([]string, 0, len(f.ExcludeStatuses))
		for _, s := range f.ExcludeStatuses {
			ex = append(ex, string(s))
		}
		conds = append(conds, "NOT (status = ANY("+arg(ex)+"))")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY creation_date DESC, id DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	list, err := collectOrders(rows)
	return list, total, err
}

// Update guarda firmas, estado, fecha estimada y datos de entrega.
// El snapshot de líneas y el total no se modifican después de crear el pedido.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET estimated_delivery_date = $2, last_updated = $3, letter_signature = $4,
			letter_response_signature = $5, letter_response_date = $6, status = $7,
			delivery_information = $8, delivery_institute = $9, doctor_name = $10, doctor_position = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, o.ID, o.EstimatedDeliveryDate, o.LastUpdated, o.LetterSignature,
		o.LetterResponseSignature, o.LetterResponseDate, string(o.Status),
		o.DeliveryInformation, o.DeliveryInstitute, o.DoctorName, o.DoctorPosition)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus cambia el estado de varios pedidos en una sola sentencia.
func (r *OrderRepo) SetStatus(ctx context.Context, ids []int64, status entity.OrderStatus, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, last_updated = $3 WHERE id = ANY($1)`, ids, string(status), at)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("set order status: %w", err)
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]*entity.Order, error) {
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// lineRecord forma de cada línea en orders.data: {id,name,quantity,cost} con cost numérico.
type lineRecord struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Cost     json.Number `json:"cost"`
}

func encodeLines(lines []entity.OrderLine) ([]byte, error) {
	recs := make([]lineRecord, 0, len(lines))
	for _, l := range lines {
		recs = append(recs, lineRecord{ID: l.ID, Name: l.Name, Quantity: l.Quantity, Cost: json.Number(l.Cost.String())})
	}
	return json.Marshal(recs)
}

// decodeLines acepta cost como número o como string numérico.
func decodeLines(data []byte) ([]entity.OrderLine, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var recs []lineRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	lines := make([]entity.OrderLine, 0, len(recs))
	for _, r := range recs {
		cost, err := decimal.NewFromString(r.Cost.String())
		if err != nil {
			return nil, fmt.Errorf("cost de la línea %d: %w", r.ID, err)
		}
		lines = append(lines, entity.OrderLine{ID: r.ID, Name: r.Name, Quantity: r.Quantity, Cost: cost})
	}
	return lines, nil
}
