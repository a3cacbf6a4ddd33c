package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

var _ repository.InsumoRepository = (*InsumoRepo)(nil)

// InsumoRepo implementación del puerto InsumoRepository sobre PostgreSQL (usable con pool o tx).
type InsumoRepo struct {
	q Querier
}

// NewInsumoRepository construye el adaptador de persistencia para insumos. Pasar pool o tx (Querier).
func NewInsumoRepository(q Querier) *InsumoRepo {
	return &InsumoRepo{q: q}
}

const insumoColumns = `i.id, i.name, i.stock, i.unit_cost, i.vendor_id, v.name, i.order_id, i.last_updated`

func scanInsumo(row pgx.Row) (*entity.Insumo, error) {
	var i entity.Insumo
	if err := row.Scan(&i.ID, &i.Name, &i.Stock, &i.UnitCost, &i.VendorID, &i.VendorName, &i.OrderID, &i.LastUpdated); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create persiste un insumo nuevo y asigna ID y last_updated.
func (r *InsumoRepo) Create(ctx context.Context, i *entity.Insumo) error {
	query := `
		INSERT INTO insumos (name, stock, unit_cost, vendor_id, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, i.Name, i.Stock, i.UnitCost, i.VendorID, i.LastUpdated).Scan(&i.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVendorNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert insumo: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo por ID. (nil, nil) si no existe.
func (r *InsumoRepo) GetByID(ctx context.Context, id int64) (*entity.Insumo, error) {
	query := `SELECT ` + insumoColumns + ` FROM insumos i JOIN vendors v ON v.id = i.vendor_id WHERE i.id = $1`
	i, err := scanInsumo(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get insumo: %w", err)
	}
	return i, nil
}

// GetByIDs obtiene los insumos indicados (los que no existan se omiten).
func (r *InsumoRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Insumo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + insumoColumns + ` FROM insumos i JOIN vendors v ON v.id = i.vendor_id
		WHERE i.id = ANY($1) ORDER BY i.name`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get insumos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Insumo
	for rows.Next() {
		i, err := scanInsumo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insumo: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

// Update actualiza nombre, stock, costo y proveedor.
func (r *InsumoRepo) Update(ctx context.Context, i *entity.Insumo) error {
	query := `
		UPDATE insumos SET name = $2, stock = $3, unit_cost = $4, vendor_id = $5, last_updated = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, i.ID, i.Name, i.Stock, i.UnitCost, i.VendorID, i.LastUpdated)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVendorNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update insumo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un insumo por ID.
func (r *InsumoRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM insumos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete insumo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista insumos (más recientes primero) con búsqueda por nombre y paginación.
func (r *InsumoRepo) List(ctx context.Context, f repository.InsumoFilter, limit, offset int) ([]*entity.Insumo, int, error) {
	where := ``
	args := []any{}
	if f.Name != "" {
		args = append(args, "%"+escapeLike(f.Name)+"%")
		where = ` WHERE i.name ILIKE $1`
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM insumos i`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count insumos: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM insumos i JOIN vendors v ON v.id = i.vendor_id%s
		ORDER BY i.last_updated DESC, i.id DESC LIMIT $%d OFFSET $%d`, insumoColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list insumos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Insumo
	for rows.Next() {
		i, err := scanInsumo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan insumo: %w", err)
		}
		list = append(list, i)
	}
	return list, total, rows.Err()
}

// DecrementStock resta qty en un UPDATE condicional (sin lectura previa), evitando la actualización perdida
// entre pedidos concurrentes del mismo insumo.
func (r *InsumoRepo) DecrementStock(ctx context.Context, id int64, qty int, allowNegative bool) (*entity.Insumo, error) {
	query := `
		WITH upd AS (
			UPDATE insumos SET stock = stock - $2, last_updated = now()
			WHERE id = $1 AND ($3 OR stock >= $2)
			RETURNING id, name, stock, unit_cost, vendor_id, order_id, last_updated
		)
		SELECT i.id, i.name, i.stock, i.unit_cost, i.vendor_id, v.name, i.order_id, i.last_updated
		FROM upd i JOIN vendors v ON v.id = i.vendor_id`
	i, err := scanInsumo(r.q.QueryRow(ctx, query, id, qty, allowNegative))
	if err == nil {
		return i, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	// Sin fila: o no existe o no alcanza el stock.
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM insumos WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check insumo: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrInsufficientStock
}

// AssignOrder enlaza los insumos con el último pedido que los incluyó.
func (r *InsumoRepo) AssignOrder(ctx context.Context, ids []int64, orderID int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE insumos SET order_id = $2 WHERE id = ANY($1)`, ids, orderID)
	if err != nil {
		return fmt.Errorf("assign order: %w", err)
	}
	return nil
}
