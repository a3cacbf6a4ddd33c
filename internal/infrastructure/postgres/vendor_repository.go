package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo implementación del puerto VendorRepository sobre PostgreSQL.
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador de persistencia para proveedores.
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

const vendorColumns = `id, name, cellphone, user_email, creation_date`

func scanVendor(row pgx.Row) (*entity.Vendor, error) {
	var v entity.Vendor
	if err := row.Scan(&v.ID, &v.Name, &v.Cellphone, &v.UserEmail, &v.CreationDate); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create persiste un proveedor. El nombre es único.
func (r *VendorRepo) Create(ctx context.Context, v *entity.Vendor) error {
	query := `
		INSERT INTO vendors (name, cellphone, user_email, creation_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, v.Name, v.Cellphone, v.UserEmail, v.CreationDate).Scan(&v.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// GetByID exige exactamente una fila.
func (r *VendorRepo) GetByID(ctx context.Context, id int64) (*entity.Vendor, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	defer rows.Close()
	var found []*entity.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		found = append(found, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	if len(found) != 1 {
		return nil, domain.ErrVendorNotFound
	}
	return found[0], nil
}

// List lista proveedores (más recientes primero) con paginación.
func (r *VendorRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vendor, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM vendors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY creation_date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	list, err := collectVendors(rows)
	return list, total, err
}

// ListAll todos los proveedores ordenados por nombre (selects del formulario de insumos).
func (r *VendorRepo) ListAll(ctx context.Context) ([]*entity.Vendor, error) {
	rows, err := r.q.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()
	return collectVendors(rows)
}

// Delete elimina un proveedor sin insumos. Con insumos: domain.ErrConflict (FK RESTRICT).
func (r *VendorRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete vendor: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

func collectVendors(rows pgx.Rows) ([]*entity.Vendor, error) {
	var list []*entity.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
