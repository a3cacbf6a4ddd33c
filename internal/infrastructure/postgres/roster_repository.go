package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

var _ repository.RosterRepository = (*RosterRepo)(nil)

// RosterRepo lectura del padrón bayer_users.
type RosterRepo struct {
	q Querier
}

// NewRosterRepository construye el adaptador del padrón.
func NewRosterRepository(q Querier) *RosterRepo {
	return &RosterRepo{q: q}
}

const rosterColumns = `id, email, customer_team, name, cwid, address, ext_number, int_number, colonia, ciudad, edo, cp, cel_bayer`

func scanBayerUser(row pgx.Row) (*entity.BayerUser, error) {
	var u entity.BayerUser
	err := row.Scan(&u.ID, &u.Email, &u.CustomerTeam, &u.Name, &u.CWID, &u.Address, &u.ExtNumber,
		&u.IntNumber, &u.Colonia, &u.City, &u.State, &u.PostalCode, &u.Phone)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail busca por email sin distinguir mayúsculas.
func (r *RosterRepo) GetByEmail(ctx context.Context, email string) (*entity.BayerUser, error) {
	u, err := scanBayerUser(r.q.QueryRow(ctx,
		`SELECT `+rosterColumns+` FROM bayer_users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bayer user: %w", err)
	}
	return u, nil
}

// GetByCWID busca por identificador de empleado.
func (r *RosterRepo) GetByCWID(ctx context.Context, cwid string) (*entity.BayerUser, error) {
	u, err := scanBayerUser(r.q.QueryRow(ctx,
		`SELECT `+rosterColumns+` FROM bayer_users WHERE upper(cwid) = upper($1) LIMIT 1`, strings.TrimSpace(cwid)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bayer user by cwid: %w", err)
	}
	return u, nil
}

// FindEmailsByName emails de los representantes cuyo nombre contiene name.
func (r *RosterRepo) FindEmailsByName(ctx context.Context, name string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT email FROM bayer_users WHERE name ILIKE $1 ORDER BY email`,
		"%"+escapeLike(strings.TrimSpace(name))+"%")
	if err != nil {
		return nil, fmt.Errorf("find emails by name: %w", err)
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// ListByEmails datos del padrón para varios emails (columna representante en tablas de pedidos).
func (r *RosterRepo) ListByEmails(ctx context.Context, emails []string) ([]*entity.BayerUser, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(e))
	}
	rows, err := r.q.Query(ctx, `SELECT `+rosterColumns+` FROM bayer_users WHERE lower(email) = ANY($1)`, lowered)
	if err != nil {
		return nil, fmt.Errorf("list bayer users: %w", err)
	}
	defer rows.Close()
	var list []*entity.BayerUser
	for rows.Next() {
		u, err := scanBayerUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bayer user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Upsert inserta o actualiza por email.
func (r *RosterRepo) Upsert(ctx context.Context, u *entity.BayerUser) error {
	query := `
		INSERT INTO bayer_users (email, customer_team, name, cwid, address, ext_number, int_number, colonia, ciudad, edo, cp, cel_bayer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (email) DO UPDATE SET
			customer_team = EXCLUDED.customer_team, name = EXCLUDED.name, cwid = EXCLUDED.cwid,
			address = EXCLUDED.address, ext_number = EXCLUDED.ext_number, int_number = EXCLUDED.int_number,
			colonia = EXCLUDED.colonia, ciudad = EXCLUDED.ciudad, edo = EXCLUDED.edo, cp = EXCLUDED.cp,
			cel_bayer = EXCLUDED.cel_bayer
		RETURNING id`
	err := r.q.QueryRow(ctx, query, strings.ToLower(u.Email), u.CustomerTeam, u.Name, u.CWID, u.Address,
		u.ExtNumber, u.IntNumber, u.Colonia, u.City, u.State, u.PostalCode, u.Phone).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("upsert bayer user: %w", err)
	}
	return nil
}
