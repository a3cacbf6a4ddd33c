// Package testutil repositorios en memoria para tests de casos de uso y handlers.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
)

type state struct {
	mu      sync.Mutex
	seq     int64
	vendors map[int64]*entity.Vendor
	insumos map[int64]*entity.Insumo
	orders  map[int64]*entity.Order
	roster  map[string]*entity.BayerUser
}

func newState() *state {
	return &state{
		vendors: map[int64]*entity.Vendor{},
		insumos: map[int64]*entity.Insumo{},
		orders:  map[int64]*entity.Order{},
		roster:  map[string]*entity.BayerUser{},
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// clone copia profunda (salvo padrón, que es de sólo lectura).
func (s *state) clone() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newState()
	c.seq = s.seq
	for k, v := range s.vendors {
		cp := *v
		c.vendors[k] = &cp
	}
	for k, v := range s.insumos {
		c.insumos[k] = copyInsumo(v)
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	c.roster = s.roster
	return c
}

// Store juego de repositorios en memoria con transacciones por snapshot: RunOrder trabaja sobre una copia
// y sólo la publica si fn no devuelve error.
type Store struct {
	txMu sync.Mutex
	st   *state
	// FailOrderCreate hace fallar OrderRepository.Create (prueba de rollback).
	FailOrderCreate error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) current() *state {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.st
}

// Vendors repositorio de proveedores fuera de transacción.
func (s *Store) Vendors() repository.VendorRepository { return &vendorRepo{s: s} }

// Insumos repositorio de insumos fuera de transacción.
func (s *Store) Insumos() repository.InsumoRepository { return &insumoRepo{get: s.current} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{get: s.current, fail: func() error { return s.FailOrderCreate }}
}

// Roster padrón.
func (s *Store) Roster() repository.RosterRepository { return &rosterRepo{get: s.current} }

// RunOrder cumple order.TxRunner.
func (s *Store) RunOrder(ctx context.Context, fn func(repository.InsumoRepository, repository.OrderRepository) error) error {
	s.txMu.Lock()
	snap := s.st.clone()
	s.txMu.Unlock()

	get := func() *state { return snap }
	if err := fn(&insumoRepo{get: get}, &orderRepo{get: get, fail: func() error { return s.FailOrderCreate }}); err != nil {
		return err
	}
	s.txMu.Lock()
	s.st = snap
	s.txMu.Unlock()
	return nil
}

// ── vendors ──────────────────────────────────────────────────────────────────

type vendorRepo struct{ s *Store }

func (r *vendorRepo) Create(_ context.Context, v *entity.Vendor) error {
	st := r.s.current()
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range st.vendors {
		if strings.EqualFold(e.Name, v.Name) {
			return domain.ErrDuplicate
		}
	}
	v.ID = st.next()
	cp := *v
	st.vendors[v.ID] = &cp
	return nil
}

func (r *vendorRepo) GetByID(_ context.Context, id int64) (*entity.Vendor, error) {
	st := r.s.current()
	st.mu.Lock()
	defer st.mu.Unlock()
	v, ok := st.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *vendorRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vendor, int, error) {
	all, _ := r.ListAll(ctx)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreationDate.After(all[j].CreationDate) })
	return page(all, limit, offset), len(all), nil
}

func (r *vendorRepo) ListAll(context.Context) ([]*entity.Vendor, error) {
	st := r.s.current()
	st.mu.Lock()
	defer st.mu.Unlock()
	list := make([]*entity.Vendor, 0, len(st.vendors))
	for _, v := range st.vendors {
		cp := *v
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *vendorRepo) Delete(_ context.Context, id int64) error {
	st := r.s.current()
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.vendors[id]; !ok {
		return domain.ErrVendorNotFound
	}
	for _, i := range st.insumos {
		if i.VendorID == id {
			return domain.ErrConflict
		}
	}
	delete(st.vendors, id)
	return nil
}

// ── insumos ──────────────────────────────────────────────────────────────────

type insumoRepo struct{ get func() *state }

func (r *insumoRepo) Create(_ context.Context, i *entity.Insumo) error {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	v, ok := st.vendors[i.VendorID]
	if !ok {
		return domain.ErrVendorNotFound
	}
	i.ID = st.next()
	i.VendorName = v.Name
	st.insumos[i.ID] = copyInsumo(i)
	return nil
}

func (r *insumoRepo) GetByID(_ context.Context, id int64) (*entity.Insumo, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	i, ok := st.insumos[id]
	if !ok {
		return nil, nil
	}
	return st.withVendor(i), nil
}

func (r *insumoRepo) GetByIDs(_ context.Context, ids []int64) ([]*entity.Insumo, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	var list []*entity.Insumo
	for _, id := range ids {
		if i, ok := st.insumos[id]; ok {
			list = append(list, st.withVendor(i))
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Name < list[b].Name })
	return list, nil
}

func (r *insumoRepo) Update(_ context.Context, i *entity.Insumo) error {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.insumos[i.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := st.vendors[i.VendorID]; !ok {
		return domain.ErrVendorNotFound
	}
	cp := copyInsumo(i)
	cp.OrderID = cur.OrderID
	st.insumos[i.ID] = cp
	return nil
}

func (r *insumoRepo) Delete(_ context.Context, id int64) error {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.insumos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.insumos, id)
	return nil
}

func (r *insumoRepo) List(_ context.Context, f repository.InsumoFilter, limit, offset int) ([]*entity.Insumo, int, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	needle := strings.ToLower(f.Name)
	var list []*entity.Insumo
	for _, i := range st.insumos {
		if needle != "" && !strings.Contains(strings.ToLower(i.Name), needle) {
			continue
		}
		list = append(list, st.withVendor(i))
	}
	sort.Slice(list, func(a, b int) bool {
		if list[a].LastUpdated.Equal(list[b].LastUpdated) {
			return list[a].ID > list[b].ID
		}
		return list[a].LastUpdated.After(list[b].LastUpdated)
	})
	return page(list, limit, offset), len(list), nil
}

func (r *insumoRepo) DecrementStock(_ context.Context, id int64, qty int, allowNegative bool) (*entity.Insumo, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	i, ok := st.insumos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !allowNegative && i.Stock < qty {
		return nil, domain.ErrInsufficientStock
	}
	i.Stock -= qty
	i.LastUpdated = time.Now()
	return st.withVendor(i), nil
}

func (r *insumoRepo) AssignOrder(_ context.Context, ids []int64, orderID int64) error {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, id := range ids {
		if i, ok := st.insumos[id]; ok {
			oid := orderID
			i.OrderID = &oid
		}
	}
	return nil
}

func (s *state) withVendor(i *entity.Insumo) *entity.Insumo {
	cp := copyInsumo(i)
	if v, ok := s.vendors[i.VendorID]; ok {
		cp.VendorName = v.Name
	}
	return cp
}

// ── orders ───────────────────────────────────────────────────────────────────

type orderRepo struct {
	get  func() *state
	fail func() error
}

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	if err := r.fail(); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return domain.ErrInvalidInput
	}
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	o.ID = st.next()
	st.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	o, ok := st.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *orderRepo) GetByIDs(_ context.Context, ids []int64) ([]*entity.Order, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	var list []*entity.Order
	for _, id := range ids {
		if o, ok := st.orders[id]; ok {
			list = append(list, copyOrder(o))
		}
	}
	sortOrders(list)
	return list, nil
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter, limit, offset int) ([]*entity.Order, int, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	emails := map[string]bool{}
	for _, e := range f.UserEmails {
		emails[strings.ToLower(e)] = true
	}
	var list []*entity.Order
	for _, o := range st.orders {
		email := strings.ToLower(o.UserEmail)
		if f.UserEmail != "" && email != strings.ToLower(f.UserEmail) {
			continue
		}
		if (f.FilterByEmails || len(f.UserEmails) > 0) && !emails[email] {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		excluded := false
		for _, s := range f.ExcludeStatuses {
			if o.Status == s {
				excluded = true
			}
		}
		if excluded {
			continue
		}
		list = append(list, copyOrder(o))
	}
	sortOrders(list)
	return page(list, limit, offset), len(list), nil
}

func (r *orderRepo) Update(_ context.Context, o *entity.Order) error {
	if !o.Status.Valid() {
		return domain.ErrInvalidInput
	}
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	cur, ok := st.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyOrder(o)
	cp.Lines = cur.Lines
	cp.Total = cur.Total
	st.orders[o.ID] = cp
	return nil
}

func (r *orderRepo) SetStatus(_ context.Context, ids []int64, status entity.OrderStatus, at time.Time) error {
	if !status.Valid() {
		return domain.ErrInvalidInput
	}
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, id := range ids {
		if o, ok := st.orders[id]; ok {
			o.Status = status
			o.LastUpdated = at
		}
	}
	return nil
}

func sortOrders(list []*entity.Order) {
	sort.Slice(list, func(a, b int) bool {
		if list[a].CreationDate.Equal(list[b].CreationDate) {
			return list[a].ID > list[b].ID
		}
		return list[a].CreationDate.After(list[b].CreationDate)
	})
}

// ── roster ───────────────────────────────────────────────────────────────────

type rosterRepo struct{ get func() *state }

func (r *rosterRepo) GetByEmail(_ context.Context, email string) (*entity.BayerUser, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	if u, ok := st.roster[strings.ToLower(strings.TrimSpace(email))]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *rosterRepo) GetByCWID(_ context.Context, cwid string) (*entity.BayerUser, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, u := range st.roster {
		if strings.EqualFold(u.CWID, strings.TrimSpace(cwid)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *rosterRepo) FindEmailsByName(_ context.Context, name string) ([]string, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []string
	for email, u := range st.roster {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, email)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *rosterRepo) ListByEmails(_ context.Context, emails []string) ([]*entity.BayerUser, error) {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []*entity.BayerUser
	for _, e := range emails {
		if u, ok := st.roster[strings.ToLower(e)]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *rosterRepo) Upsert(_ context.Context, u *entity.BayerUser) error {
	st := r.get()
	st.mu.Lock()
	defer st.mu.Unlock()
	k := strings.ToLower(u.Email)
	if cur, ok := st.roster[k]; ok {
		u.ID = cur.ID
	} else {
		u.ID = st.next()
	}
	cp := *u
	cp.Email = k
	st.roster[k] = &cp
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func copyInsumo(i *entity.Insumo) *entity.Insumo {
	cp := *i
	if i.OrderID != nil {
		oid := *i.OrderID
		cp.OrderID = &oid
	}
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
