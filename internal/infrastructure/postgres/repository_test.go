package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/postgres"
	"github.com/xaldigital/insumos-portal/pkg/config"
)

// setupDB abre la BD de TEST_DATABASE_URL, aplica el schema y limpia las tablas.
// Sin TEST_DATABASE_URL el test se omite.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido; se omiten tests de PostgreSQL")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE insumos, orders, vendors, bayer_users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedVendor(t *testing.T, pool *pgxpool.Pool, name string) *entity.Vendor {
	t.Helper()
	v := &entity.Vendor{Name: name, Cellphone: "5550000000", UserEmail: "admin@bayer.com", CreationDate: time.Now()}
	require.NoError(t, postgres.NewVendorRepository(pool).Create(context.Background(), v))
	return v
}

func seedInsumo(t *testing.T, pool *pgxpool.Pool, vendorID int64, name string, stock int, cost string) *entity.Insumo {
	t.Helper()
	i := &entity.Insumo{Name: name, Stock: stock, UnitCost: decimal.RequireFromString(cost), VendorID: vendorID, LastUpdated: time.Now()}
	require.NoError(t, postgres.NewInsumoRepository(pool).Create(context.Background(), i))
	return i
}

func TestVendorRepo_GetByIDYDelete(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := postgres.NewVendorRepository(pool)

	v := seedVendor(t, pool, "Proveedor Norte")
	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Proveedor Norte", got.Name)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)

	err = repo.Create(ctx, &entity.Vendor{Name: "Proveedor Norte", CreationDate: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	seedInsumo(t, pool, v.ID, "Gasas", 1, "3.00")
	assert.ErrorIs(t, repo.Delete(ctx, v.ID), domain.ErrConflict, "no se borra un proveedor con insumos")
}

func TestInsumoRepo_ListBusquedaYPaginacion(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	v := seedVendor(t, pool, "Proveedor Sur")
	for _, n := range []string{"Guantes de látex", "Jeringa 5ml", "GUANTES de nitrilo", "Gasas"} {
		seedInsumo(t, pool, v.ID, n, 10, "1.50")
	}
	repo := postgres.NewInsumoRepository(pool)

	list, total, err := repo.List(ctx, repository.InsumoFilter{Name: "guantes"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "GUANTES de nitrilo", list[0].Name, "último actualizado primero")

	list, total, err = repo.List(ctx, repository.InsumoFilter{}, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, list, 1)

	_, total, err = repo.List(ctx, repository.InsumoFilter{Name: "100%"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "los comodines se escapan")
}

func TestInsumoRepo_DecrementStock(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	v := seedVendor(t, pool, "Proveedor Centro")
	i := seedInsumo(t, pool, v.ID, "Catéter", 2, "40.00")
	repo := postgres.NewInsumoRepository(pool)

	got, err := repo.DecrementStock(ctx, i.ID, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, "Proveedor Centro", got.VendorName)

	_, err = repo.DecrementStock(ctx, i.ID, 1, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err = repo.DecrementStock(ctx, i.ID, 3, true)
	require.NoError(t, err)
	assert.Equal(t, -3, got.Stock)

	_, err = repo.DecrementStock(ctx, 9999, 1, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunner_RollbackRevierteDecrementos(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	v := seedVendor(t, pool, "Proveedor Oeste")
	i := seedInsumo(t, pool, v.ID, "Sonda", 10, "8.00")

	boom := errors.New("falla a mitad del pedido")
	err := postgres.NewTxRunner(pool).RunOrder(ctx, func(ir repository.InsumoRepository, _ repository.OrderRepository) error {
		if _, err := ir.DecrementStock(ctx, i.ID, 4, true); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := postgres.NewInsumoRepository(pool).GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestOrderRepo_CreateListYSetStatus(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := postgres.NewOrderRepository(pool)
	now := time.Now()

	mk := func(email string, status entity.OrderStatus) *entity.Order {
		o := &entity.Order{
			UserEmail: email, CreationDate: now, LastUpdated: now, Status: status,
			Lines: []entity.OrderLine{{ID: 1, Name: "Gasas", Quantity: 2, Cost: decimal.RequireFromString("3.25")}},
			Total: decimal.RequireFromString("6.50"),
		}
		require.NoError(t, repo.Create(ctx, o))
		return o
	}
	a := mk("rep1@bayer.com", entity.OrderStatusCreated)
	mk("rep1@bayer.com", entity.OrderStatusInTransit)
	mk("rep2@bayer.com", entity.OrderStatusDelivered)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, decimal.RequireFromString("3.25").Equal(got.Lines[0].Cost))
	assert.True(t, decimal.RequireFromString("6.50").Equal(got.Total))

	_, total, err := repo.List(ctx, repository.OrderFilter{UserEmail: "REP1@bayer.com"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = repo.List(ctx, repository.OrderFilter{ExcludeStatuses: []entity.OrderStatus{entity.OrderStatusCreated}}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = repo.List(ctx, repository.OrderFilter{FilterByEmails: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "búsqueda por nombre sin coincidencias")

	require.NoError(t, repo.SetStatus(ctx, []int64{a.ID}, entity.OrderStatusCancelled, now))
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)

	err = repo.SetStatus(ctx, []int64{a.ID}, "Perdido", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "CHECK de status")
}

func TestRosterRepo(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := postgres.NewRosterRepository(pool)

	u := &entity.BayerUser{Email: "Ana.Lopez@bayer.com", Name: "Ana López", CWID: "EXAMP01", City: "Monterrey"}
	require.NoError(t, repo.Upsert(ctx, u))

	got, err := repo.GetByEmail(ctx, "ana.lopez@BAYER.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Monterrey", got.City)

	got, err = repo.GetByCWID(ctx, "examp01")
	require.NoError(t, err)
	require.NotNil(t, got)

	emails, err := repo.FindEmailsByName(ctx, "lópez")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana.lopez@bayer.com"}, emails)

	missing, err := repo.GetByEmail(ctx, "nadie@bayer.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
