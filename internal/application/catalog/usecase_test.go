package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/application/catalog"
	"github.com/xaldigital/insumos-portal/internal/application/dto"
	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/testutil"
)

func newCatalog(t *testing.T) (*catalog.CatalogUseCase, *testutil.Store) {
	t.Helper()
	s := testutil.NewStore()
	return catalog.NewCatalogUseCase(s.Insumos(), s.Vendors(), nil), s
}

func TestCreateInsumo(t *testing.T) {
	uc, s := newCatalog(t)
	ctx := context.Background()
	v := testutil.SeedVendor(t, s, "Proveedor Norte")

	res, err := uc.CreateInsumo(ctx, testutil.Admin, dto.InsumoRequest{Name: "  Gasas  ", Stock: 1500, UnitCost: "2500.555", VendorID: v.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gasas", res.Name)
	assert.True(t, decimal.RequireFromString("2500.56").Equal(res.UnitCost))
	assert.Equal(t, "Proveedor Norte", res.VendorName)

	_, err = uc.CreateInsumo(ctx, testutil.Admin, dto.InsumoRequest{Name: "Agujas", Stock: 1, UnitCost: "1", VendorID: 9999})
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)

	_, err = uc.CreateInsumo(ctx, testutil.Rep1, dto.InsumoRequest{Name: "Agujas", Stock: 1, UnitCost: "1", VendorID: v.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateInsumo_Validaciones(t *testing.T) {
	uc, s := newCatalog(t)
	v := testutil.SeedVendor(t, s, "Proveedor Norte")
	long := ""
	for i := 0; i < 81; i++ {
		long += "a"
	}
	tests := []struct {
		name string
		in   dto.InsumoRequest
	}{
		{"sin nombre", dto.InsumoRequest{Name: "   ", Stock: 1, UnitCost: "1", VendorID: v.ID}},
		{"nombre largo", dto.InsumoRequest{Name: long, Stock: 1, UnitCost: "1", VendorID: v.ID}},
		{"stock negativo", dto.InsumoRequest{Name: "X", Stock: -1, UnitCost: "1", VendorID: v.ID}},
		{"costo negativo", dto.InsumoRequest{Name: "X", Stock: 1, UnitCost: "-0.01", VendorID: v.ID}},
		{"costo no numérico", dto.InsumoRequest{Name: "X", Stock: 1, UnitCost: "mil", VendorID: v.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateInsumo(context.Background(), testutil.Admin, tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestListInsumos_BusquedaYPaginacion(t *testing.T) {
	uc, s := newCatalog(t)
	ctx := context.Background()
	v := testutil.SeedVendor(t, s, "Proveedor Norte")
	for i := 0; i < 12; i++ {
		testutil.SeedInsumo(t, s, v.ID, fmt.Sprintf("Guantes talla %d", i), 10, "1")
	}
	testutil.SeedInsumo(t, s, v.ID, "Jeringa", 10, "1")

	res, err := uc.ListInsumos(ctx, "", dto.PageRequest{PerPage: 100})
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 13, res.Page.Total)
	assert.Equal(t, "Jeringa", res.Items[0].Name, "último actualizado primero")

	res, err = uc.ListInsumos(ctx, "GUANTES", dto.PageRequest{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Page.Total)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, "GUANTES", res.Query)
}

func TestUpdateInsumo(t *testing.T) {
	uc, s := newCatalog(t)
	ctx := context.Background()
	a := testutil.SeedVendor(t, s, "Proveedor A")
	b := testutil.SeedVendor(t, s, "Proveedor B")
	i := testutil.SeedInsumo(t, s, a.ID, "Gasas", 10, "3")

	res, err := uc.UpdateInsumo(ctx, testutil.Admin, i.ID, dto.InsumoRequest{Name: "Gasas 10x10", Stock: 20, UnitCost: "3.5", VendorID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "Proveedor B", res.VendorName)
	assert.True(t, res.LastUpdated.After(i.LastUpdated) || res.LastUpdated.Equal(i.LastUpdated))

	got, err := uc.GetInsumo(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
	assert.Equal(t, b.ID, got.VendorID)

	_, err = uc.UpdateInsumo(ctx, testutil.Admin, 9999, dto.InsumoRequest{Name: "X", UnitCost: "1", VendorID: a.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.GetInsumo(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteInsumoYProveedor(t *testing.T) {
	uc, s := newCatalog(t)
	ctx := context.Background()
	v := testutil.SeedVendor(t, s, "Proveedor Norte")
	i := testutil.SeedInsumo(t, s, v.ID, "Gasas", 10, "3")

	assert.ErrorIs(t, uc.DeleteVendor(ctx, testutil.Admin, v.ID), domain.ErrConflict)
	assert.ErrorIs(t, uc.DeleteInsumo(ctx, testutil.Rep1, i.ID), domain.ErrForbidden)
	require.NoError(t, uc.DeleteInsumo(ctx, testutil.Admin, i.ID))
	assert.ErrorIs(t, uc.DeleteInsumo(ctx, testutil.Admin, i.ID), domain.ErrNotFound)
	require.NoError(t, uc.DeleteVendor(ctx, testutil.Admin, v.ID))
	assert.ErrorIs(t, uc.DeleteVendor(ctx, testutil.Admin, v.ID), domain.ErrVendorNotFound)
}

func TestVendors(t *testing.T) {
	uc, _ := newCatalog(t)
	ctx := context.Background()

	v, err := uc.CreateVendor(ctx, testutil.Admin, dto.VendorRequest{Name: "Distribuidora Sur", Cellphone: "5551234567"})
	require.NoError(t, err)
	assert.Equal(t, testutil.Admin.Email, v.UserEmail)

	_, err = uc.CreateVendor(ctx, testutil.Admin, dto.VendorRequest{Name: "distribuidora sur"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.CreateVendor(ctx, testutil.Admin, dto.VendorRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateVendor(ctx, testutil.Rep1, dto.VendorRequest{Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	time.Sleep(time.Millisecond)
	_, err = uc.CreateVendor(ctx, testutil.Admin, dto.VendorRequest{Name: "Abastos Médicos"})
	require.NoError(t, err)

	all, err := uc.AllVendors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Abastos Médicos", all[0].Name, "ordenado por nombre")

	page, err := uc.ListVendors(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Total)
	assert.Equal(t, "Abastos Médicos", page.Items[0].Name, "más reciente primero")
}
