package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/xaldigital/insumos-portal/internal/domain/entity"
)

// PNGPixel PNG 1x1 en base64.
const PNGPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// SignatureDataURL firma válida tal como la manda el canvas.
const SignatureDataURL = "data:image/png;base64," + PNGPixel

// Principales de prueba.
var (
	Admin = entity.Principal{Email: "admin@bayer.com", Role: entity.RoleAdmin}
	Rep1  = entity.Principal{Email: "ana.lopez@bayer.com", Role: entity.RoleRepresentative}
	Rep2  = entity.Principal{Email: "luis.perez@bayer.com", Role: entity.RoleRepresentative}
)

// SeedRoster carga los representantes Rep1 y Rep2 en el padrón.
func SeedRoster(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Roster().Upsert(ctx, &entity.BayerUser{
		Email: Rep1.Email, Name: "Ana López", CWID: "EXAMP01", CustomerTeam: "Norte", City: "Monterrey", Phone: "8100000001",
	}))
	require.NoError(t, s.Roster().Upsert(ctx, &entity.BayerUser{
		Email: Rep2.Email, Name: "Luis Pérez", CWID: "EXAMP02", CustomerTeam: "Centro", City: "CDMX", Phone: "5500000002",
	}))
}

// SeedVendor crea un proveedor.
func SeedVendor(t *testing.T, s *Store, name string) *entity.Vendor {
	t.Helper()
	v := &entity.Vendor{Name: name, Cellphone: "5550000000", UserEmail: Admin.Email, CreationDate: time.Now()}
	require.NoError(t, s.Vendors().Create(context.Background(), v))
	return v
}

// SeedInsumo crea un insumo con stock y costo unitario.
func SeedInsumo(t *testing.T, s *Store, vendorID int64, name string, stock int, cost string) *entity.Insumo {
	t.Helper()
	i := &entity.Insumo{Name: name, Stock: stock, UnitCost: decimal.RequireFromString(cost), VendorID: vendorID, LastUpdated: time.Now()}
	require.NoError(t, s.Insumos().Create(context.Background(), i))
	return i
}
