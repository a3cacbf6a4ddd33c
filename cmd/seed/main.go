// seed carga datos iniciales: proveedores, insumos del catálogo y el padrón de representantes.
//
// Uso: go run ./cmd/seed [-latin1] [padron.csv]
// Sin archivo se carga un padrón sintético. Es idempotente: proveedores e insumos existentes
// (mismo nombre) se dejan como están y el padrón se actualiza por email.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xaldigital/insumos-portal/internal/domain"
	"github.com/xaldigital/insumos-portal/internal/domain/entity"
	"github.com/xaldigital/insumos-portal/internal/domain/repository"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/postgres"
	"github.com/xaldigital/insumos-portal/pkg/config"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

const seedStock = 1500

type seedInsumo struct {
	name   string
	cost   string
	vendor string
}

var seedVendors = []entity.Vendor{
	{Name: "Distribuidora Médica del Norte", Cellphone: "8112345678"},
	{Name: "Suministros Hospitalarios del Centro", Cellphone: "5523456789"},
	{Name: "Equipos Clínicos de Occidente", Cellphone: "3334567890"},
}

var seedInsumos = []seedInsumo{
	{"Catéter venoso central", "4850.00", "Distribuidora Médica del Norte"},
	{"Kit de inyector para resonancia", "4200.00", "Distribuidora Médica del Norte"},
	{"Kit de inyector para tomografía", "3900.00", "Distribuidora Médica del Norte"},
	{"Jeringa de alta presión 200 ml", "2350.00", "Distribuidora Médica del Norte"},
	{"Línea de conexión en espiral", "2100.00", "Distribuidora Médica del Norte"},
	{"Set de transferencia de contraste", "2600.00", "Distribuidora Médica del Norte"},
	{"Llave de tres vías", "2000.00", "Suministros Hospitalarios del Centro"},
	{"Extensión para infusión 150 cm", "2250.00", "Suministros Hospitalarios del Centro"},
	{"Bolsa colectora de residuos", "2050.00", "Suministros Hospitalarios del Centro"},
	{"Guantes de nitrilo caja 100", "2400.00", "Suministros Hospitalarios del Centro"},
	{"Apósito transparente estéril", "2150.00", "Suministros Hospitalarios del Centro"},
	{"Cánula intravenosa 20G", "2700.00", "Suministros Hospitalarios del Centro"},
	{"Sensor de oximetría desechable", "3450.00", "Equipos Clínicos de Occidente"},
	{"Electrodos para monitoreo", "3100.00", "Equipos Clínicos de Occidente"},
	{"Circuito de ventilación adulto", "4600.00", "Equipos Clínicos de Occidente"},
	{"Transductor de presión invasiva", "5000.00", "Equipos Clínicos de Occidente"},
	{"Mascarilla de oxígeno con reservorio", "2800.00", "Equipos Clínicos de Occidente"},
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV del padrón está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	roster := demoRoster()
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("abrir padrón")
		}
		roster, err = parseRoster(f, *latin1)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("leer padrón")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar schema")
	}

	vendorIDs, err := seedVendorRows(ctx, postgres.NewVendorRepository(pool), cfg.Identity.AdminEmails)
	if err != nil {
		log.Fatal().Err(err).Msg("proveedores")
	}
	created, err := seedInsumoRows(ctx, postgres.NewInsumoRepository(pool), vendorIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("insumos")
	}
	rosterRepo := postgres.NewRosterRepository(pool)
	for _, u := range roster {
		if err := rosterRepo.Upsert(ctx, u); err != nil {
			log.Fatal().Err(err).Str("email", u.Email).Msg("padrón")
		}
	}
	log.Info().Int("vendors", len(vendorIDs)).Int("insumos_nuevos", created).Int("padron", len(roster)).Msg("seed terminado")
}

// seedVendorRows crea los proveedores que falten y devuelve nombre -> id.
func seedVendorRows(ctx context.Context, repo repository.VendorRepository, admins []string) (map[string]int64, error) {
	owner := ""
	if len(admins) > 0 {
		owner = admins[0]
	}
	ids := make(map[string]int64, len(seedVendors))
	for _, sv := range seedVendors {
		v := sv
		v.UserEmail = owner
		v.CreationDate = time.Now()
		err := repo.Create(ctx, &v)
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		if err == nil {
			ids[v.Name] = v.ID
		}
	}
	all, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range all {
		ids[v.Name] = v.ID
	}
	return ids, nil
}

// seedInsumoRows crea los insumos cuyo nombre aún no existe. Devuelve cuántos creó.
func seedInsumoRows(ctx context.Context, repo repository.InsumoRepository, vendorIDs map[string]int64) (int, error) {
	created := 0
	for _, si := range seedInsumos {
		existing, _, err := repo.List(ctx, repository.InsumoFilter{Name: si.name}, 10, 0)
		if err != nil {
			return created, err
		}
		if containsName(existing, si.name) {
			continue
		}
		vendorID, ok := vendorIDs[si.vendor]
		if !ok {
			return created, fmt.Errorf("proveedor %q: %w", si.vendor, domain.ErrVendorNotFound)
		}
		i := &entity.Insumo{
			Name:        si.name,
			Stock:       seedStock,
			UnitCost:    decimal.RequireFromString(si.cost),
			VendorID:    vendorID,
			LastUpdated: time.Now(),
		}
		if err := repo.Create(ctx, i); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func containsName(list []*entity.Insumo, name string) bool {
	for _, i := range list {
		if strings.EqualFold(i.Name, name) {
			return true
		}
	}
	return false
}
