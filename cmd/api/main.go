package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/xaldigital/insumos-portal/internal/application/auth"
	"github.com/xaldigital/insumos-portal/internal/application/catalog"
	"github.com/xaldigital/insumos-portal/internal/application/order"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/identity"
	infrapdf "github.com/xaldigital/insumos-portal/internal/infrastructure/pdf"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/postgres"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/session"
	"github.com/xaldigital/insumos-portal/internal/infrastructure/storage"
	httpRouter "github.com/xaldigital/insumos-portal/internal/interfaces/http"
	"github.com/xaldigital/insumos-portal/pkg/config"
	"github.com/xaldigital/insumos-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("identity", cfg.Identity.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar schema")
	}

	insumoRepo := postgres.NewInsumoRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	rosterRepo := postgres.NewRosterRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Proveedor de identidad: Cognito en staging/producción, directorio local en desarrollo.
	var idp auth.IdentityProvider
	switch cfg.Identity.Provider {
	case "cognito":
		cognito, err := identity.NewCognitoProvider(ctx, cfg.Identity)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Cognito")
		}
		idp = cognito
	default:
		local := identity.NewLocalProvider(identity.LocalConfig{
			Secret:     cfg.JWT.Secret,
			Issuer:     cfg.JWT.Issuer,
			ExpMinutes: cfg.JWT.Expiration,
		}, log)
		seedLocalUsers(local, cfg, log)
		idp = local
	}

	// Sesiones: Redis si hay REDIS_ADDR, si no memoria del proceso.
	var sessionStorage fiber.Storage
	if cfg.Redis.Addr != "" {
		rs, err := session.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, "insumos:sess:")
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rs.Close()
		sessionStorage = rs
	}
	sessions := httpRouter.NewSessions(sessionStorage,
		time.Duration(cfg.Session.ExpirationMinutes)*time.Minute, cfg.Session.CookieSecure)

	// Archivo de cartas firmadas (opcional).
	var archive order.LetterArchive
	if cfg.Storage.Bucket != "" {
		a, err := storage.NewMinioLetterArchive(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("bucket de cartas")
		}
		archive = a
	}

	letters, err := infrapdf.NewMarotoLetterGenerator(cfg.Orders.LogoPath)
	if err != nil {
		log.Fatal().Err(err).Msg("logo de cartas")
	}

	authUC := auth.NewAuthUseCase(idp, rosterRepo, cfg.Identity.AdminEmails, log)
	catalogUC := catalog.NewCatalogUseCase(insumoRepo, vendorRepo, log)
	orderUC := order.NewOrderUseCase(txRunner, orderRepo, insumoRepo, rosterRepo, letters, archive,
		order.StockPolicy(cfg.Orders.StockPolicy), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Views:        httpRouter.NewViews(),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		CatalogUC: catalogUC,
		OrderUC:   orderUC,
		Sessions:  sessions,
		Logger:    log,
		AppName:   cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedLocalUsers cuentas de desarrollo para el directorio local (LOCAL_USERS=correo:clave,...).
func seedLocalUsers(p *identity.LocalProvider, cfg *config.Config, log *logger.Logger) {
	for _, u := range cfg.Identity.LocalUsers {
		if err := p.SeedUser(u.Email, u.Password); err != nil {
			log.Warn().Err(err).Str("email", u.Email).Msg("cuenta local")
			continue
		}
		log.Info().Str("email", u.Email).Msg("cuenta local creada")
	}
}
