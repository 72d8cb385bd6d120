// @title        Reabastecimiento API
// @version      1.0
// @description  Ledger de stock, órdenes de compra y pronóstico de reorden.
// @BasePath     /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/Reabastecimiento-api/docs"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
	"github.com/jhoicas/Reabastecimiento-api/internal/application/usecase"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Reabastecimiento-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Reabastecimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Reabastecimiento-api/internal/platform/observability"
	"github.com/jhoicas/Reabastecimiento-api/pkg/config"
	"github.com/jhoicas/Reabastecimiento-api/pkg/logger"
)

// version se sobreescribe con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownOtel, err := observability.Setup(ctx, cfg.Otel, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar OpenTelemetry")
	}

	// Almacenamiento: PostgreSQL en producción, memoria para demos y desarrollo local.
	var txRunner inventory.TxRunner
	switch cfg.Store.Driver {
	case config.DriverMemory:
		txRunner = memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar schema")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
	}

	// Eventos post-commit: Kafka si hay brokers, si no no-op.
	var publisher inventory.EventPublisher = inventory.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	zl := log.Zerolog()
	clock := inventory.SystemClock{}
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)

	supplierUC := usecase.NewSupplierUseCase(txRunner, clock, zl)
	productUC := usecase.NewProductUseCase(txRunner, clock, zl)
	movementUC := inventory.NewMovementUseCase(txRunner, clock, publisher, zl)
	purchaseOrderUC := inventory.NewPurchaseOrderUseCase(txRunner, clock, publisher, pdfGenerator, zl)
	forecastUC := inventory.NewForecastUseCase(txRunner, clock, inventory.ForecastSettings{
		WindowDays:   cfg.Forecast.WindowDays,
		ServiceLevel: cfg.Forecast.ServiceLevel,
	}, zl)
	reconciliationUC := inventory.NewReconciliationUseCase(txRunner, zl)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		// Params y body se copian: el store en memoria conserva los IDs entre peticiones.
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Reabastecimiento API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger.json no encontrado, UI deshabilitada")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SupplierUC:       supplierUC,
		ProductUC:        productUC,
		MovementUC:       movementUC,
		PurchaseOrderUC:  purchaseOrderUC,
		ForecastUC:       forecastUC,
		ReconciliationUC: reconciliationUC,
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
	if err := shutdownOtel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cerrar OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}
