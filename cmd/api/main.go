package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/invoice-entry/internal/application/invoiceform"
	"github.com/jhoicas/invoice-entry/internal/application/scanning"
	"github.com/jhoicas/invoice-entry/internal/domain/repository"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/catalogfile"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/postgres"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/scanner"
	"github.com/jhoicas/invoice-entry/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/invoice-entry/internal/interfaces/http"
	"github.com/jhoicas/invoice-entry/pkg/config"
	"github.com/jhoicas/invoice-entry/pkg/logger"
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
		Str("catalog", cfg.Catalog.Source).
		Msg("iniciando aplicación")

	ctx := context.Background()
	catalogRepo, closeCatalog, err := openCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer closeCatalog()

	bridgeCfg := scanner.Config{
		DecodesPerSecond:  cfg.Scanner.DecodesPerSecond,
		DuplicateCooldown: cfg.Scanner.DuplicateCooldown,
	}
	forms := invoiceform.NewService(catalogRepo, func(l *logger.Logger) scanning.Bridge {
		return scanner.NewBridge(bridgeCfg, l.Component("scanner"))
	}, invoiceform.Options{
		KeepPlaceholderRow: cfg.Form.KeepPlaceholderRow,
		MaxOpenForms:       cfg.Form.MaxOpenForms,
		Scanner:            scanning.Config{FPS: cfg.Scanner.FPS, QRBox: cfg.Scanner.QRBoxSize},
		StopTimeout:        cfg.Scanner.StopTimeout,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Invoice Entry API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "open_forms": forms.Count()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Forms:     forms,
		JWTSecret: cfg.JWT.Secret,
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
	// Libera las cámaras de los formularios que quedaron abiertos
	forms.CloseAll(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}

// openCatalog construye la fuente del catálogo según CATALOG_SOURCE.
func openCatalog(ctx context.Context, cfg *config.Config) (repository.CatalogRepository, func(), error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return postgres.NewCatalogRepository(pool), pool.Close, nil
	case config.CatalogSourceSQLite:
		repo, err := sqlite.Open(cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		repo, err := catalogfile.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}
