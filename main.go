package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"produtoapi/internal/config"
	"produtoapi/internal/database"
	"produtoapi/internal/handlers"
	"produtoapi/internal/middleware"
	"produtoapi/internal/repositories"
	"produtoapi/internal/services"
	"produtoapi/pkg/logger"
	"produtoapi/pkg/rabbitmq"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber *fiber.App
	db    *gorm.DB
	mq    *rabbitmq.Client // nil when no broker is configured
	log   *logger.Logger
}

// NewApp connects the database (and the broker, if configured) and wires the
// produto routes under /api.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	a := &App{db: db, log: log}

	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		a.mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, log)
		if err != nil {
			database.Close(db)
			return nil, err
		}
		publisher = a.mq

		if cfg.RabbitMQ.Consume {
			if err := a.mq.ConsumeProdutoEvents(rabbitmq.LogProdutoEvent(log)); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	produtoRepo := repositories.NewGORMProdutoRepository(db)
	produtoService := services.NewProdutoService(produtoRepo, publisher, log)

	produtoHandler := handlers.NewProdutoHandler(produtoService)
	healthHandler := handlers.NewHealthHandler(func() error { return database.Ping(db) }, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
	})
	// recover sits inside the logger so a recovered panic is still logged as a 500.
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())

	healthHandler.RegisterRoutes(app)
	produtoHandler.RegisterRoutes(app.Group("/api"))

	a.Fiber = app
	return a, nil
}

// Close shuts down the HTTP server and releases the broker and database connections.
func (a *App) Close() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}

// mustLoadConfig runs load and exits with status 1 on failure. The logger is
// not configured yet at this point, so the error goes to stderr.
func mustLoadConfig(load func() (*config.Config, error), stderr io.Writer, exit func(int)) *config.Config {
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		exit(1)
		return nil
	}
	return cfg
}

func main() {
	cfg := mustLoadConfig(config.Load, os.Stderr, os.Exit)

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.App.Port).Str("env", cfg.App.Env).Msg("starting server")
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.Close(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}
