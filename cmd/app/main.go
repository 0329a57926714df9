package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderflow/cmd"
	api "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres/migrations"
	"orderflow/internal/pkg/observability"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	tracerProvider, shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:       configs.OTelEndpoint,
		Insecure:       configs.OTelInsecure,
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}

	gormDB := mustGormOpen(ctx, configs.DSN())

	app, err := cmd.NewCompositionRoot(configs, gormDB, tracerProvider, logger)
	if err != nil {
		log.Fatalf("compose application: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("start jobs: %v", err)
	}

	e := newWebServer(app.HTTPHandlers())
	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err := app.Close(); err != nil {
		logger.Error("Closing connections failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown failed", "error", err)
	}
}

func mustGormOpen(ctx context.Context, dsn string) *gorm.DB {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("connection to postgres through gorm: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("get sql.DB from gorm: %v", err)
	}
	if err := migrations.Up(ctx, sqlDB); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	return gormDB
}

func newWebServer(handlers api.Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if err := api.NewServer(handlers).Register(e); err != nil {
		log.Fatalf("register routes: %v", err)
	}
	return e
}
