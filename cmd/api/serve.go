package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"reimburse/docs"
	"reimburse/internal/export"
	handlers "reimburse/internal/http/handler"
	"reimburse/internal/http/middleware"
	"reimburse/internal/logging"
	"reimburse/internal/otel"
	"reimburse/internal/repository/postgres"
	"reimburse/internal/service"
	"reimburse/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.Component("tracing"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			e.logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// Initialize PostgreSQL connection and make sure the schema exists
	db, err := openDB(ctx, e, true)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(e.cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, e.cfg.Database.Name),
	)
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register domain metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	// Initialize repositories and services
	invoiceRepo := postgres.NewInvoicePostgres(db)
	edgeRepo := postgres.NewAttachmentPostgres(db)
	tx := postgres.NewTransactor(db)
	svcs := handlers.Services{
		Invoices:    service.NewInvoiceService(objStore, invoiceRepo, edgeRepo, tx, e.logger),
		Lifecycle:   service.NewLifecycleService(invoiceRepo, metrics),
		Attachments: service.NewAttachmentService(invoiceRepo, edgeRepo),
		Export: service.NewExportService(invoiceRepo, edgeRepo, tx, export.Options{
			BOM:      e.cfg.Export.UTF8BOM,
			Location: e.loc,
		}),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             e.cfg.Upload.MaxBytes,
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.Component("http")))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	handlers.RegisterRoutes(app, db, svcs)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + e.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		e.logger.Info().Str("addr", addr).Str("public_host", e.cfg.AppHost).Msg("http server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		e.logger.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
