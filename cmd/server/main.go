package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"capture-backend/internal/audit"
	"capture-backend/internal/capture"
	"capture-backend/internal/catalog"
	"capture-backend/internal/config"
	"capture-backend/internal/database"
	"capture-backend/internal/logging"
	"capture-backend/internal/metrics"
	"capture-backend/internal/mqttingest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, warnings := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "capture-backend")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	for _, w := range warnings {
		logger.Warn(w)
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(ctx, db)
	if err != nil {
		logger.Fatal("symbology catalog unavailable", zap.Error(err))
	}

	reg := metrics.NewRegistry()
	svc := capture.NewService(db, cat, logger, capture.Options{
		ListLimit: cfg.SessionListLimit,
		Retries:   cfg.TxRetries,
		Metrics:   metrics.New(reg),
	})

	app := fiber.New(fiber.Config{
		AppName:      "capture-backend",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	capture.RegisterRoutes(api, svc, cfg.AdminJWTSecret)
	audit.RegisterRoutes(api, db, cfg.AdminJWTSecret)

	var listener *mqttingest.Listener
	if cfg.MQTT.Enabled() {
		listener = mqttingest.NewListener(cfg.MQTT, svc, logger)
		if err := listener.Start(ctx); err != nil {
			logger.Error("MQTT ingestion disabled", zap.Error(err))
			listener = nil
		}
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if listener != nil {
			listener.Stop()
		}
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{
				"error": e.Message,
			})
		}
		logger.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
