package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/config"
	"github.com/Kmaheshkanna2005/resource-management/internal/clock"
	"github.com/Kmaheshkanna2005/resource-management/internal/consumer"
	"github.com/Kmaheshkanna2005/resource-management/internal/handler"
	"github.com/Kmaheshkanna2005/resource-management/internal/middleware"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"github.com/Kmaheshkanna2005/resource-management/internal/seed"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"github.com/Kmaheshkanna2005/resource-management/pkg/database"
	"github.com/Kmaheshkanna2005/resource-management/pkg/rabbitmq"
	"github.com/Kmaheshkanna2005/resource-management/pkg/tracing"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	gommonLog "github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

const serviceName = "resource-scheduler"

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(serviceName, cfg.TraceOutput)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("failed to flush traces: %v", err)
		}
	}()

	db, err := database.Connect(ctx, cfg.Database())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Repositories
	txRunner := repository.NewTxRunner(db)
	eventRepo := repository.NewEventRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	allocRepo := repository.NewAllocationRepository(db)

	// RabbitMQ publisher: optional, notifications are best effort
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	// Services
	clk := clock.NewSystem()
	eventSvc := service.NewEventService(txRunner, eventRepo, resourceRepo, allocRepo, publisher)
	resourceSvc := service.NewResourceService(txRunner, resourceRepo, allocRepo)
	allocationSvc := service.NewAllocationService(txRunner, eventRepo, resourceRepo, allocRepo, publisher, clk)
	reportSvc := service.NewReportService(eventRepo, resourceRepo, allocRepo, clk)

	// RabbitMQ consumer: sync events from an upstream calendar
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewEventConsumer(eventSvc).Start(ctx, msgs)
	}

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to load seed: %v", err)
		}
		if _, err := seed.Apply(ctx, f, seed.Services{
			Resources:   resourceSvc,
			Events:      eventSvc,
			Allocations: allocationSvc,
		}); err != nil {
			log.Fatalf("failed to apply seed: %v", err)
		}
	}

	e := newRouter(services{
		events:      eventSvc,
		resources:   resourceSvc,
		allocations: allocationSvc,
		reports:     reportSvc,
	}, cfg.RateLimitRPS)

	go func() {
		log.Printf("Resource Scheduler starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

type services struct {
	events      service.EventService
	resources   service.ResourceService
	allocations service.AllocationService
	reports     service.ReportService
}

func newRouter(svcs services, rateLimitRPS float64) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(gommonLog.INFO)
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s [%s]", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})

	api := e.Group("/api/v1")
	if rateLimitRPS > 0 {
		api.Use(echoMw.RateLimiter(echoMw.NewRateLimiterMemoryStore(rate.Limit(rateLimitRPS))))
	}
	handler.NewEventHandler(svcs.events).RegisterRoutes(api.Group("/events"))
	handler.NewResourceHandler(svcs.resources).RegisterRoutes(api.Group("/resources"))
	handler.NewAllocationHandler(svcs.allocations).RegisterRoutes(api.Group("/allocations"))
	handler.NewReportHandler(svcs.reports).RegisterRoutes(api.Group("/reports"))

	return e
}
