package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lacarte/orderdesk/internal/dal/postgres"
	"github.com/lacarte/orderdesk/internal/dal/rabbitmq"
	catalogrepo "github.com/lacarte/orderdesk/internal/dal/repositories/catalog/postgres"
	outboxrepo "github.com/lacarte/orderdesk/internal/dal/repositories/outbox/postgres"
	settingsrepo "github.com/lacarte/orderdesk/internal/dal/repositories/settings/postgres"
	slotrepo "github.com/lacarte/orderdesk/internal/dal/repositories/timeslot/postgres"
	"github.com/lacarte/orderdesk/internal/otel"
	"github.com/lacarte/orderdesk/internal/service/services/ordersvc"
	"github.com/lacarte/orderdesk/internal/service/services/slotsvc"
	httptransport "github.com/lacarte/orderdesk/internal/transport/http"
	"github.com/lacarte/orderdesk/internal/transport/ws"
	outboxworker "github.com/lacarte/orderdesk/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	slotSvc        *slotsvc.SlotService
	transport      *httptransport.HTTPTransport
	hub            *ws.Hub
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	catalogRepo := catalogrepo.NewPostgresCatalogRepository(postgresClient.Pool())
	settingsRepo := settingsrepo.NewPostgresSettingsRepository(postgresClient.Pool())
	slotRepo := slotrepo.NewPostgresSlotRepository(postgresClient.Pool())
	outboxRepo := outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool())

	hub := ws.NewHub()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalogRepository(catalogRepo),
		ordersvc.WithSettingsRepository(settingsRepo),
		ordersvc.WithSlotRepository(slotRepo),
		ordersvc.WithBroadcaster(hub),
	)

	slotSvc := slotsvc.MustNewSlotService(
		slotsvc.WithSlotRepository(slotRepo),
		slotsvc.WithSettingsRepository(settingsRepo),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, slotSvc, settingsRepo, ws.NewHandler(hub))
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(outboxRepo, rabbitClient)

	return &App{
		orderSvc:       orderSvc,
		slotSvc:        slotSvc,
		transport:      transport,
		hub:            hub,
		outboxWorker:   worker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.hub.CloseAll()
	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
