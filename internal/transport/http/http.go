package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lacarte/orderdesk/internal/service/models/order"
	"github.com/lacarte/orderdesk/internal/service/models/settings"
	"github.com/lacarte/orderdesk/internal/service/services/ordersvc"
	"github.com/lacarte/orderdesk/internal/service/services/slotsvc"
	createorder "github.com/lacarte/orderdesk/internal/transport/http/create_order"
	getsettings "github.com/lacarte/orderdesk/internal/transport/http/get_settings"
	listorders "github.com/lacarte/orderdesk/internal/transport/http/list_orders"
	orderhours "github.com/lacarte/orderdesk/internal/transport/http/order_hours"
	trackorder "github.com/lacarte/orderdesk/internal/transport/http/track_order"
	updatestatus "github.com/lacarte/orderdesk/internal/transport/http/update_status"
	"github.com/lacarte/orderdesk/pkg/http/middleware/trace"
	"github.com/lacarte/orderdesk/pkg/logger"
	"github.com/spf13/viper"
)

type orderService interface {
	CreateOrder(ctx context.Context, cmd ordersvc.CreateOrderCommand) (*order.Order, error)
	Transition(ctx context.Context, orderID int64, code int, changedBy, notes string) (*order.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*order.Order, error)
	GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

type slotService interface {
	GetOrderHours(ctx context.Context) (*slotsvc.OrderHours, error)
}

type settingsRepository interface {
	Get(ctx context.Context) (settings.Settings, error)
}

type HTTPTransport struct {
	server       *http.Server
	router       *chi.Mux
	orderSvc     orderService
	slotSvc      slotService
	settingsRepo settingsRepository
	wsHandler    http.Handler
}

func NewHTTPTransport(
	orderSvc orderService,
	slotSvc slotService,
	settingsRepo settingsRepository,
	wsHandler http.Handler,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:       server,
		router:       router,
		orderSvc:     orderSvc,
		slotSvc:      slotSvc,
		settingsRepo: settingsRepo,
		wsHandler:    wsHandler,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{orderID}", h.trackOrder)
		r.Get("/order-hours", h.orderHours)
		r.Get("/settings", h.getSettings)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.listOrders)
			r.Put("/orders/{orderID}/status", h.updateStatus)
		})
	})

	if h.wsHandler != nil {
		h.router.Method(http.MethodGet, "/ws", h.wsHandler)
	}
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) trackOrder(w http.ResponseWriter, r *http.Request) {
	trackorder.TrackOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) orderHours(w http.ResponseWriter, r *http.Request) {
	orderhours.OrderHours(w, r, h.slotSvc)
}

func (h *HTTPTransport) getSettings(w http.ResponseWriter, r *http.Request) {
	getsettings.GetSettings(w, r, h.settingsRepo)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
