// Package router assembles the gin engine and the versioned API routes.
package router

import (
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar registers a set of routes on the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup creates the /api/<version> group and registers every registrar on it
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig selects the middleware of the engine
type EngineConfig struct {
	ServiceName    string
	Mode           string
	TracingEnabled bool
	Profiling      bool
	MaxBodyBytes   int64
	// Meter is nil when metrics export is off
	Meter metric.Meter
}

// NewEngine returns a gin engine with the API middleware chain installed.
// Order matters: the span must exist before the request logger copies its
// trace ID, and the error marker must wrap the handlers.
func NewEngine(cfg EngineConfig, log *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		logger.GinMiddleware(log),
		middleware.RequestIDAttribute(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(cfg.Profiling),
		middleware.Secure(),
	)
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	engine.NoRoute(middleware.NoRoute())
	return engine
}

// PurchasingRoutes registers the order, estimate, item and variance endpoints
type PurchasingRoutes struct {
	Orders    *handler.PurchaseOrderHandler
	Estimates *handler.EstimateHandler
	Items     *handler.ItemHandler
}

// RegisterRoutes implements RouteRegistrar
func (p PurchasingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", p.Orders.Create)
	orders.GET("", p.Orders.List)
	orders.GET("/with-totals", p.Orders.ListWithTotals)
	orders.GET("/:id", p.Orders.Get)
	orders.PUT("/:id/status", p.Orders.UpdateStatus)
	orders.POST("/:id/reconcile", p.Orders.Reconcile)
	orders.DELETE("/:id", p.Orders.Delete)

	orders.POST("/:id/estimates", p.Estimates.Create)
	orders.GET("/:id/estimates", p.Estimates.ListForOrder)
	orders.POST("/:id/items", p.Items.Create)
	orders.GET("/:id/items", p.Items.ListForOrder)
	orders.GET("/:id/variance", p.Items.Variance)

	estimates := rg.Group("/estimates")
	estimates.PUT("/:id", p.Estimates.Update)
	estimates.DELETE("/:id", p.Estimates.Delete)
}

// InventoryRoutes registers the inventory, ledger and drift endpoints
type InventoryRoutes struct {
	Inventory *handler.InventoryHandler
	Drift     *handler.DriftHandler
}

// RegisterRoutes implements RouteRegistrar
func (i InventoryRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	inv := rg.Group("/inventory")
	inv.GET("", i.Inventory.List)
	inv.GET("/movements", i.Inventory.ListMovements)
	inv.POST("/adjustments", i.Inventory.Adjust)
	inv.POST("/drift-checks", i.Drift.Run)
	inv.GET("/drift-reports", i.Drift.ListReports)
	inv.GET("/:locationId/:variantId", i.Inventory.Get)
	inv.PUT("/:locationId/:variantId/reorder-level", i.Inventory.SetReorderLevel)
}

// HealthRoutes registers GET /health on the API group
type HealthRoutes struct {
	Health *handler.HealthHandler
}

// RegisterRoutes implements RouteRegistrar
func (h HealthRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health.Health)
}
