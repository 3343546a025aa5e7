package router

import (
	"net/http"

	"github.com/erp/invoicelock/internal/infrastructure/logger"
	"github.com/erp/invoicelock/internal/interfaces/http/dto"
	"github.com/erp/invoicelock/internal/interfaces/http/handler"
	"github.com/erp/invoicelock/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
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
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// MetricsExporter exposes HTTP metrics collection and scraping
type MetricsExporter interface {
	GinMiddleware() gin.HandlerFunc
	Handler() http.Handler
}

// EngineConfig configures the gin engine shared by every route
type EngineConfig struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	TrustedProxies []string
	MaxBodyBytes   int64
	// Metrics is optional; when set /metrics is served
	Metrics MetricsExporter
	// Health is optional; when set /health and /health/ready are served
	Health *handler.HealthHandler
}

// NewEngine creates a gin engine with the middleware chain, health and
// metrics endpoint installed. API routes are added with NewRouter.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = middleware.DefaultMaxBodyBytes
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.TracingWithConfig(cfg.Tracing),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.GinMiddleware())
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.Use(
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.Actor(),
		middleware.SpanAttributes(),
	)

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health.Live)
		engine.GET("/health/ready", cfg.Health.Ready)
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
	})

	return engine, nil
}
