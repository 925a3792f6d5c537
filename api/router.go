package api

import (
	"net/http"

	"jewelry/api/middleware"
	"jewelry/config"

	"github.com/gin-gonic/gin"
)

// ControllerRegister is implemented by every controller mounted under /api/v1.
type ControllerRegister interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Route is mounted on the engine root, outside /api/v1.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

type Router struct {
	engine       *gin.Engine
	config       *config.Config
	controllers  []ControllerRegister
	customRoutes []Route
}

// NewRouter builds the engine with the global middleware chain. extra
// middleware runs after rate limiting.
func NewRouter(
	cfg *config.Config,
	controllers []ControllerRegister,
	extra []gin.HandlerFunc,
	customRoutes []Route,
) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Order matters: the request ID must exist before anything logs.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware("global", &cfg.Server.RateLimit))
	engine.Use(extra...)

	return &Router{
		engine:       engine,
		config:       cfg,
		controllers:  controllers,
		customRoutes: customRoutes,
	}
}

func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	for _, c := range r.controllers {
		c.RegisterRoutes(apiGroup)
	}

	for _, route := range r.customRoutes {
		r.engine.Handle(route.Method, route.Path, route.Handler)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
