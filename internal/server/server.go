package server

import (
	"context"
	"time"

	"flcs-chatbot-be/internal/bootstrap"
	"flcs-chatbot-be/internal/config"
	"flcs-chatbot-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             64 * 1024,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (no-op unless OTEL_ENABLED)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	for _, l := range defaultRateLimiters(cfg) {
		app.Use(l)
	}

	registerRoutes(app, cfg, container)

	if cfg.App.StaticDir != "" {
		app.Static("/", cfg.App.StaticDir)
	}

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("HTTP", "Server is running", map[string]interface{}{
		"addr": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	session := serverutils.SessionMiddleware(serverutils.SessionConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.IsProduction(),
	}, c.Logger)

	c.ChatbotController.RegisterRoutes(api, chatRateLimiter(cfg), session)
	c.AnalyticsController.RegisterRoutes(api)
	c.HealthController.RegisterRoutes(api)
}

// chatRateLimiter allows RateLimitMax chat requests per client IP per window.
func chatRateLimiter(cfg *config.Config) fiber.Handler {
	return ipLimiter(cfg.App.RateLimitMax, cfg.App.RateLimitWindow)
}

// defaultRateLimiters apply to every route: HourlyLimit per hour and
// DailyLimit per day, each per client IP.
func defaultRateLimiters(cfg *config.Config) []fiber.Handler {
	var handlers []fiber.Handler
	if cfg.App.HourlyLimit > 0 {
		handlers = append(handlers, ipLimiter(cfg.App.HourlyLimit, time.Hour))
	}
	if cfg.App.DailyLimit > 0 {
		handlers = append(handlers, ipLimiter(cfg.App.DailyLimit, 24*time.Hour))
	}
	return handlers
}

func ipLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: serverutils.ClientIP,
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests, please slow down."})
		},
	})
}
