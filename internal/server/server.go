package server

import (
	"log"

	"finops-copilot-be/internal/bootstrap"
	"finops-copilot-be/internal/config"
	"finops-copilot-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Session cookie rides on whichever handler produces the response.
	app.Use(serverutils.SessionMiddleware())

	// Static: uploaded blobs and the SPA assets short-circuit before the API.
	app.Static("/uploads", cfg.Storage.UploadDir)
	app.Static("/", cfg.App.AssetsDir)

	// Routes
	registerRoutes(app, container)

	// Final fallback: unknown paths resolve against the asset dir and 404
	// from there, mirroring the asset-serving fallthrough.
	app.Use(func(ctx *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

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
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// registerRoutes wires the API sub-domains in dispatch order: chat, files,
// AI tools, then the real-time agent channel.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ChatController.RegisterRoutes(api)
	c.FileController.RegisterRoutes(api)
	c.AiToolController.RegisterRoutes(api)
	c.AgentController.RegisterRoutes(api)
}
