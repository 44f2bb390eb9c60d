package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/observability"
)

// ServerOptions bundles everything NewServer wires together.
type ServerOptions struct {
	AppName    string
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// NewServer builds the fiber app with the middleware chain and routes.
func NewServer(opts ServerOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		ErrorHandler:          ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, opts.Metrics, opts.Middleware)
	opts.Routes.Metrics = opts.Metrics
	RegisterRoutes(app, opts.Routes)
	return app
}
