package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dokseo/dokseo/internal/pkg/middleware"
	"github.com/dokseo/dokseo/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
