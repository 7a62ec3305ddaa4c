package router

import "github.com/gofiber/fiber/v2"

// Router installs one group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}
