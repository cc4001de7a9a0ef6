package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/accounts/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, users *handlers.UsersHandler, health *handlers.HealthHandler, authMW fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the accounts service"})
	})

	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", health.Health)
	app.Get("/ready", health.Ready)

	u := app.Group("/users")
	u.Post("/register", users.Register)
	u.Post("/login", users.Login)
	u.Get("/all", authMW, users.ListAll)
}
