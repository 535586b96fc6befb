package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexpay/payhook/app/controllers"
	"github.com/nexpay/payhook/internal/pkg/constants"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Provider deliveries arrive here. No rate limiter: providers burst on
	// redelivery and a 429 only triggers more retries.
	app.Post(constants.WebhookRoute, controllers.HandleProviderWebhook)

	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
