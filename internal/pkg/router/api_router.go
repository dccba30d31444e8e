package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/matiuskuma2/SMG-sub004/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		// Webhook retries from the gateway must never be rate limited away.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/webhooks/payment/checkout" ||
				c.Path() == "/api/v1/webhooks/payment/invoice"
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	webhooks := v1.Group("/webhooks/payment")
	webhooks.Post("/checkout", controllers.HandleCheckoutWebhook)
	webhooks.Post("/invoice", controllers.HandleInvoiceWebhook)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
