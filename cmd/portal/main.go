package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stripe/stripe-go/v82"

	"github.com/matiuskuma2/SMG-sub004/internal/pkg/cache"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/database"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/env"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/mailqueue"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")

	mailqueue.Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1 MiB; webhook payloads are small
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
