package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"

	"github.com/rgcouk/biglittle/cron"
	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/redis"
	"github.com/rgcouk/biglittle/routes"
	"github.com/rgcouk/biglittle/session"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := fiber.New()
	db.Init()
	redis.InitRedis()
	session.Init()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("BigLittle Storage API")
	})

	routes.SetupAuthRoutes(app)
	routes.SetupStorefrontRoutes(app)
	routes.SetupBookingRoutes(app)
	routes.SetupProviderRoutes(app)
	routes.SetupCustomerRoutes(app)

	cron.StartCronJobs()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	if err := app.Listen(":" + port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
