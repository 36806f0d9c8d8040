package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/controllers"
	"github.com/rgcouk/biglittle/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/verify", controllers.VerifyEmail)
	auth.Post("/refresh", controllers.RefreshToken)
	// Logout is deliberately public so signing out twice, or with an
	// already-dead token, still succeeds.
	auth.Post("/logout", controllers.Logout)

	// Protected routes
	auth.Get("/me", middleware.Protected(), controllers.Me)
}
