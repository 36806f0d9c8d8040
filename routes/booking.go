package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/controllers"
	"github.com/rgcouk/biglittle/middleware"
	"github.com/rgcouk/biglittle/models"
)

// SetupBookingRoutes configures the direct booking flow and the booking
// wizard. Wizard routes are public: anonymous visitors can walk the steps
// and get an account created at confirmation.
func SetupBookingRoutes(app *fiber.App) {
	// Wizard routes first so "/bookings/wizard" never falls into the
	// "/bookings/:id" parameter.
	wizard := app.Group("/bookings/wizard")
	wizard.Post("/", controllers.StartWizard)
	wizard.Get("/:id", controllers.GetWizard)
	wizard.Post("/:id/next", controllers.AdvanceWizard)
	wizard.Post("/:id/back", controllers.BackWizard)
	wizard.Post("/:id/confirm", controllers.ConfirmWizard)
	wizard.Delete("/:id", controllers.CloseWizard)

	bookings := app.Group("/bookings")
	bookings.Post("/", middleware.Protected(), middleware.RequireRole(models.RoleCustomer), controllers.CreateBooking)
	bookings.Get("/:id", middleware.Protected(), controllers.GetBooking)
}
