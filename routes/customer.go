package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/controllers/customer"
	"github.com/rgcouk/biglittle/middleware"
	"github.com/rgcouk/biglittle/models"
)

// SetupCustomerRoutes configures the customer portal, gated on
// role=customer; providers get a 403.
func SetupCustomerRoutes(app *fiber.App) {
	group := app.Group("/customer", middleware.Protected(), middleware.RequireRole(models.RoleCustomer))

	group.Get("/dashboard", customer.GetPortalOverview)
	group.Get("/bookings", customer.ListBookings)
	group.Get("/bookings/:id", customer.GetBookingDetail)
	group.Post("/bookings/:id/end", customer.EndBooking)

	group.Get("/profile", customer.GetProfile)
	group.Patch("/profile", customer.UpdateProfile)
	group.Post("/profile/avatar", customer.UpdateAvatar)
}
