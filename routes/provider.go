package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/controllers/provider"
	"github.com/rgcouk/biglittle/middleware"
	"github.com/rgcouk/biglittle/models"
)

// SetupProviderRoutes configures the provider dashboard surface. Everything
// here is gated on role=provider; customers get a 403.
func SetupProviderRoutes(app *fiber.App) {
	group := app.Group("/provider", middleware.Protected(), middleware.RequireRole(models.RoleProvider))

	// Facilities (onboarding + settings)
	group.Get("/facilities", provider.ListFacilities)
	group.Post("/facilities", provider.CreateFacility)
	group.Patch("/facilities/:id", provider.UpdateFacility)
	group.Delete("/facilities/:id", provider.DeleteFacility)

	// Units
	group.Get("/facilities/:facilityId/units", provider.ListUnits)
	group.Post("/facilities/:facilityId/units", provider.CreateUnit)
	group.Patch("/units/:id", provider.UpdateUnit)
	group.Patch("/units/:id/status", provider.SetUnitStatus)
	group.Delete("/units/:id", provider.DeleteUnit)

	// Billing
	group.Get("/payments", provider.ListPayments)
	group.Post("/payments/generate", provider.GenerateMonthlyPayments)
	group.Post("/payments/:id/paid", provider.MarkPaymentPaid)
	group.Post("/payments/:id/failed", provider.MarkPaymentFailed)

	// Customers + analytics
	group.Get("/customers", provider.ListCustomers)
	group.Get("/dashboard", provider.GetDashboardOverview)
	group.Get("/dashboard/recent", provider.GetRecentBookings)

	// Customization
	group.Get("/integrations", provider.ListIntegrations)
	group.Post("/integrations", provider.CreateIntegration)
	group.Patch("/integrations/:id", provider.UpdateIntegration)
	group.Get("/audit", provider.ListAuditLog)
}
