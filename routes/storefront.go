package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/controllers"
)

// SetupStorefrontRoutes configures the public, unauthenticated facility
// browsing routes.
func SetupStorefrontRoutes(app *fiber.App) {
	storefront := app.Group("/storefront")
	storefront.Get("/facilities", controllers.ListPublicFacilities)
	storefront.Get("/facilities/:facilityId", controllers.GetPublicFacility)
}
