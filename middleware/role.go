package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
)

// RequireRole gates a route group by profile role. The role is always
// re-read from the database so out-of-band role changes take effect on the
// next request; the token's role claim is informational only.
func RequireRole(roleName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User ID not found in context",
			})
		}

		var profile models.Profile
		if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		if profile.Role != roleName {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have the required role to perform this action",
			})
		}

		c.Locals("profileID", profile.ID)
		c.Locals("profile", &profile)

		return c.Next()
	}
}
