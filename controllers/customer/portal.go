package customer

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
)

// profileID pulls the customer profile id set by the RequireRole middleware.
func profileID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals("profileID").(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "profile not found in context")
	}
	return id, nil
}

// GetPortalOverview returns the customer dashboard: active bookings with
// their units and the next payment due.
func GetPortalOverview(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var bookings []models.Booking
	err = db.DB.Preload("Unit.Facility").
		Where("customer_id = ? AND status = ?", pid, models.BookingActive).
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch bookings",
		})
	}

	var nextPayment models.Payment
	hasNext := db.DB.
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.customer_id = ? AND payments.status IN ?",
			pid, []models.PaymentStatus{models.PaymentPending, models.PaymentOverdue}).
		Order("payments.payment_date").
		First(&nextPayment).Error == nil

	resp := fiber.Map{
		"active_bookings": bookings,
		"last_updated":    time.Now(),
	}
	if hasNext {
		resp["next_payment"] = nextPayment
	}
	return c.JSON(resp)
}
