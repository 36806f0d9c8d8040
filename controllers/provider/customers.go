package provider

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/utils"
)

// CustomerRow summarises a customer renting on the caller's facilities.
type CustomerRow struct {
	ProfileID      uint      `json:"profile_id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	ActiveBookings int64     `json:"active_bookings"`
	MonthlyPence   int64     `json:"monthly_pence"`
	MonthlyPounds  float64   `json:"monthly_pounds"`
	Since          time.Time `json:"since"`
}

// ListCustomers returns the distinct customers with bookings on any of the
// caller's facilities, with their aggregate monthly spend.
func ListCustomers(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var rows []CustomerRow
	err = db.DB.Table("bookings").
		Select(`profiles.id AS profile_id, profiles.display_name, users.email,
			COUNT(CASE WHEN bookings.status = 'active' THEN 1 END) AS active_bookings,
			COALESCE(SUM(CASE WHEN bookings.status = 'active' THEN bookings.monthly_rate_pence ELSE 0 END), 0) AS monthly_pence,
			MIN(bookings.created_at) AS since`).
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Joins("JOIN profiles ON profiles.id = bookings.customer_id").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("facilities.provider_id = ? AND bookings.deleted_at IS NULL", pid).
		Group("profiles.id, profiles.display_name, users.email").
		Order("since").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch customers",
			Error:   err.Error(),
		})
	}

	for i := range rows {
		rows[i].MonthlyPounds = float64(rows[i].MonthlyPence) / 100
	}
	return c.JSON(rows)
}
