package customer

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

// ListBookings returns all of the caller's bookings, newest first.
func ListBookings(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var bookings []models.Booking
	err = db.DB.Preload("Unit.Facility").Preload("Payments").
		Where("customer_id = ?", pid).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch bookings",
			Error:   err.Error(),
		})
	}
	return c.JSON(bookings)
}

// GetBookingDetail returns one of the caller's bookings with payments.
func GetBookingDetail(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var booking models.Booking
	err = db.DB.Preload("Unit.Facility").Preload("Payments").
		Where("id = ? AND customer_id = ?", c.Params("id"), pid).
		First(&booking).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Booking not found",
			Error:   err.Error(),
		})
	}
	return c.JSON(booking)
}

// EndBooking moves an active booking to ended, stamping today as the end
// date. Already-ended bookings are rejected by the model transition.
func EndBooking(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var booking models.Booking
	err = db.DB.Where("id = ? AND customer_id = ?", c.Params("id"), pid).
		First(&booking).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Booking not found",
			Error:   err.Error(),
		})
	}

	if err := booking.End(db.DB, time.Now()); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(booking)
}
