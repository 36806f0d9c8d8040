package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

type CreateBookingInput struct {
	UnitID    uint   `json:"unit_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
}

// CreateBooking is the direct booking flow for a signed-in customer. The
// unit's current monthly price is snapshotted onto the booking; later price
// changes never touch existing bookings.
func CreateBooking(c *fiber.Ctx) error {
	profileID, ok := c.Locals("profileID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Profile not found in context",
		})
	}

	input := new(CreateBookingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid booking payload",
			Error:   err.Error(),
		})
	}

	startDate, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "start_date must be YYYY-MM-DD",
			Error:   err.Error(),
		})
	}
	var endDate *time.Time
	if input.EndDate != "" {
		parsed, err := utils.ParseDate(input.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "end_date must be YYYY-MM-DD",
				Error:   err.Error(),
			})
		}
		endDate = &parsed
	}

	booking, err := bookUnit(input.UnitID, profileID, startDate, endDate)
	if err != nil {
		status := fiber.StatusInternalServerError
		if err == errUnitUnavailable {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(utils.ErrorResponse{
			Message: "Failed to create booking",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

var errUnitUnavailable = errors.New("unit is not available")

// isUniqueViolation matches the postgres and sqlite unique-index error
// messages; neither driver exposes a shared typed error here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// bookUnit creates a booking with the price snapshot inside one
// transaction. customerID may be zero for wizard bookings where account
// creation failed; the booking still lands.
func bookUnit(unitID, customerID uint, startDate time.Time, endDate *time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		available, err := utils.CheckUnitAvailable(tx, unitID)
		if err != nil {
			return err
		}
		if !available {
			return errUnitUnavailable
		}

		var unit models.Unit
		if err := tx.First(&unit, unitID).Error; err != nil {
			return err
		}

		booking = models.Booking{
			UnitID:           unitID,
			CustomerID:       customerID,
			StartDate:        startDate,
			EndDate:          endDate,
			MonthlyRatePence: unit.MonthlyPricePence,
			Status:           models.BookingActive,
		}
		if err := tx.Create(&booking).Error; err != nil {
			// A concurrent booking that committed first trips the
			// one-active-booking-per-unit index.
			if isUniqueViolation(err) {
				return errUnitUnavailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"unit_id":    unitID,
		"customer":   customerID,
	}).Info("booking created")
	return &booking, nil
}

// GetBooking returns a booking with its unit and facility, visible to the
// booking's customer or the facility's provider.
func GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")

	var booking models.Booking
	if err := db.DB.Preload("Unit.Facility").Preload("Customer").Preload("Payments").
		First(&booking, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Booking not found",
			Error:   err.Error(),
		})
	}

	userID, _ := c.Locals("userID").(uint)
	var profile models.Profile
	if err := db.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	if booking.CustomerID != profile.ID && booking.Unit.Facility.ProviderID != profile.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have access to this booking",
		})
	}

	return c.JSON(booking)
}
