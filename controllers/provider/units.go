package provider

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

type UnitInput struct {
	UnitNumber        string   `json:"unit_number" validate:"required"`
	SizeCategory      string   `json:"size_category" validate:"required,oneof=Small Medium Large 'Extra Large'"`
	LengthM           float64  `json:"length_m" validate:"gt=0"`
	WidthM            float64  `json:"width_m" validate:"gt=0"`
	HeightM           float64  `json:"height_m" validate:"gt=0"`
	MonthlyPricePence int64    `json:"monthly_price_pence" validate:"gt=0"`
	FloorLevel        int      `json:"floor_level"`
	Features          []string `json:"features"`
}

// ListUnits returns every unit in one of the caller's facilities.
func ListUnits(c *fiber.Ctx) error {
	facility, err := ownedFacility(c, c.Params("facilityId"))
	if err != nil {
		return err
	}

	var units []models.Unit
	if err := db.DB.Where("facility_id = ?", facility.ID).Order("unit_number").Find(&units).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch units",
			Error:   err.Error(),
		})
	}
	return c.JSON(units)
}

func CreateUnit(c *fiber.Ctx) error {
	facility, err := ownedFacility(c, c.Params("facilityId"))
	if err != nil {
		return err
	}

	input := new(UnitInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid unit payload",
			Error:   err.Error(),
		})
	}

	unit := models.Unit{
		FacilityID:        facility.ID,
		UnitNumber:        input.UnitNumber,
		SizeCategory:      input.SizeCategory,
		LengthM:           input.LengthM,
		WidthM:            input.WidthM,
		HeightM:           input.HeightM,
		MonthlyPricePence: input.MonthlyPricePence,
		FloorLevel:        input.FloorLevel,
		Features:          input.Features,
	}
	if err := db.DB.Create(&unit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create unit",
			Error:   err.Error(),
		})
	}

	audit(c, "create", "unit", unit.ID, unit.UnitNumber)
	return c.Status(fiber.StatusCreated).JSON(unit)
}

// UpdateUnit edits unit fields. Price changes apply to future bookings
// only; existing bookings keep their snapshotted rate.
func UpdateUnit(c *fiber.Ctx) error {
	unit, err := ownedUnit(c, c.Params("id"))
	if err != nil {
		return err
	}

	input := new(UnitInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid unit payload",
			Error:   err.Error(),
		})
	}

	unit.UnitNumber = input.UnitNumber
	unit.SizeCategory = input.SizeCategory
	unit.LengthM = input.LengthM
	unit.WidthM = input.WidthM
	unit.HeightM = input.HeightM
	unit.MonthlyPricePence = input.MonthlyPricePence
	unit.FloorLevel = input.FloorLevel
	unit.Features = input.Features
	if err := db.DB.Save(unit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update unit",
			Error:   err.Error(),
		})
	}

	audit(c, "update", "unit", unit.ID, unit.UnitNumber)
	return c.JSON(unit)
}

// SetUnitStatus is the manual status control; occupancy is never derived
// from bookings automatically.
func SetUnitStatus(c *fiber.Ctx) error {
	unit, err := ownedUnit(c, c.Params("id"))
	if err != nil {
		return err
	}

	var input struct {
		Status models.UnitStatus `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if !models.ValidUnitStatus(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be available, occupied or maintenance",
		})
	}

	unit.Status = input.Status
	if err := db.DB.Save(unit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update unit status",
			Error:   err.Error(),
		})
	}

	audit(c, "set_status", "unit", unit.ID, string(input.Status))
	return c.JSON(unit)
}

// DeleteUnit refuses to remove a unit with active bookings: billing history
// must stay reachable, so the booking has to be ended first.
func DeleteUnit(c *fiber.Ctx) error {
	unit, err := ownedUnit(c, c.Params("id"))
	if err != nil {
		return err
	}

	var activeBookings int64
	db.DB.Model(&models.Booking{}).
		Where("unit_id = ? AND status = ?", unit.ID, models.BookingActive).
		Count(&activeBookings)
	if activeBookings > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("unit has %d active booking(s); end them before deleting", activeBookings),
		})
	}

	if err := db.DB.Delete(unit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete unit",
			Error:   err.Error(),
		})
	}

	audit(c, "delete", "unit", unit.ID, unit.UnitNumber)
	return c.SendStatus(fiber.StatusNoContent)
}

// ownedUnit loads a unit and checks its facility belongs to the caller.
func ownedUnit(c *fiber.Ctx, unitID string) (*models.Unit, error) {
	pid, err := profileID(c)
	if err != nil {
		return nil, err
	}

	var unit models.Unit
	if err := db.DB.Preload("Facility").First(&unit, unitID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "unit not found")
	}
	if unit.Facility.ProviderID != pid {
		return nil, fiber.NewError(fiber.StatusForbidden, "unit belongs to another provider")
	}
	return &unit, nil
}
