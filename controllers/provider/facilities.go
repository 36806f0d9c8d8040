package provider

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

var validate = validator.New()

// profileID pulls the provider profile id set by the RequireRole middleware.
func profileID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals("profileID").(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "profile not found in context")
	}
	return id, nil
}

// ownedFacility loads a facility and checks it belongs to the caller.
func ownedFacility(c *fiber.Ctx, facilityID string) (*models.Facility, error) {
	pid, err := profileID(c)
	if err != nil {
		return nil, err
	}
	var facility models.Facility
	if err := db.DB.First(&facility, facilityID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "facility not found")
	}
	if facility.ProviderID != pid {
		return nil, fiber.NewError(fiber.StatusForbidden, "facility belongs to another provider")
	}
	return &facility, nil
}

type FacilityInput struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Postcode    string `json:"postcode" validate:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Description string `json:"description"`
}

// ListFacilities returns the caller's facilities with their units.
func ListFacilities(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var facilities []models.Facility
	if err := db.DB.Preload("Units").Where("provider_id = ?", pid).Find(&facilities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch facilities",
			Error:   err.Error(),
		})
	}
	return c.JSON(facilities)
}

// CreateFacility is the onboarding step: a provider's first (or another)
// facility.
func CreateFacility(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	input := new(FacilityInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid facility payload",
			Error:   err.Error(),
		})
	}

	facility := models.Facility{
		ProviderID:  pid,
		Name:        input.Name,
		Address:     input.Address,
		Postcode:    input.Postcode,
		Phone:       input.Phone,
		Email:       input.Email,
		Description: input.Description,
	}
	if err := db.DB.Create(&facility).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create facility",
			Error:   err.Error(),
		})
	}

	audit(c, "create", "facility", facility.ID, facility.Name)
	return c.Status(fiber.StatusCreated).JSON(facility)
}

// UpdateFacility mutates the settings-form fields.
func UpdateFacility(c *fiber.Ctx) error {
	facility, err := ownedFacility(c, c.Params("id"))
	if err != nil {
		return err
	}

	input := new(FacilityInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid facility payload",
			Error:   err.Error(),
		})
	}

	facility.Name = input.Name
	facility.Address = input.Address
	facility.Postcode = input.Postcode
	facility.Phone = input.Phone
	facility.Email = input.Email
	facility.Description = input.Description
	if err := db.DB.Save(facility).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update facility",
			Error:   err.Error(),
		})
	}

	audit(c, "update", "facility", facility.ID, facility.Name)
	return c.JSON(facility)
}

// DeleteFacility removes a facility with no units left in it.
func DeleteFacility(c *fiber.Ctx) error {
	facility, err := ownedFacility(c, c.Params("id"))
	if err != nil {
		return err
	}

	var unitCount int64
	db.DB.Model(&models.Unit{}).Where("facility_id = ?", facility.ID).Count(&unitCount)
	if unitCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Facility still has units; delete or move them first",
		})
	}

	if err := db.DB.Delete(facility).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete facility",
			Error:   err.Error(),
		})
	}

	audit(c, "delete", "facility", facility.ID, facility.Name)
	return c.SendStatus(fiber.StatusNoContent)
}

// audit records a provider mutation; failures are logged, never surfaced.
func audit(c *fiber.Ctx, action, entity string, entityID uint, detail string) {
	pid, ok := c.Locals("profileID").(uint)
	if !ok {
		return
	}
	if err := models.RecordAudit(db.DB, pid, action, entity, entityID, detail); err != nil {
		logrus.WithError(err).Warn("failed to record audit entry")
	}
}
