package provider

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

type IntegrationInput struct {
	Kind   string `json:"kind" validate:"required,oneof=stripe email sms"`
	Status string `json:"status" validate:"omitempty,oneof=not_connected connected disabled"`
	Config string `json:"config"`
}

// ListIntegrations returns the caller's integration records. These are
// configuration stubs; no outbound calls happen from this app.
func ListIntegrations(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var integrations []models.Integration
	if err := db.DB.Where("provider_id = ?", pid).Find(&integrations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch integrations",
			Error:   err.Error(),
		})
	}
	return c.JSON(integrations)
}

func CreateIntegration(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	input := new(IntegrationInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid integration payload",
			Error:   err.Error(),
		})
	}

	integration := models.Integration{
		ProviderID: pid,
		Kind:       input.Kind,
		Status:     input.Status,
		Config:     input.Config,
	}
	if err := db.DB.Create(&integration).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create integration",
			Error:   err.Error(),
		})
	}

	audit(c, "create", "integration", integration.ID, integration.Kind)
	return c.Status(fiber.StatusCreated).JSON(integration)
}

func UpdateIntegration(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var integration models.Integration
	if err := db.DB.First(&integration, c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "integration not found")
	}
	if integration.ProviderID != pid {
		return fiber.NewError(fiber.StatusForbidden, "integration belongs to another provider")
	}

	input := new(IntegrationInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid integration payload",
			Error:   err.Error(),
		})
	}

	integration.Kind = input.Kind
	if input.Status != "" {
		integration.Status = input.Status
	}
	integration.Config = input.Config
	if err := db.DB.Save(&integration).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update integration",
			Error:   err.Error(),
		})
	}

	audit(c, "update", "integration", integration.ID, integration.Kind)
	return c.JSON(integration)
}

// ListAuditLog returns the caller's audit trail, newest first.
func ListAuditLog(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	limit := 50
	if c.Query("limit") != "" {
		parsedLimit := c.QueryInt("limit")
		if parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	var entries []models.AuditEntry
	err = db.DB.Where("actor_profile_id = ?", pid).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch audit log",
			Error:   err.Error(),
		})
	}
	return c.JSON(entries)
}
