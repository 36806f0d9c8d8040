package customer

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

// GetProfile returns the caller's profile.
func GetProfile(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var profile models.Profile
	if err := db.DB.First(&profile, pid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	return c.JSON(profile)
}

// UpdateProfile edits the display name. Role is fixed at sign-up and not
// editable here.
func UpdateProfile(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var input struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "display_name is required",
		})
	}

	var profile models.Profile
	if err := db.DB.First(&profile, pid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}

	profile.DisplayName = input.DisplayName
	if err := db.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}
	return c.JSON(profile)
}

// UpdateAvatar uploads a new profile picture and stores the returned URL.
func UpdateAvatar(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "avatar file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read avatar file",
		})
	}
	defer file.Close()

	url, err := utils.UploadAvatar(file, fmt.Sprintf("profile_%d", pid))
	if err != nil {
		logrus.WithError(err).Error("avatar upload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to upload avatar",
			Error:   err.Error(),
		})
	}

	var profile models.Profile
	if err := db.DB.First(&profile, pid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	profile.AvatarURL = url
	if err := db.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	return c.JSON(profile)
}
