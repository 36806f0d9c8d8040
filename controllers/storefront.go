package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/redis"
	"github.com/rgcouk/biglittle/utils"
)

const (
	storefrontCacheKey = "storefront:facilities"
	storefrontCacheTTL = 60 * time.Second
)

// ListPublicFacilities returns the storefront view of every facility: safe
// fields plus unit counts, no phone or email. Cached in redis briefly since
// it's the busiest unauthenticated endpoint.
func ListPublicFacilities(c *fiber.Ctx) error {
	if redis.Available() {
		if cached, err := redis.Client.Get(redis.Ctx, storefrontCacheKey).Result(); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	var facilities []models.Facility
	if err := db.DB.Find(&facilities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch facilities",
			Error:   err.Error(),
		})
	}

	publics := make([]models.PublicFacility, 0, len(facilities))
	for i := range facilities {
		pub := facilities[i].Public()
		db.DB.Model(&models.Unit{}).Where("facility_id = ?", facilities[i].ID).Count(&pub.TotalUnits)
		db.DB.Model(&models.Unit{}).Where("facility_id = ? AND status = ?", facilities[i].ID, models.UnitAvailable).Count(&pub.AvailableUnits)
		publics = append(publics, pub)
	}

	if redis.Available() {
		if body, err := json.Marshal(publics); err == nil {
			if err := redis.Client.Set(redis.Ctx, storefrontCacheKey, body, storefrontCacheTTL).Err(); err != nil {
				logrus.WithError(err).Warn("failed to cache storefront listing")
			}
		}
	}

	return c.JSON(publics)
}

// GetPublicFacility returns one facility's storefront page: safe fields and
// its currently available units.
func GetPublicFacility(c *fiber.Ctx) error {
	id := c.Params("facilityId")

	var facility models.Facility
	if err := db.DB.First(&facility, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Facility not found",
			Error:   err.Error(),
		})
	}

	var units []models.Unit
	if err := db.DB.Where("facility_id = ? AND status = ?", facility.ID, models.UnitAvailable).
		Order("unit_number").Find(&units).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch units",
			Error:   err.Error(),
		})
	}

	pub := facility.Public()
	pub.AvailableUnits = int64(len(units))
	db.DB.Model(&models.Unit{}).Where("facility_id = ?", facility.ID).Count(&pub.TotalUnits)

	return c.JSON(fiber.Map{
		"facility": pub,
		"units":    units,
	})
}
