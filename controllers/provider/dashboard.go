package provider

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
)

// GetDashboardOverview returns the headline numbers for the provider
// dashboard: unit occupancy, active bookings, recurring revenue and
// outstanding balances.
func GetDashboardOverview(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var statistics struct {
		TotalFacilities  int64     `json:"total_facilities"`
		TotalUnits       int64     `json:"total_units"`
		AvailableUnits   int64     `json:"available_units"`
		OccupiedUnits    int64     `json:"occupied_units"`
		MaintenanceUnits int64     `json:"maintenance_units"`
		ActiveBookings   int64     `json:"active_bookings"`
		MonthlyRevenue   float64   `json:"monthly_revenue_pounds"`
		OutstandingOwed  float64   `json:"outstanding_pounds"`
		OverdueCount     int64     `json:"overdue_count"`
		LastUpdated      time.Time `json:"last_updated"`
	}

	db.DB.Model(&models.Facility{}).Where("provider_id = ?", pid).Count(&statistics.TotalFacilities)

	db.DB.Model(&models.Unit{}).
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ?", pid).
		Count(&statistics.TotalUnits)
	db.DB.Model(&models.Unit{}).
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND units.status = ?", pid, models.UnitAvailable).
		Count(&statistics.AvailableUnits)

	db.DB.Model(&models.Unit{}).
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND units.status = ?", pid, models.UnitOccupied).
		Count(&statistics.OccupiedUnits)
	db.DB.Model(&models.Unit{}).
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND units.status = ?", pid, models.UnitMaintenance).
		Count(&statistics.MaintenanceUnits)

	bookingQuery := db.DB.Model(&models.Booking{}).
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND bookings.status = ?", pid, models.BookingActive)
	bookingQuery.Count(&statistics.ActiveBookings)

	type sumResult struct {
		Total int64
	}
	var revenue sumResult
	db.DB.Table("bookings").
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND bookings.status = ? AND bookings.deleted_at IS NULL", pid, models.BookingActive).
		Select("COALESCE(SUM(bookings.monthly_rate_pence), 0) AS total").
		Scan(&revenue)
	statistics.MonthlyRevenue = float64(revenue.Total) / 100

	var outstanding sumResult
	db.DB.Table("payments").
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND payments.status IN ? AND payments.deleted_at IS NULL",
			pid, []models.PaymentStatus{models.PaymentPending, models.PaymentOverdue}).
		Select("COALESCE(SUM(payments.amount_pence), 0) AS total").
		Scan(&outstanding)
	statistics.OutstandingOwed = float64(outstanding.Total) / 100

	db.DB.Model(&models.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ? AND payments.status = ?", pid, models.PaymentOverdue).
		Count(&statistics.OverdueCount)

	statistics.LastUpdated = time.Now()
	return c.JSON(statistics)
}

// GetRecentBookings returns the latest bookings across the caller's
// facilities for the dashboard activity feed.
func GetRecentBookings(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	limit := 5
	if c.Query("limit") != "" {
		parsedLimit := c.QueryInt("limit")
		if parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	var bookings []models.Booking
	err = db.DB.Preload("Unit").Preload("Customer").
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("facilities.provider_id = ?", pid).
		Order("bookings.created_at DESC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch recent bookings",
		})
	}

	return c.JSON(bookings)
}
