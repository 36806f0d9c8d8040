package provider

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

// PaymentRow is the billing-table shape: a payment joined with the names a
// provider needs to read it at a glance.
type PaymentRow struct {
	ID              uint                 `json:"id"`
	BookingID       uint                 `json:"booking_id"`
	AmountPence     int64                `json:"amount_pence"`
	AmountPounds    float64              `json:"amount_pounds"`
	PaymentDate     time.Time            `json:"payment_date"`
	PaymentMethod   string               `json:"payment_method"`
	Status          models.PaymentStatus `json:"status"`
	StripePaymentID string               `json:"stripe_payment_id"`
	UnitNumber      string               `json:"unit_number"`
	FacilityName    string               `json:"facility_name"`
	CustomerName    string               `json:"customer_name"`
}

// ListPayments returns all payments across the caller's facilities.
func ListPayments(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	var rows []PaymentRow
	err = db.DB.Table("payments").
		Select(`payments.id, payments.booking_id, payments.amount_pence, payments.payment_date,
			payments.payment_method, payments.status, payments.stripe_payment_id,
			units.unit_number, facilities.name AS facility_name, profiles.display_name AS customer_name`).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Joins("LEFT JOIN profiles ON profiles.id = bookings.customer_id").
		Where("facilities.provider_id = ? AND payments.deleted_at IS NULL", pid).
		Order("payments.payment_date DESC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch payments",
			Error:   err.Error(),
		})
	}

	for i := range rows {
		rows[i].AmountPounds = float64(rows[i].AmountPence) / 100
	}
	return c.JSON(rows)
}

// GenerateMonthlyPayments creates one pending payment per active booking on
// the caller's facilities for the current month, skipping bookings already
// billed for the period. The amount is the booking's snapshotted rate.
func GenerateMonthlyPayments(c *fiber.Ctx) error {
	pid, err := profileID(c)
	if err != nil {
		return err
	}

	created, err := GeneratePaymentsForPeriod(db.DB, pid, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to generate payments",
			Error:   err.Error(),
		})
	}

	audit(c, "generate_payments", "payment", 0, time.Now().Format("2006-01"))
	return c.JSON(fiber.Map{
		"generated": created,
		"period":    utils.MonthStart(time.Now()).Format("2006-01-02"),
	})
}

// GeneratePaymentsForPeriod is shared between the provider action and the
// monthly cron job. providerID zero means all providers.
func GeneratePaymentsForPeriod(tx *gorm.DB, providerID uint, now time.Time) (int, error) {
	periodStart := utils.MonthStart(now)
	periodEnd := utils.NextMonthStart(now)

	query := tx.Model(&models.Booking{}).
		Joins("JOIN units ON units.id = bookings.unit_id").
		Joins("JOIN facilities ON facilities.id = units.facility_id").
		Where("bookings.status = ? AND bookings.deleted_at IS NULL", models.BookingActive)
	if providerID != 0 {
		query = query.Where("facilities.provider_id = ?", providerID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return 0, err
	}

	created := 0
	for i := range bookings {
		var existing int64
		err := tx.Model(&models.Payment{}).
			Where("booking_id = ? AND payment_date >= ? AND payment_date < ?",
				bookings[i].ID, periodStart, periodEnd).
			Count(&existing).Error
		if err != nil {
			return created, err
		}
		if existing > 0 {
			continue
		}

		payment := models.Payment{
			BookingID:   bookings[i].ID,
			AmountPence: bookings[i].MonthlyRatePence,
			PaymentDate: periodStart,
			Status:      models.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return created, err
		}
		created++
	}

	logrus.WithFields(logrus.Fields{
		"provider": providerID,
		"period":   periodStart.Format("2006-01"),
		"created":  created,
	}).Info("monthly payments generated")
	return created, nil
}

// MarkPaymentPaid settles a pending or overdue payment, optionally
// recording the gateway reference and method.
func MarkPaymentPaid(c *fiber.Ctx) error {
	payment, err := ownedPayment(c, c.Params("id"))
	if err != nil {
		return err
	}

	var input struct {
		PaymentMethod   string `json:"payment_method"`
		StripePaymentID string `json:"stripe_payment_id"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.PaymentMethod != "" {
		payment.PaymentMethod = input.PaymentMethod
	}
	if input.StripePaymentID != "" {
		payment.StripePaymentID = input.StripePaymentID
	}
	if err := payment.UpdateStatus(db.DB, models.PaymentPaid); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	audit(c, "mark_paid", "payment", payment.ID, payment.PaymentMethod)
	return c.JSON(payment)
}

// MarkPaymentFailed flags a payment the gateway bounced.
func MarkPaymentFailed(c *fiber.Ctx) error {
	payment, err := ownedPayment(c, c.Params("id"))
	if err != nil {
		return err
	}

	if err := payment.UpdateStatus(db.DB, models.PaymentFailed); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	audit(c, "mark_failed", "payment", payment.ID, "")
	return c.JSON(payment)
}

// ownedPayment loads a payment and checks it belongs to one of the caller's
// facilities.
func ownedPayment(c *fiber.Ctx, paymentID string) (*models.Payment, error) {
	pid, err := profileID(c)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := db.DB.Preload("Booking.Unit.Facility").First(&payment, paymentID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "payment not found")
	}
	if payment.Booking.Unit.Facility.ProviderID != pid {
		return nil, fiber.NewError(fiber.StatusForbidden, "payment belongs to another provider")
	}
	return &payment, nil
}
