package cron

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rgcouk/biglittle/controllers/provider"
	"github.com/rgcouk/biglittle/db"
	"github.com/rgcouk/biglittle/models"
	"github.com/rgcouk/biglittle/utils"
)

// Payments stay pending this long past their due date before the sweep
// marks them overdue.
const overdueGrace = 7 * 24 * time.Hour

// StartCronJobs initializes and starts the billing scheduler.
func StartCronJobs() {
	c := cron.New()

	// Overdue sweep every morning
	_, err := c.AddFunc("0 6 * * *", sweepOverduePayments)
	if err != nil {
		logrus.Fatalf("failed to add cron job: %v", err)
	}

	// Monthly payment generation on the 1st
	_, err = c.AddFunc("0 7 1 * *", generateMonthlyPayments)
	if err != nil {
		logrus.Fatalf("failed to add cron job: %v", err)
	}

	c.Start()
	logrus.Info("billing cron scheduler started")
}

// sweepOverduePayments marks pending payments past the grace window as
// overdue and emails the customer.
func sweepOverduePayments() {
	cutoff := time.Now().Add(-overdueGrace)

	var payments []models.Payment
	err := db.DB.Preload("Booking.Unit").Preload("Booking.Customer").
		Where("status = ? AND payment_date < ?", models.PaymentPending, cutoff).
		Find(&payments).Error
	if err != nil {
		logrus.WithError(err).Error("failed to fetch payments for overdue sweep")
		return
	}

	logrus.WithField("count", len(payments)).Info("overdue sweep")

	for i := range payments {
		p := &payments[i]
		if err := p.UpdateStatus(db.DB, models.PaymentOverdue); err != nil {
			logrus.WithError(err).WithField("payment_id", p.ID).Error("failed to mark payment overdue")
			continue
		}
		sendOverdueNotice(p)
	}
}

func sendOverdueNotice(p *models.Payment) {
	var user models.User
	if err := db.DB.Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.id = ?", p.Booking.CustomerID).
		First(&user).Error; err != nil {
		return
	}

	err := utils.SendOverdueNotice(user.Email, p.Booking.Customer.DisplayName,
		p.Booking.Unit.UnitNumber, float64(p.AmountPence)/100,
		p.PaymentDate.Format("2006-01-02"))
	if err != nil {
		logrus.WithError(err).WithField("payment_id", p.ID).Warn("failed to send overdue notice")
		return
	}
	logrus.WithField("payment_id", p.ID).Info("sent overdue notice")
}

// generateMonthlyPayments bills every active booking for the new month.
func generateMonthlyPayments() {
	created, err := provider.GeneratePaymentsForPeriod(db.DB, 0, time.Now())
	if err != nil {
		logrus.WithError(err).Error("monthly payment generation failed")
		return
	}
	logrus.WithField("created", created).Info("monthly payments generated")
}
