package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
	PaymentFailed  PaymentStatus = "failed"
)

type Payment struct {
	gorm.Model
	BookingID     uint          `json:"booking_id"`
	Booking       Booking       `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	AmountPence   int64         `json:"amount_pence"`
	PaymentDate   time.Time     `json:"payment_date"`
	PaymentMethod string        `json:"payment_method"`
	Status        PaymentStatus `json:"status"`
	// Opaque reference from the payment gateway; never interpreted here.
	StripePaymentID string  `json:"stripe_payment_id"`
	AmountPounds    float64 `json:"amount_pounds" gorm:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return nil
}

func (p *Payment) AfterFind(tx *gorm.DB) (err error) {
	p.AmountPounds = float64(p.AmountPence) / 100
	return
}

// UpdateStatus enforces the payment lifecycle: pending may become paid,
// overdue or failed; overdue may become paid or failed; paid and failed are
// terminal.
func (p *Payment) UpdateStatus(tx *gorm.DB, newStatus PaymentStatus) error {
	switch p.Status {
	case PaymentPending:
		if newStatus != PaymentPaid && newStatus != PaymentOverdue && newStatus != PaymentFailed {
			return fmt.Errorf("invalid transition from pending to %s", newStatus)
		}
	case PaymentOverdue:
		if newStatus != PaymentPaid && newStatus != PaymentFailed {
			return fmt.Errorf("invalid transition from overdue to %s", newStatus)
		}
	case PaymentPaid, PaymentFailed:
		return fmt.Errorf("no transitions allowed from %s", p.Status)
	}
	p.Status = newStatus
	return tx.Save(p).Error
}
