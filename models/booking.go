package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingActive BookingStatus = "active"
	BookingEnded  BookingStatus = "ended"
)

type Booking struct {
	gorm.Model
	UnitID     uint       `json:"unit_id"`
	Unit       Unit       `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	CustomerID uint       `json:"customer_id"`
	Customer   Profile    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date"` // nil = ongoing
	// Snapshotted from the unit at booking time; later unit price changes
	// never touch this value.
	MonthlyRatePence  int64         `json:"monthly_rate_pence"`
	Status            BookingStatus `json:"status"`
	Payments          []Payment     `json:"payments,omitempty" gorm:"foreignKey:BookingID"`
	MonthlyRatePounds float64       `json:"monthly_rate_pounds" gorm:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingActive
	}
	return nil
}

func (b *Booking) AfterFind(tx *gorm.DB) (err error) {
	b.MonthlyRatePounds = float64(b.MonthlyRatePence) / 100
	return
}

// End transitions an active booking to ended and stamps the end date.
func (b *Booking) End(tx *gorm.DB, at time.Time) error {
	if b.Status != BookingActive {
		return fmt.Errorf("no transitions allowed from %s", b.Status)
	}
	b.Status = BookingEnded
	b.EndDate = &at
	return tx.Save(b).Error
}
