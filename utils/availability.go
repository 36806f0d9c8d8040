package utils

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rgcouk/biglittle/models"
)

// CheckUnitAvailable reports whether a unit can take a new booking: the unit
// must be marked available and carry no active booking. Run inside the same
// transaction as the booking insert. On postgres the unit row is locked so
// two concurrent booking transactions serialize here; sqlite has no FOR
// UPDATE and serializes writers itself, and the partial unique index on
// bookings backstops both.
func CheckUnitAvailable(tx *gorm.DB, unitID uint) (bool, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var unit models.Unit
	if err := q.First(&unit, unitID).Error; err != nil {
		return false, err
	}
	if unit.Status != models.UnitAvailable {
		return false, nil
	}

	var activeCount int64
	err := tx.Model(&models.Booking{}).
		Where("unit_id = ? AND status = ?", unitID, models.BookingActive).
		Count(&activeCount).Error
	if err != nil {
		return false, err
	}
	return activeCount == 0, nil
}
