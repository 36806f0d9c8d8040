package models

import (
	"gorm.io/gorm"
)

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

const (
	SizeSmall      = "Small"
	SizeMedium     = "Medium"
	SizeLarge      = "Large"
	SizeExtraLarge = "Extra Large"
)

type Unit struct {
	gorm.Model
	FacilityID        uint       `json:"facility_id"`
	Facility          Facility   `json:"facility,omitempty" gorm:"foreignKey:FacilityID"`
	UnitNumber        string     `json:"unit_number"`
	SizeCategory      string     `json:"size_category"`
	LengthM           float64    `json:"length_m"`
	WidthM            float64    `json:"width_m"`
	HeightM           float64    `json:"height_m"`
	MonthlyPricePence int64      `json:"monthly_price_pence"`
	FloorLevel        int        `json:"floor_level"`
	Status            UnitStatus `json:"status"`
	Features          []string   `json:"features" gorm:"serializer:json"`
	// Display price, not persisted
	MonthlyPricePounds float64 `json:"monthly_price_pounds" gorm:"-"`
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.Status == "" {
		u.Status = UnitAvailable
	}
	return nil
}

func (u *Unit) AfterFind(tx *gorm.DB) (err error) {
	u.MonthlyPricePounds = float64(u.MonthlyPricePence) / 100
	return
}

// ValidUnitStatus reports whether s is one of the three provider-settable
// statuses. Status is set manually by provider action, never derived from
// booking state.
func ValidUnitStatus(s UnitStatus) bool {
	return s == UnitAvailable || s == UnitOccupied || s == UnitMaintenance
}
