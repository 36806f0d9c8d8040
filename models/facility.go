package models

import (
	"gorm.io/gorm"
)

type Facility struct {
	gorm.Model
	ProviderID  uint    `json:"provider_id"`
	Provider    Profile `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Postcode    string  `json:"postcode"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
	Units       []Unit  `json:"units,omitempty" gorm:"foreignKey:FacilityID"`
}

// PublicFacility is the storefront view of a facility. Phone and email are
// deliberately absent so unauthenticated visitors never see them.
type PublicFacility struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Postcode       string `json:"postcode"`
	Description    string `json:"description"`
	TotalUnits     int64  `json:"total_units"`
	AvailableUnits int64  `json:"available_units"`
}

func (f *Facility) Public() PublicFacility {
	return PublicFacility{
		ID:          f.ID,
		Name:        f.Name,
		Address:     f.Address,
		Postcode:    f.Postcode,
		Description: f.Description,
	}
}
