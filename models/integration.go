package models

import (
	"gorm.io/gorm"
)

// Integration is a provider-configured external service hookup (payment
// gateway, email, SMS). Only the record is stored; no outbound calls are
// made from this app.
type Integration struct {
	gorm.Model
	ProviderID uint   `json:"provider_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Config     string `json:"config"`
}

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.Status == "" {
		i.Status = "not_connected"
	}
	return nil
}
