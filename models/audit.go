package models

import (
	"gorm.io/gorm"
)

// AuditEntry records a provider-side mutation for the audit log page.
type AuditEntry struct {
	gorm.Model
	ActorProfileID uint   `json:"actor_profile_id"`
	Action         string `json:"action"`
	Entity         string `json:"entity"`
	EntityID       uint   `json:"entity_id"`
	Detail         string `json:"detail"`
}

// RecordAudit is best-effort: a failed audit write is logged by callers but
// never fails the underlying action.
func RecordAudit(tx *gorm.DB, actorProfileID uint, action, entity string, entityID uint, detail string) error {
	entry := AuditEntry{
		ActorProfileID: actorProfileID,
		Action:         action,
		Entity:         entity,
		EntityID:       entityID,
		Detail:         detail,
	}
	return tx.Create(&entry).Error
}
