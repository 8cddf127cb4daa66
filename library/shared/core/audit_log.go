package core

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is written by every command in the same transaction as its changes.
type AuditLog struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	SubjectType string    `json:"subjectType"`
	SubjectID   uuid.UUID `json:"subjectId"`
	At          time.Time `json:"at"`
}

func (a AuditLog) EntityType() string  { return AuditLogEntityType }
func (a AuditLog) EntityID() uuid.UUID { return a.ID }

// NewAuditLog builds an AuditLog entry with a fresh identity about the entity subjectType/subjectID.
func NewAuditLog(action, subjectType string, subjectID uuid.UUID, at time.Time) AuditLog {
	return AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		At:          at,
	}
}
