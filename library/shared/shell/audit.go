package shell

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/library/shared/core"
)

// Audit stages an AuditLog entry, so it is committed together with the audited change.
func Audit(uow *entitystore.UnitOfWork, action, entityType string, entityID uuid.UUID, at time.Time) error {
	return entitystore.RepositoryFor[core.AuditLog](uow).Add(core.NewAuditLog(action, entityType, entityID, at))
}
