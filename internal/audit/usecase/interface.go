// Package usecase defines business logic interfaces for the audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medvault/medvault/internal/audit/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
)

// EventRepository defines persistence operations for audit events.
// Implementations must support transaction-aware operations via context propagation.
type EventRepository interface {
	// Create stores a new audit event in the repository.
	Create(ctx context.Context, event *auditDomain.Event) error

	// List retrieves audit events ordered by created_at descending with
	// pagination and optional inclusive time-range filtering.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)
}

// EventUseCase defines business logic operations for the audit trail.
type EventUseCase interface {
	// Record persists one audit event. Generates a unique UUIDv7 identifier
	// and timestamp. The metadata parameter is optional and can be nil.
	Record(
		ctx context.Context,
		actorID uuid.UUID,
		action auditDomain.Action,
		entityType, fieldName string,
		success bool,
		metadata map[string]any,
	) error

	// List retrieves audit events ordered by created_at descending (newest
	// first) with pagination and optional time-based filtering. Both
	// boundaries are inclusive; nil means no filter.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)

	// DecryptAuditFunc adapts the use case into the callback consumed by the
	// field decryption path.
	DecryptAuditFunc() piiService.AuditFunc
}
