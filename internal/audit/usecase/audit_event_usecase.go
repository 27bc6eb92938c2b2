package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medvault/medvault/internal/audit/domain"
	apperrors "github.com/medvault/medvault/internal/errors"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
)

// eventUseCase implements EventUseCase for recording and querying audit events.
type eventUseCase struct {
	eventRepo EventRepository
	logger    *slog.Logger
}

// Record persists one audit event. Generates a unique UUIDv7 identifier and
// timestamp. The metadata parameter is optional and can be nil.
func (e *eventUseCase) Record(
	ctx context.Context,
	actorID uuid.UUID,
	action auditDomain.Action,
	entityType, fieldName string,
	success bool,
	metadata map[string]any,
) error {
	event := &auditDomain.Event{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		FieldName:  fieldName,
		Success:    success,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// List retrieves audit events ordered by created_at descending (newest first)
// with pagination and optional time-based filtering. Both boundaries are
// inclusive; nil means no filter. All timestamps are expected in UTC.
func (e *eventUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	events, err := e.eventRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}

	return events, nil
}

// DecryptAuditFunc adapts the use case into the fire-and-forget callback the
// decryption path expects. Persistence failures are logged and swallowed so a
// broken audit store can never break reads.
func (e *eventUseCase) DecryptAuditFunc() piiService.AuditFunc {
	return func(
		ctx context.Context,
		entityType piiDomain.EntityType,
		fieldName string,
		success bool,
		reason string,
	) {
		var metadata map[string]any
		if reason != "" {
			metadata = map[string]any{"reason": reason}
		}
		err := e.Record(
			ctx,
			actorIDFromContext(ctx),
			auditDomain.ActionDecryptField,
			string(entityType),
			fieldName,
			success,
			metadata,
		)
		if err != nil {
			e.logger.ErrorContext(ctx, "failed to record decrypt audit event",
				slog.String("entity_type", string(entityType)),
				slog.String("field_name", fieldName),
				slog.String("error", err.Error()),
			)
		}
	}
}

type actorIDKey struct{}

// WithActorID returns a context carrying the authenticated principal for
// audit attribution.
func WithActorID(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

func actorIDFromContext(ctx context.Context) uuid.UUID {
	if actorID, ok := ctx.Value(actorIDKey{}).(uuid.UUID); ok {
		return actorID
	}
	return uuid.Nil
}

// NewEventUseCase creates a new EventUseCase with the provided dependencies.
func NewEventUseCase(eventRepo EventRepository, logger *slog.Logger) EventUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventUseCase{
		eventRepo: eventRepo,
		logger:    logger,
	}
}
