package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/medvault/medvault/internal/errors"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// maxBatchConcurrency bounds the number of entities decrypted in parallel.
const maxBatchConcurrency = 8

// PIIDecryptionService implements Decryptor: it reconstructs plaintext views
// of stored entities and degrades per field on corruption, so one bad field
// never blocks visibility into the rest of a record.
type PIIDecryptionService struct {
	codec  FieldCodec
	audit  AuditFunc
	logger *slog.Logger
}

// NewDecryptionService creates a decryption service. The audit callback may
// be nil, in which case decrypt attempts are only logged.
func NewDecryptionService(
	codec FieldCodec,
	audit AuditFunc,
	logger *slog.Logger,
) *PIIDecryptionService {
	return &PIIDecryptionService{codec: codec, audit: audit, logger: logger}
}

// DecryptEntity resolves every field variant in the map to plaintext.
//
// Per-field failure semantics: a field that fails with ErrMalformedEnvelope
// or ErrDecryptionFailed is omitted from the result — callers substitute the
// masked fallback — and the failure is reported via the audit callback and
// the logger rather than returned, so a corrupted row still renders. Absent
// fields are skipped silently; they were never populated.
func (s *PIIDecryptionService) DecryptEntity(
	ctx context.Context,
	entityType piiDomain.EntityType,
	fields map[string]piiDomain.FieldValue,
) map[string]string {
	result := make(map[string]string, len(fields))

	for fieldName, value := range fields {
		plaintext, present, err := s.codec.DecodeFieldValue(value)
		if err != nil {
			s.reportFailure(ctx, entityType, fieldName, err)
			continue
		}
		if !present {
			continue
		}

		result[fieldName] = plaintext
		s.reportSuccess(ctx, entityType, fieldName, value)
	}

	return result
}

// DecryptEntityBatch decrypts a batch of entities in parallel.
//
// Results are gathered by index: output order and count always match the
// input regardless of completion order, since callers zip decrypted results
// against original IDs positionally. One entity's total failure does not
// abort the batch; its entry is simply an empty map the caller masks.
func (s *PIIDecryptionService) DecryptEntityBatch(
	ctx context.Context,
	entityType piiDomain.EntityType,
	entities []map[string]piiDomain.FieldValue,
) []map[string]string {
	results := make([]map[string]string, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)

	for i, fields := range entities {
		g.Go(func() error {
			results[i] = s.DecryptEntity(gctx, entityType, fields)
			return nil
		})
	}

	// Workers never return errors; per-field failures degrade in place.
	_ = g.Wait()

	return results
}

// reportSuccess audit-logs a successful decrypt of an encrypted field.
// Legacy plaintext mirrors are not decrypt events and are not reported.
func (s *PIIDecryptionService) reportSuccess(
	ctx context.Context,
	entityType piiDomain.EntityType,
	fieldName string,
	value piiDomain.FieldValue,
) {
	if value.State() != piiDomain.FieldEncrypted {
		return
	}
	if s.audit != nil {
		s.audit(ctx, entityType, fieldName, true, "")
	}
}

// reportFailure logs and audit-reports a failed decrypt. Failures here are
// security relevant (tampering, wrong key, corrupted storage) and must reach
// the audit trail, but must never fail the read path.
func (s *PIIDecryptionService) reportFailure(
	ctx context.Context,
	entityType piiDomain.EntityType,
	fieldName string,
	err error,
) {
	reason := "decryption_failed"
	if apperrors.Is(err, piiDomain.ErrMalformedEnvelope) {
		reason = "malformed_envelope"
	}

	if s.logger != nil {
		s.logger.Warn("pii field decryption failed",
			slog.String("entity_type", string(entityType)),
			slog.String("field", fieldName),
			slog.String("reason", reason),
		)
	}
	if s.audit != nil {
		s.audit(ctx, entityType, fieldName, false, reason)
	}
}
