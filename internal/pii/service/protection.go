package service

import (
	"fmt"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// PIIProtectionService implements Protector: entity and field aware
// encryption orchestration over the field codec and registry.
type PIIProtectionService struct {
	codec    FieldCodec
	registry piiDomain.FieldRegistry
}

// NewProtectionService creates a protection service for the given codec and
// field registry.
func NewProtectionService(
	codec FieldCodec,
	registry piiDomain.FieldRegistry,
) *PIIProtectionService {
	return &PIIProtectionService{codec: codec, registry: registry}
}

// EncryptField encrypts one named field of the entity type.
//
// A field that is not registered as PII for the entity type is a programming
// error: it fails with ErrFieldNotConfigured instead of silently storing
// plaintext.
func (s *PIIProtectionService) EncryptField(
	entityType piiDomain.EntityType,
	fieldName, plaintext string,
) ([]byte, error) {
	if !s.registry.IsConfigured(entityType, fieldName) {
		return nil, fmt.Errorf(
			"%w: %s.%s",
			piiDomain.ErrFieldNotConfigured,
			entityType,
			fieldName,
		)
	}

	return s.codec.EncodeField(plaintext)
}

// EncryptEntity encrypts every configured, non-empty field present in the
// record, returning envelopes keyed by the encrypted column name
// ("<field>_encrypted"). Empty PII fields are omitted, not encoded.
//
// All-or-nothing: a record key that is not a configured PII field, or any
// single field's encryption failure, aborts the whole operation. Partial
// encryption of an entity is never an acceptable state.
func (s *PIIProtectionService) EncryptEntity(
	entityType piiDomain.EntityType,
	record map[string]string,
) (map[string][]byte, error) {
	encrypted := make(map[string][]byte, len(record))

	for fieldName, plaintext := range record {
		if !s.registry.IsConfigured(entityType, fieldName) {
			return nil, fmt.Errorf(
				"%w: %s.%s",
				piiDomain.ErrFieldNotConfigured,
				entityType,
				fieldName,
			)
		}

		if plaintext == "" {
			continue
		}

		stored, err := s.codec.EncodeField(plaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt %s.%s: %w", entityType, fieldName, err)
		}
		encrypted[fieldName+piiDomain.EncryptedFieldSuffix] = stored
	}

	return encrypted, nil
}
