// Package service implements field-level PII protection: the authenticated
// encryption primitive, the envelope codec, and the entity-aware encryption
// and decryption orchestration on top of them.
package service

import (
	"context"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// KeyManager exposes raw authenticated-encrypt and authenticated-decrypt
// operations over the process master key.
type KeyManager interface {
	// Encrypt encrypts plaintext bound to the associated data. A fresh random
	// IV is generated internally on every call; callers can never supply one.
	Encrypt(plaintext, associatedData []byte) (ciphertext, iv, tag []byte, err error)

	// Decrypt verifies the tag and decrypts. It fails with ErrDecryptionFailed
	// on any tag, length, or associated-data mismatch and never returns
	// partial plaintext.
	Decrypt(ciphertext, iv, tag, associatedData []byte) ([]byte, error)
}

// FieldCodec converts between plaintext field values and their stored
// envelope representation.
type FieldCodec interface {
	// EncodeField encrypts one UTF-8 field value into serialized envelope bytes.
	EncodeField(plaintext string) ([]byte, error)

	// DecodeField parses and decrypts stored envelope bytes.
	DecodeField(stored []byte) (string, error)

	// DecodeFieldValue resolves a read-time field variant. The boolean reports
	// whether a value is present; an absent field is not an error.
	DecodeFieldValue(value piiDomain.FieldValue) (plaintext string, present bool, err error)
}

// Protector orchestrates encryption of configured PII fields on named entity types.
type Protector interface {
	// EncryptField encrypts one configured field. Requesting an unconfigured
	// field fails with ErrFieldNotConfigured.
	EncryptField(entityType piiDomain.EntityType, fieldName, plaintext string) ([]byte, error)

	// EncryptEntity encrypts every configured, non-empty field in the record.
	// All-or-nothing: any single failure aborts the whole operation.
	EncryptEntity(
		entityType piiDomain.EntityType,
		record map[string]string,
	) (map[string][]byte, error)
}

// AuditFunc reports a decrypt attempt on a sensitive field. Implementations
// are fire-and-forget: they must never block or fail the decrypt path.
type AuditFunc func(
	ctx context.Context,
	entityType piiDomain.EntityType,
	fieldName string,
	success bool,
	reason string,
)

// Decryptor reconstructs plaintext views of stored entities, tolerating
// per-field corruption without failing the whole read.
type Decryptor interface {
	// DecryptEntity resolves every field variant in the map. Failed fields are
	// omitted from the result (callers apply the masked fallback) and reported
	// through the audit callback.
	DecryptEntity(
		ctx context.Context,
		entityType piiDomain.EntityType,
		fields map[string]piiDomain.FieldValue,
	) map[string]string

	// DecryptEntityBatch applies DecryptEntity per entity, in parallel. The
	// result slice always matches the input in length and order.
	DecryptEntityBatch(
		ctx context.Context,
		entityType piiDomain.EntityType,
		entities []map[string]piiDomain.FieldValue,
	) []map[string]string
}
