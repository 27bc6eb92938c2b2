package domain

import (
	"github.com/medvault/medvault/internal/errors"
)

// PII protection error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for encryption failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrInvalidKeySize indicates the master key does not decode to exactly
	// 32 bytes. Raised eagerly at construction, before any cryptographic
	// operation; the process fails closed.
	ErrInvalidKeySize = errors.Wrap(errors.ErrConfiguration, "invalid key size")

	// ErrNotInitialized indicates a protection method was called before the
	// key manager was constructed with valid key material.
	ErrNotInitialized = errors.Wrap(errors.ErrConfiguration, "encryption not initialized")

	// ErrMalformedEnvelope indicates stored bytes do not match the expected
	// envelope structure. Typically pre-migration legacy data or a corrupted
	// row; recoverable per-field via masked fallback.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrDecryptionFailed indicates the envelope is well-formed but
	// authentication failed: tampering, wrong key, or corrupted storage.
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers. Always audit-logged.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrFieldNotConfigured indicates a caller asked to encrypt a field that is
	// not registered as PII for the entity type. This is a programmer error and
	// fails loudly; silently storing plaintext is never acceptable.
	ErrFieldNotConfigured = errors.Wrap(errors.ErrInvalidInput, "field not configured for encryption")
)
