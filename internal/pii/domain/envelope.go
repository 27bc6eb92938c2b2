// Package domain defines the core domain models for field-level PII protection.
// Sensitive field values are stored only in authenticated-encryption envelopes;
// the plaintext originals never reach persistent storage.
package domain

import (
	"encoding/json"
	"fmt"
)

// Envelope is the stored representation of one encrypted field value.
//
// The serialized form is a JSON object with exactly three members —
// ciphertext, iv and tag — each base64-encoded. This is the wire contract
// between encode and decode and must remain stable across versions: existing
// database rows depend on it. The client-side payload encryption uses the
// same schema, so both sides of the trust boundary share this one type.
//
// An envelope is only ever valid as a unit: all three members must be present
// and correctly sized, or decryption fails. There is no partial success.
type Envelope struct {
	// Ciphertext is the encrypted UTF-8 field value.
	Ciphertext []byte `json:"ciphertext"`
	// IV is the per-operation random initialization vector (16 bytes).
	IV []byte `json:"iv"`
	// Tag is the GCM authentication tag (16 bytes). It binds ciphertext and
	// associated data so any bit flip is detectable on decrypt.
	Tag []byte `json:"tag"`
}

// Validate checks the structural invariants of the envelope.
// Returns ErrMalformedEnvelope if any member is missing or mis-sized.
func (e *Envelope) Validate() error {
	if len(e.Ciphertext) == 0 {
		return fmt.Errorf("%w: missing ciphertext", ErrMalformedEnvelope)
	}
	if len(e.IV) != IVSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedEnvelope, IVSize, len(e.IV))
	}
	if len(e.Tag) != TagSize {
		return fmt.Errorf("%w: tag must be %d bytes, got %d", ErrMalformedEnvelope, TagSize, len(e.Tag))
	}
	return nil
}

// Marshal serializes the envelope to its stable storage representation.
func (e *Envelope) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return data, nil
}

// UnmarshalEnvelope parses stored bytes into an Envelope.
//
// Malformed bytes — legacy raw values, the historical comma-separated byte
// dump format, or plain garbage — return ErrMalformedEnvelope rather than an
// opaque parse error, so read paths can degrade to a masked fallback instead
// of crashing.
func UnmarshalEnvelope(stored []byte) (*Envelope, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedEnvelope)
	}

	var env Envelope
	if err := json.Unmarshal(stored, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}
