package service

import (
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// EnvelopeFieldCodec implements FieldCodec over a KeyManager, binding every
// operation to the fixed associated-data constant.
type EnvelopeFieldCodec struct {
	keys KeyManager
}

// NewFieldCodec creates a field codec using the provided key manager.
func NewFieldCodec(keys KeyManager) *EnvelopeFieldCodec {
	return &EnvelopeFieldCodec{keys: keys}
}

// EncodeField UTF-8 encodes the plaintext, encrypts it with the shared
// associated-data constant, and packages ciphertext, iv and tag into the
// serialized envelope form. Empty values are never encoded; callers skip
// them before reaching the codec.
func (c *EnvelopeFieldCodec) EncodeField(plaintext string) ([]byte, error) {
	ciphertext, iv, tag, err := c.keys.Encrypt([]byte(plaintext), []byte(piiDomain.AssociatedData))
	if err != nil {
		return nil, err
	}

	env := &piiDomain.Envelope{
		Ciphertext: ciphertext,
		IV:         iv,
		Tag:        tag,
	}
	return env.Marshal()
}

// DecodeField parses the serialized envelope and decrypts it.
//
// Parse failures (legacy raw values, the comma-separated byte dump format,
// garbage) return ErrMalformedEnvelope; a well-formed envelope whose tag does
// not verify returns ErrDecryptionFailed. Both are distinguishable so callers
// can degrade gracefully instead of crashing the read path.
func (c *EnvelopeFieldCodec) DecodeField(stored []byte) (string, error) {
	env, err := piiDomain.UnmarshalEnvelope(stored)
	if err != nil {
		return "", err
	}

	plaintext, err := c.keys.Decrypt(env.Ciphertext, env.IV, env.Tag, []byte(piiDomain.AssociatedData))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DecodeFieldValue resolves a read-time field variant to its plaintext.
//
// Absent fields return ("", false, nil) — no value is not an error. Legacy
// plaintext mirrors are returned as-is. Encrypted fields go through
// DecodeField with its full error taxonomy.
func (c *EnvelopeFieldCodec) DecodeFieldValue(
	value piiDomain.FieldValue,
) (string, bool, error) {
	switch value.State() {
	case piiDomain.FieldAbsent:
		return "", false, nil
	case piiDomain.FieldPlaintext:
		return value.Plaintext(), true, nil
	default:
		plaintext, err := c.DecodeField(value.Stored())
		if err != nil {
			return "", false, err
		}
		return plaintext, true, nil
	}
}
