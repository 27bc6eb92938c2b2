// Package clientside implements the boundary-side mirror of the PII envelope:
// profile-update payloads are encrypted before transmission as defense in
// depth against logging and proxy exposure, independent of transport TLS.
//
// The envelope schema is shared with the server-side field codec through
// pii/domain.Envelope — the two implementations are deliberately separate
// (they sit on opposite sides of a trust boundary) but must never drift in
// their serialized shape.
package clientside

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// hkdfInfo domain-separates the boundary key from any other use of the
// shared secret.
const hkdfInfo = "medvault-client-boundary-v1"

// PayloadCipher encrypts and decrypts whole request payloads using a
// boundary-side key. The key is structurally identical to the server master
// key (256-bit AES-GCM) but is distinct material; distribution of the shared
// secret between boundary and server is a collaborator concern.
type PayloadCipher struct {
	aead cipher.AEAD
}

// NewPayloadCipher derives the boundary key from the shared secret via
// HKDF-SHA256 and prepares the cipher. An empty secret is a configuration
// error: client payload protection cannot run unkeyed.
func NewPayloadCipher(sharedSecret string) (*PayloadCipher, error) {
	if sharedSecret == "" {
		return nil, piiDomain.ErrNotInitialized
	}

	key := make([]byte, piiDomain.KeySize)
	kdf := hkdf.New(sha256.New, []byte(sharedSecret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive boundary key: %w", err)
	}
	defer piiDomain.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, piiDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &PayloadCipher{aead: aead}, nil
}

// EncryptPayload serializes the object to canonical JSON bytes and produces
// one envelope over the whole blob. Field-level granularity is not needed at
// the boundary; the entire payload is a single ciphertext unit.
func (p *PayloadCipher) EncryptPayload(payload any) (*piiDomain.Envelope, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	iv := make([]byte, piiDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := p.aead.Seal(nil, iv, plaintext, []byte(piiDomain.AssociatedData))
	split := len(sealed) - piiDomain.TagSize

	return &piiDomain.Envelope{
		Ciphertext: sealed[:split],
		IV:         iv,
		Tag:        sealed[split:],
	}, nil
}

// DecryptPayload is the server-side counterpart: it verifies and decrypts a
// client-produced envelope and deserializes the payload into target.
func (p *PayloadCipher) DecryptPayload(env *piiDomain.Envelope, target any) error {
	if err := env.Validate(); err != nil {
		return err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := p.aead.Open(nil, env.IV, sealed, []byte(piiDomain.AssociatedData))
	if err != nil {
		return piiDomain.ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("%w: payload is not valid JSON", piiDomain.ErrMalformedEnvelope)
	}
	return nil
}
