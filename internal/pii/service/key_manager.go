package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// MasterKeyManager implements the KeyManager interface using AES-256-GCM
// with a 128-bit IV and 128-bit authentication tag.
//
// The key is validated eagerly at construction and is immutable for the
// process lifetime; single-key operation only, rotation is handled outside
// this subsystem. Constructing a second manager with different material while
// readers hold the first is a caller error and is not guarded against here —
// construct once at startup, before serving requests.
//
// Thread safety: the cipher is stateless after construction and safe for
// concurrent use; each encryption generates its IV independently.
type MasterKeyManager struct {
	aead cipher.AEAD
}

// NewKeyManager creates a key manager from a hex-encoded 256-bit key.
//
// The key must decode to exactly 32 bytes. A missing or malformed key is a
// fatal configuration error: the constructor fails closed before any
// cryptographic operation can be attempted.
func NewKeyManager(hexKey string) (*MasterKeyManager, error) {
	if hexKey == "" {
		return nil, piiDomain.ErrNotInitialized
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: key must be hex-encoded", piiDomain.ErrInvalidKeySize)
	}
	defer piiDomain.Zero(key)

	return NewKeyManagerFromBytes(key)
}

// NewKeyManagerFromBytes creates a key manager from raw key material,
// typically the result of unwrapping a KMS-wrapped key. The key must be
// exactly 32 bytes; the caller retains ownership of the slice and may zero
// it after the call returns.
func NewKeyManagerFromBytes(key []byte) (*MasterKeyManager, error) {
	if len(key) != piiDomain.KeySize {
		return nil, fmt.Errorf(
			"%w: master key must be %d bytes, got %d",
			piiDomain.ErrInvalidKeySize,
			piiDomain.KeySize,
			len(key),
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, piiDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &MasterKeyManager{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM bound to the associated data.
//
// A unique 16-byte IV is randomly generated for each operation using
// crypto/rand. The authentication tag is returned separately from the
// ciphertext so the envelope can store all three members as distinct fields.
// Encrypting the same plaintext twice yields different ciphertexts because
// the IV differs.
func (m *MasterKeyManager) Encrypt(
	plaintext, associatedData []byte,
) (ciphertext, iv, tag []byte, err error) {
	iv = make([]byte, piiDomain.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	// Seal appends the tag to the ciphertext; split it off for the envelope.
	sealed := m.aead.Seal(nil, iv, plaintext, associatedData)
	split := len(sealed) - piiDomain.TagSize
	return sealed[:split], iv, sealed[split:], nil
}

// Decrypt verifies the authentication tag and decrypts the ciphertext.
//
// Fails with ErrDecryptionFailed if tag verification fails, if iv or tag
// lengths are wrong, or if the associated data differs from encryption time.
// No partial or garbage plaintext is ever returned.
func (m *MasterKeyManager) Decrypt(
	ciphertext, iv, tag, associatedData []byte,
) ([]byte, error) {
	if len(iv) != piiDomain.IVSize || len(tag) != piiDomain.TagSize {
		return nil, piiDomain.ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := m.aead.Open(nil, iv, sealed, associatedData)
	if err != nil {
		return nil, piiDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
