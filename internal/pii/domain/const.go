package domain

const (
	// KeySize is the required master key size in bytes (256 bits).
	KeySize = 32

	// IVSize is the initialization vector size in bytes (128 bits).
	// Every encryption generates a fresh random IV; reuse under the same
	// key breaks GCM, so IVs are never caller-supplied.
	IVSize = 16

	// TagSize is the GCM authentication tag size in bytes (128 bits).
	TagSize = 16

	// AssociatedData is the fixed, non-secret associated data bound into every
	// encrypt/decrypt call. It is versioned: changing it invalidates all
	// previously encrypted data, so any change must mint a new version suffix.
	AssociatedData = "medvault-pii-v1"

	// EncryptedFieldSuffix marks the stored column holding a field's envelope.
	// A plaintext field "email" is persisted as "email_encrypted".
	EncryptedFieldSuffix = "_encrypted"

	// MaskedValue is the placeholder shown for any field that failed to decrypt.
	MaskedValue = "[Encrypted]"
)
