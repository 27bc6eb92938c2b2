package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService unwraps a KMS-wrapped PII master key using gocloud.dev/secrets.
//
// When a KMS provider is configured, PII_MASTER_KEY holds the base64-encoded
// wrapped key blob instead of the raw hex key; the keeper decrypts it at
// startup and the plaintext key never appears in the environment.
type KMSService interface {
	// UnwrapMasterKey opens a keeper for the key URI and unwraps the wrapped
	// master key blob, returning the raw 32-byte key material.
	UnwrapMasterKey(ctx context.Context, keyURI, wrappedKey string) ([]byte, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// UnwrapMasterKey opens a secrets.Keeper for the configured provider
// (hashivault://, base64key://) and decrypts the wrapped key. The result
// must be exactly 32 bytes or the unwrap fails closed.
func (k *kmsService) UnwrapMasterKey(
	ctx context.Context,
	keyURI, wrappedKey string,
) ([]byte, error) {
	wrapped, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: wrapped master key must be base64", piiDomain.ErrInvalidKeySize)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer keeper.Close()

	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master key: %w", err)
	}

	if len(key) != piiDomain.KeySize {
		piiDomain.Zero(key)
		return nil, fmt.Errorf(
			"%w: unwrapped master key must be %d bytes, got %d",
			piiDomain.ErrInvalidKeySize,
			piiDomain.KeySize,
			len(key),
		)
	}

	return key, nil
}
