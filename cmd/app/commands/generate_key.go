package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"gocloud.dev/secrets"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// RunGenerateKey generates a cryptographically secure 256-bit PII master key.
//
// Without KMS parameters the key is printed hex-encoded for direct use as
// PII_MASTER_KEY. With a KMS provider and key URI, the key is wrapped by the
// KMS before output so the plaintext key never lands in the environment; the
// server unwraps it at startup.
//
// Key material is zeroed from memory after encoding.
func RunGenerateKey(ctx context.Context, out io.Writer, kmsProvider, kmsKeyURI string) error {
	key := make([]byte, piiDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer piiDomain.Zero(key)

	if kmsProvider == "" {
		fmt.Fprintln(out, "# PII master key configuration")
		fmt.Fprintln(out, "# Copy this environment variable to your .env file or secrets manager")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "PII_MASTER_KEY=\"%s\"\n", hex.EncodeToString(key))
		return nil
	}

	if kmsKeyURI == "" {
		return fmt.Errorf(
			"--kms-key-uri is required with --kms-provider\n\nFor local development, use:\n  --kms-provider=localsecrets --kms-key-uri=\"base64key://<32-byte-base64-key>\"\n\nFor production, use:\n  --kms-provider=hashivault --kms-key-uri=\"hashivault://<key-name>\"",
		)
	}

	keeper, err := secrets.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Fprintf(out, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to wrap master key with KMS: %w", err)
	}

	fmt.Fprintln(out, "# PII master key configuration (KMS mode)")
	fmt.Fprintln(out, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	fmt.Fprintf(out, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Fprintf(out, "PII_MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(wrapped))

	return nil
}
