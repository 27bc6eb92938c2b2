package app

import (
	"context"
	"fmt"

	"github.com/medvault/medvault/internal/pii/clientside"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
)

// KeyManager returns the master key manager for field encryption.
func (c *Container) KeyManager() (piiService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// KMSService returns the KMS unwrap service.
func (c *Container) KMSService() piiService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = piiService.NewKMSService()
	})
	return c.kmsService
}

// FieldCodec returns the envelope field codec.
func (c *Container) FieldCodec() (piiService.FieldCodec, error) {
	var err error
	c.fieldCodecInit.Do(func() {
		c.fieldCodec, err = c.initFieldCodec()
		if err != nil {
			c.initErrors["fieldCodec"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCodec"]; exists {
		return nil, storedErr
	}
	return c.fieldCodec, nil
}

// Protector returns the PII protection service used on all write paths.
func (c *Container) Protector() (piiService.Protector, error) {
	var err error
	c.protectorInit.Do(func() {
		c.protector, err = c.initProtector()
		if err != nil {
			c.initErrors["protector"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["protector"]; exists {
		return nil, storedErr
	}
	return c.protector, nil
}

// Decryptor returns the PII decryption service used on all read paths. Every
// decrypt attempt is reported to the audit trail and the metrics recorder.
func (c *Container) Decryptor() (piiService.Decryptor, error) {
	var err error
	c.decryptorInit.Do(func() {
		c.decryptor, err = c.initDecryptor()
		if err != nil {
			c.initErrors["decryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["decryptor"]; exists {
		return nil, storedErr
	}
	return c.decryptor, nil
}

// PayloadCipher returns the boundary cipher for client-encrypted payloads, or
// nil when CLIENT_ENCRYPTION_SECRET is not configured.
func (c *Container) PayloadCipher() (*clientside.PayloadCipher, error) {
	var err error
	c.payloadCipherInit.Do(func() {
		if c.config.ClientEncryptionSecret == "" {
			return
		}
		c.payloadCipher, err = clientside.NewPayloadCipher(c.config.ClientEncryptionSecret)
		if err != nil {
			err = fmt.Errorf("failed to create payload cipher: %w", err)
			c.initErrors["payloadCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["payloadCipher"]; exists {
		return nil, storedErr
	}
	return c.payloadCipher, nil
}

// initKeyManager creates the master key manager. With a KMS provider
// configured, PII_MASTER_KEY holds a wrapped key blob that is unwrapped at
// startup; otherwise it holds the hex-encoded key itself.
func (c *Container) initKeyManager() (piiService.KeyManager, error) {
	if c.config.KMSProvider != "" {
		key, err := c.KMSService().UnwrapMasterKey(
			context.Background(),
			c.config.KMSKeyURI,
			c.config.PIIMasterKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap master key: %w", err)
		}
		defer piiDomain.Zero(key)

		return piiService.NewKeyManagerFromBytes(key)
	}

	return piiService.NewKeyManager(c.config.PIIMasterKey)
}

// initFieldCodec creates the envelope field codec.
func (c *Container) initFieldCodec() (piiService.FieldCodec, error) {
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for field codec: %w", err)
	}
	return piiService.NewFieldCodec(keyManager), nil
}

// initProtector creates the protection service.
func (c *Container) initProtector() (piiService.Protector, error) {
	codec, err := c.FieldCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get field codec for protector: %w", err)
	}
	return piiService.NewProtectionService(codec, piiDomain.DefaultFieldRegistry()), nil
}

// initDecryptor creates the decryption service. The audit callback fans out
// to the audit trail and the metrics recorder.
func (c *Container) initDecryptor() (piiService.Decryptor, error) {
	codec, err := c.FieldCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get field codec for decryptor: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for decryptor: %w", err)
	}

	piiMetrics, err := c.PIIMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get pii metrics for decryptor: %w", err)
	}

	auditFn := auditEventUseCase.DecryptAuditFunc()
	audit := func(
		ctx context.Context,
		entityType piiDomain.EntityType,
		fieldName string,
		success bool,
		reason string,
	) {
		auditFn(ctx, entityType, fieldName, success, reason)
		piiMetrics.RecordDecrypt(ctx, string(entityType), fieldName, success)
	}

	return piiService.NewDecryptionService(codec, audit, c.Logger()), nil
}
