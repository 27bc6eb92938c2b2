package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// auditRecorder captures audit callbacks for assertions. The batch path runs
// entities in parallel, so recording is mutex-guarded.
type auditRecorder struct {
	mu     sync.Mutex
	events []auditEvent
}

type auditEvent struct {
	entityType piiDomain.EntityType
	fieldName  string
	success    bool
	reason     string
}

func (r *auditRecorder) record(
	_ context.Context,
	entityType piiDomain.EntityType,
	fieldName string,
	success bool,
	reason string,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, auditEvent{entityType, fieldName, success, reason})
}

func (r *auditRecorder) failures() []auditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []auditEvent
	for _, e := range r.events {
		if !e.success {
			out = append(out, e)
		}
	}
	return out
}

func newTestDecryptor(t *testing.T) (*PIIDecryptionService, *EnvelopeFieldCodec, *auditRecorder) {
	t.Helper()
	codec := newTestCodec(t)
	recorder := &auditRecorder{}
	return NewDecryptionService(codec, recorder.record, nil), codec, recorder
}

func encodeOrFail(t *testing.T, codec *EnvelopeFieldCodec, value string) []byte {
	t.Helper()
	stored, err := codec.EncodeField(value)
	require.NoError(t, err)
	return stored
}

func corruptTag(t *testing.T, stored []byte) []byte {
	t.Helper()
	env, err := piiDomain.UnmarshalEnvelope(stored)
	require.NoError(t, err)
	env.Tag[0] ^= 0xFF
	corrupted, err := json.Marshal(env)
	require.NoError(t, err)
	return corrupted
}

func TestDecryptEntity(t *testing.T) {
	decryptor, codec, recorder := newTestDecryptor(t)
	ctx := context.Background()

	fields := map[string]piiDomain.FieldValue{
		"first_name": piiDomain.EncryptedField(encodeOrFail(t, codec, "Jane")),
		"last_name":  piiDomain.EncryptedField(corruptTag(t, encodeOrFail(t, codec, "Doe"))),
		"email":      piiDomain.PlaintextField("jane@example.com"),
		"phone":      piiDomain.AbsentField(),
		"address":    piiDomain.EncryptedField([]byte("12,34,56")),
	}

	result := decryptor.DecryptEntity(ctx, piiDomain.EntityPatient, fields)

	// Successes present, failures and absents omitted.
	assert.Equal(t, "Jane", result["first_name"])
	assert.Equal(t, "jane@example.com", result["email"])
	assert.NotContains(t, result, "last_name")
	assert.NotContains(t, result, "phone")
	assert.NotContains(t, result, "address")

	failures := recorder.failures()
	require.Len(t, failures, 2)
	reasons := map[string]string{}
	for _, f := range failures {
		reasons[f.fieldName] = f.reason
	}
	assert.Equal(t, "decryption_failed", reasons["last_name"])
	assert.Equal(t, "malformed_envelope", reasons["address"])
}

func TestDecryptEntityNilAudit(t *testing.T) {
	codec := newTestCodec(t)
	decryptor := NewDecryptionService(codec, nil, nil)

	fields := map[string]piiDomain.FieldValue{
		"email": piiDomain.EncryptedField([]byte("garbage")),
	}

	// Must not panic without an audit callback.
	result := decryptor.DecryptEntity(context.Background(), piiDomain.EntityUser, fields)
	assert.Empty(t, result)
}

func TestDecryptEntityBatch(t *testing.T) {
	decryptor, codec, _ := newTestDecryptor(t)
	ctx := context.Background()

	// Batch of 3 where entity #2's envelope is corrupted.
	entities := []map[string]piiDomain.FieldValue{
		{"first_name": piiDomain.EncryptedField(encodeOrFail(t, codec, "Alice"))},
		{"first_name": piiDomain.EncryptedField(corruptTag(t, encodeOrFail(t, codec, "Bob")))},
		{"first_name": piiDomain.EncryptedField(encodeOrFail(t, codec, "Carol"))},
	}

	results := decryptor.DecryptEntityBatch(ctx, piiDomain.EntityPatient, entities)

	// Output length and order match input; the failed entry degrades in place.
	require.Len(t, results, len(entities))
	assert.Equal(t, "Alice", results[0]["first_name"])
	assert.NotContains(t, results[1], "first_name")
	assert.Equal(t, "Carol", results[2]["first_name"])
}

func TestDecryptEntityBatchPreservesOrder(t *testing.T) {
	decryptor, codec, _ := newTestDecryptor(t)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	entities := make([]map[string]piiDomain.FieldValue, len(names))
	for i, name := range names {
		entities[i] = map[string]piiDomain.FieldValue{
			"first_name": piiDomain.EncryptedField(encodeOrFail(t, codec, name)),
		}
	}

	results := decryptor.DecryptEntityBatch(ctx, piiDomain.EntityPatient, entities)

	require.Len(t, results, len(names))
	for i, name := range names {
		assert.Equal(t, name, results[i]["first_name"], "result %d out of order", i)
	}
}

func TestDecryptEntityBatchEmpty(t *testing.T) {
	decryptor, _, _ := newTestDecryptor(t)

	results := decryptor.DecryptEntityBatch(context.Background(), piiDomain.EntityPatient, nil)
	assert.Empty(t, results)
}
