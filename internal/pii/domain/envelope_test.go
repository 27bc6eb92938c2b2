package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medvault/medvault/internal/errors"
)

func validEnvelope() *Envelope {
	return &Envelope{
		Ciphertext: []byte("some-ciphertext"),
		IV:         bytes.Repeat([]byte{0x01}, IVSize),
		Tag:        bytes.Repeat([]byte{0x02}, TagSize),
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := validEnvelope()

	stored, err := env.Marshal()
	require.NoError(t, err)

	parsed, err := UnmarshalEnvelope(stored)
	require.NoError(t, err)
	assert.Equal(t, env.Ciphertext, parsed.Ciphertext)
	assert.Equal(t, env.IV, parsed.IV)
	assert.Equal(t, env.Tag, parsed.Tag)
}

func TestEnvelopeWireFormat(t *testing.T) {
	// The serialized form is a JSON object with exactly the three named
	// members, base64-encoded. Stored rows depend on this shape.
	stored, err := validEnvelope().Marshal()
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(stored, &raw))
	require.Len(t, raw, 3)

	for _, key := range []string{"ciphertext", "iv", "tag"} {
		val, ok := raw[key]
		require.True(t, ok, "missing %q member", key)
		_, err := base64.StdEncoding.DecodeString(val)
		assert.NoError(t, err, "%q must be base64", key)
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Envelope)
	}{
		{"missing ciphertext", func(e *Envelope) { e.Ciphertext = nil }},
		{"short iv", func(e *Envelope) { e.IV = e.IV[:IVSize-1] }},
		{"long iv", func(e *Envelope) { e.IV = append(e.IV, 0x00) }},
		{"short tag", func(e *Envelope) { e.Tag = e.Tag[:TagSize-1] }},
		{"missing tag", func(e *Envelope) { e.Tag = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnvelope()
			tt.mutate(env)
			err := env.Validate()
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestUnmarshalEnvelopeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		stored []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not-json-at-all")},
		{"legacy comma-separated byte dump", []byte("123,34,99,105,112,104")},
		{"json but wrong shape", []byte(`{"value":"abc"}`)},
		{"json number", []byte(`42`)},
		{"invalid base64 members", []byte(`{"ciphertext":"!!","iv":"!!","tag":"!!"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEnvelope(tt.stored)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
			// Recoverable per field: malformed rows map to invalid input,
			// never to an unhandled failure.
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestReadStoredField(t *testing.T) {
	t.Run("envelope wins over mirror", func(t *testing.T) {
		fv := ReadStoredField([]byte(`{"ciphertext":"x"}`), "Jane")
		assert.Equal(t, FieldEncrypted, fv.State())
	})

	t.Run("mirror fallback", func(t *testing.T) {
		fv := ReadStoredField(nil, "Jane")
		assert.Equal(t, FieldPlaintext, fv.State())
		assert.Equal(t, "Jane", fv.Plaintext())
	})

	t.Run("absent", func(t *testing.T) {
		fv := ReadStoredField(nil, "")
		assert.Equal(t, FieldAbsent, fv.State())
	})
}

func TestFieldRegistry(t *testing.T) {
	registry := DefaultFieldRegistry()

	assert.True(t, registry.IsConfigured(EntityPatient, "ssn"))
	assert.True(t, registry.IsConfigured(EntityMedicalRecord, "diagnosis"))
	assert.False(t, registry.IsConfigured(EntityPatient, "blood_type"))
	assert.False(t, registry.IsConfigured(EntityType("unknown"), "ssn"))
	assert.NotEmpty(t, registry.Fields(EntityUser))
}
