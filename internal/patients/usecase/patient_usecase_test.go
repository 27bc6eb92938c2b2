package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medvault/medvault/internal/errors"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	"github.com/medvault/medvault/internal/pii/clientside"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
)

const testHexKey = "0000000000000000000000000000000000000000000000000000000000000000"

// mockPatientRepository is a mock implementation of PatientRepository for testing.
type mockPatientRepository struct {
	mock.Mock
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *patientsDomain.StoredPatient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) Update(ctx context.Context, patient *patientsDomain.StoredPatient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) Get(
	ctx context.Context,
	patientID uuid.UUID,
) (*patientsDomain.StoredPatient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.StoredPatient), args.Error(1)
}

func (m *mockPatientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientsDomain.StoredPatient, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientsDomain.StoredPatient), args.Error(1)
}

func (m *mockPatientRepository) Delete(ctx context.Context, patientID uuid.UUID) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

// newPIIPipeline wires real encryption services over a fixed test key.
func newPIIPipeline(t *testing.T) (*piiService.EnvelopeFieldCodec, piiService.Protector, piiService.Decryptor) {
	t.Helper()
	keys, err := piiService.NewKeyManager(testHexKey)
	require.NoError(t, err)
	codec := piiService.NewFieldCodec(keys)
	protector := piiService.NewProtectionService(codec, piiDomain.DefaultFieldRegistry())
	decryptor := piiService.NewDecryptionService(codec, nil, nil)
	return codec, protector, decryptor
}

func fullInput() *patientsDomain.CreatePatientInput {
	return &patientsDomain.CreatePatientInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "+1-555-0100",
		Address:     "1 Main St",
		SSN:         "123-45-6789",
		DateOfBirth: "1980-04-12",
	}
}

func TestPatientUseCase_Create(t *testing.T) {
	ctx := context.Background()
	codec, protector, decryptor := newPIIPipeline(t)

	t.Run("Success_AllFieldsEncrypted", func(t *testing.T) {
		repo := &mockPatientRepository{}

		var stored *patientsDomain.StoredPatient
		repo.On("Create", ctx, mock.AnythingOfType("*domain.StoredPatient")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*patientsDomain.StoredPatient)
			}).
			Return(nil).
			Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		patient, err := useCase.Create(ctx, fullInput())
		require.NoError(t, err)
		assert.Equal(t, "Jane", patient.FirstName)

		// Every PII column holds an envelope, never plaintext
		require.NotNil(t, stored)
		assert.Empty(t, stored.FirstNameLegacy)
		assert.Empty(t, stored.SSNLegacy)
		for name, envelope := range map[string][]byte{
			"first_name": stored.FirstNameEncrypted,
			"ssn":        stored.SSNEncrypted,
			"email":      stored.EmailEncrypted,
		} {
			require.NotEmpty(t, envelope, name)
			assert.NotContains(t, string(envelope), "Jane")
			assert.NotContains(t, string(envelope), "123-45-6789")
		}

		// Round-trips through the codec
		ssn, err := codec.DecodeField(stored.SSNEncrypted)
		require.NoError(t, err)
		assert.Equal(t, "123-45-6789", ssn)
	})

	t.Run("EmptyFieldsStayAbsent", func(t *testing.T) {
		repo := &mockPatientRepository{}

		var stored *patientsDomain.StoredPatient
		repo.On("Create", ctx, mock.AnythingOfType("*domain.StoredPatient")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*patientsDomain.StoredPatient)
			}).
			Return(nil).
			Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		input := fullInput()
		input.Address = ""
		input.Phone = ""

		_, err := useCase.Create(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, stored.AddressEncrypted)
		assert.Empty(t, stored.PhoneEncrypted)
		assert.NotEmpty(t, stored.SSNEncrypted)
	})
}

func TestPatientUseCase_Get(t *testing.T) {
	ctx := context.Background()
	codec, protector, decryptor := newPIIPipeline(t)

	encode := func(t *testing.T, value string) []byte {
		t.Helper()
		stored, err := codec.EncodeField(value)
		require.NoError(t, err)
		return stored
	}

	t.Run("DecryptsEncryptedRow", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())

		stored := &patientsDomain.StoredPatient{
			ID:                 patientID,
			FirstNameEncrypted: encode(t, "Jane"),
			LastNameEncrypted:  encode(t, "Doe"),
			SSNEncrypted:       encode(t, "123-45-6789"),
		}
		repo.On("Get", ctx, patientID).Return(stored, nil).Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		patient, err := useCase.Get(ctx, patientID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", patient.FirstName)
		assert.Equal(t, "Doe", patient.LastName)
		assert.Equal(t, "123-45-6789", patient.SSN)
		assert.Empty(t, patient.Address, "absent field stays empty")
	})

	t.Run("LegacyPlaintextRowServed", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())

		// Pre-migration row: mirrors populated, no envelopes
		stored := &patientsDomain.StoredPatient{
			ID:              patientID,
			FirstNameLegacy: "Jane",
			EmailLegacy:     "jane@example.com",
		}
		repo.On("Get", ctx, patientID).Return(stored, nil).Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		patient, err := useCase.Get(ctx, patientID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", patient.FirstName)
		assert.Equal(t, "jane@example.com", patient.Email)
	})

	t.Run("CorruptedFieldMasked", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())

		stored := &patientsDomain.StoredPatient{
			ID:                 patientID,
			FirstNameEncrypted: encode(t, "Jane"),
			// Legacy comma-separated byte dump, not an envelope
			SSNEncrypted: []byte("12,34,56"),
		}
		repo.On("Get", ctx, patientID).Return(stored, nil).Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		patient, err := useCase.Get(ctx, patientID)
		require.NoError(t, err, "corrupted field never fails the read")
		assert.Equal(t, "Jane", patient.FirstName)
		assert.Equal(t, piiDomain.MaskedValue, patient.SSN)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())
		repo.On("Get", ctx, patientID).Return(nil, patientsDomain.ErrPatientNotFound).Once()

		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		_, err := useCase.Get(ctx, patientID)
		assert.ErrorIs(t, err, patientsDomain.ErrPatientNotFound)
	})
}

func TestPatientUseCase_List(t *testing.T) {
	ctx := context.Background()
	codec, protector, decryptor := newPIIPipeline(t)

	repo := &mockPatientRepository{}

	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy"}
	storedRows := make([]*patientsDomain.StoredPatient, len(names))
	for i, name := range names {
		envelope, err := codec.EncodeField(name)
		require.NoError(t, err)
		storedRows[i] = &patientsDomain.StoredPatient{
			ID:                 uuid.Must(uuid.NewV7()),
			FirstNameEncrypted: envelope,
		}
	}
	repo.On("List", ctx, 0, 50).Return(storedRows, nil).Once()

	useCase := NewPatientUseCase(repo, protector, decryptor, nil)

	patients, err := useCase.List(ctx, 0, 50)
	require.NoError(t, err)
	require.Len(t, patients, len(names))
	for i, name := range names {
		assert.Equal(t, storedRows[i].ID, patients[i].ID, "row %d out of order", i)
		assert.Equal(t, name, patients[i].FirstName, "row %d out of order", i)
	}
}

func TestPatientUseCase_Update(t *testing.T) {
	ctx := context.Background()
	codec, protector, decryptor := newPIIPipeline(t)

	repo := &mockPatientRepository{}
	patientID := uuid.Must(uuid.NewV7())

	// Existing legacy row about to be re-encrypted
	existing := &patientsDomain.StoredPatient{
		ID:              patientID,
		FirstNameLegacy: "Jane",
	}
	repo.On("Get", ctx, patientID).Return(existing, nil).Once()

	var updated *patientsDomain.StoredPatient
	repo.On("Update", ctx, mock.AnythingOfType("*domain.StoredPatient")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*patientsDomain.StoredPatient)
		}).
		Return(nil).
		Once()

	useCase := NewPatientUseCase(repo, protector, decryptor, nil)

	patient, err := useCase.Update(ctx, patientID, &patientsDomain.UpdatePatientInput{
		FirstName: "Janet",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", patient.FirstName)

	require.NotNil(t, updated)
	firstName, err := codec.DecodeField(updated.FirstNameEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "Janet", firstName)
	assert.Empty(t, updated.FirstNameLegacy, "mirrors are never written back")
}

func TestPatientUseCase_UpdateFromEncryptedPayload(t *testing.T) {
	ctx := context.Background()
	_, protector, decryptor := newPIIPipeline(t)

	cipher, err := clientside.NewPayloadCipher("shared-boundary-secret")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())

		repo.On("Get", ctx, patientID).
			Return(&patientsDomain.StoredPatient{ID: patientID}, nil).
			Once()
		repo.On("Update", ctx, mock.AnythingOfType("*domain.StoredPatient")).Return(nil).Once()

		envelope, err := cipher.EncryptPayload(patientsDomain.UpdatePatientInput{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
		})
		require.NoError(t, err)

		useCase := NewPatientUseCase(repo, protector, decryptor, cipher)

		patient, err := useCase.UpdateFromEncryptedPayload(ctx, patientID, envelope)
		require.NoError(t, err)
		assert.Equal(t, "Jane", patient.FirstName)
		assert.Equal(t, "jane@example.com", patient.Email)
	})

	t.Run("TamperedEnvelope", func(t *testing.T) {
		repo := &mockPatientRepository{}
		patientID := uuid.Must(uuid.NewV7())

		envelope, err := cipher.EncryptPayload(patientsDomain.UpdatePatientInput{FirstName: "Jane"})
		require.NoError(t, err)
		envelope.Ciphertext[0] ^= 0x01

		useCase := NewPatientUseCase(repo, protector, decryptor, cipher)

		_, err = useCase.UpdateFromEncryptedPayload(ctx, patientID, envelope)
		assert.ErrorIs(t, err, piiDomain.ErrDecryptionFailed)
	})

	t.Run("CipherNotConfigured", func(t *testing.T) {
		repo := &mockPatientRepository{}
		useCase := NewPatientUseCase(repo, protector, decryptor, nil)

		envelope, err := cipher.EncryptPayload(patientsDomain.UpdatePatientInput{FirstName: "Jane"})
		require.NoError(t, err)

		_, err = useCase.UpdateFromEncryptedPayload(ctx, uuid.Must(uuid.NewV7()), envelope)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		assert.True(t, strings.Contains(err.Error(), "not configured"))
	})
}
