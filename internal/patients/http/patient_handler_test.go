package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// mockPatientUseCase is a mock implementation of PatientUseCase for testing.
type mockPatientUseCase struct {
	mock.Mock
}

func (m *mockPatientUseCase) Create(
	ctx context.Context,
	input *patientsDomain.CreatePatientInput,
) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Get(
	ctx context.Context,
	patientID uuid.UUID,
) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientsDomain.Patient, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Update(
	ctx context.Context,
	patientID uuid.UUID,
	input *patientsDomain.UpdatePatientInput,
) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) UpdateFromEncryptedPayload(
	ctx context.Context,
	patientID uuid.UUID,
	envelope *piiDomain.Envelope,
) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID, envelope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Delete(ctx context.Context, patientID uuid.UUID) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupRouter wires the handler behind a fake authentication layer that
// injects the given user into the request context.
func setupRouter(useCase *mockPatientUseCase, user *authDomain.User) *gin.Engine {
	handler := NewPatientHandler(useCase, testLogger())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Request = c.Request.WithContext(authHTTP.WithUser(c.Request.Context(), user))
		}
		c.Next()
	})
	router.POST("/v1/patients", handler.CreatePatientHandler)
	router.GET("/v1/patients", handler.ListPatientsHandler)
	router.GET("/v1/patients/:id", handler.GetPatientHandler)
	router.PUT("/v1/patients/:id", handler.UpdatePatientHandler)
	router.PUT("/v1/patients/:id/encrypted", handler.UpdatePatientEncryptedHandler)
	router.DELETE("/v1/patients/:id", handler.DeletePatientHandler)
	return router
}

func doctorUser() *authDomain.User {
	return &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: authDomain.RoleDoctor, IsActive: true}
}

func patientUser(patientID uuid.UUID) *authDomain.User {
	return &authDomain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Role:      authDomain.RolePatient,
		IsActive:  true,
		PatientID: &patientID,
	}
}

func TestPatientHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		useCase := &mockPatientUseCase{}

		created := &patientsDomain.Patient{
			ID:        uuid.Must(uuid.NewV7()),
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
		}
		useCase.On("Create", mock.Anything, mock.AnythingOfType("*domain.CreatePatientInput")).
			Return(created, nil).
			Once()

		router := setupRouter(useCase, doctorUser())

		body, _ := json.Marshal(map[string]string{
			"first_name":    "Jane",
			"last_name":     "Doe",
			"email":         "jane@example.com",
			"ssn":           "123-45-6789",
			"date_of_birth": "1980-04-12",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/patients", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		useCase.AssertExpectations(t)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Jane", resp["first_name"])
	})

	t.Run("ValidationError", func(t *testing.T) {
		router := setupRouter(&mockPatientUseCase{}, doctorUser())

		body, _ := json.Marshal(map[string]string{"first_name": "Jane"}) // missing last_name, email
		req := httptest.NewRequest(http.MethodPost, "/v1/patients", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPatientHandler_Get(t *testing.T) {
	patientID := uuid.Must(uuid.NewV7())

	t.Run("DoctorReadsAnyProfile", func(t *testing.T) {
		useCase := &mockPatientUseCase{}
		useCase.On("Get", mock.Anything, patientID).
			Return(&patientsDomain.Patient{ID: patientID, FirstName: "Jane"}, nil).
			Once()

		router := setupRouter(useCase, doctorUser())

		req := httptest.NewRequest(http.MethodGet, "/v1/patients/"+patientID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("PatientReadsOwnProfile", func(t *testing.T) {
		useCase := &mockPatientUseCase{}
		useCase.On("Get", mock.Anything, patientID).
			Return(&patientsDomain.Patient{ID: patientID}, nil).
			Once()

		router := setupRouter(useCase, patientUser(patientID))

		req := httptest.NewRequest(http.MethodGet, "/v1/patients/"+patientID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("PatientForbiddenFromOtherProfile", func(t *testing.T) {
		otherPatient := uuid.Must(uuid.NewV7())
		router := setupRouter(&mockPatientUseCase{}, patientUser(otherPatient))

		req := httptest.NewRequest(http.MethodGet, "/v1/patients/"+patientID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		router := setupRouter(&mockPatientUseCase{}, doctorUser())

		req := httptest.NewRequest(http.MethodGet, "/v1/patients/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		useCase := &mockPatientUseCase{}
		useCase.On("Get", mock.Anything, patientID).
			Return(nil, patientsDomain.ErrPatientNotFound).
			Once()

		router := setupRouter(useCase, doctorUser())

		req := httptest.NewRequest(http.MethodGet, "/v1/patients/"+patientID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPatientHandler_UpdateEncrypted(t *testing.T) {
	patientID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		useCase := &mockPatientUseCase{}
		useCase.On("UpdateFromEncryptedPayload", mock.Anything, patientID,
			mock.AnythingOfType("*domain.Envelope")).
			Return(&patientsDomain.Patient{ID: patientID, FirstName: "Jane"}, nil).
			Once()

		router := setupRouter(useCase, patientUser(patientID))

		body, _ := json.Marshal(map[string]any{
			"ciphertext": []byte("ciphertext"),
			"iv":         make([]byte, piiDomain.IVSize),
			"tag":        make([]byte, piiDomain.TagSize),
		})
		req := httptest.NewRequest(http.MethodPut, "/v1/patients/"+patientID.String()+"/encrypted",
			bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		useCase.AssertExpectations(t)
	})

	t.Run("MissingEnvelopeMembers", func(t *testing.T) {
		router := setupRouter(&mockPatientUseCase{}, patientUser(patientID))

		body, _ := json.Marshal(map[string]any{"ciphertext": []byte("x")})
		req := httptest.NewRequest(http.MethodPut, "/v1/patients/"+patientID.String()+"/encrypted",
			bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestPatientHandler_Delete(t *testing.T) {
	patientID := uuid.Must(uuid.NewV7())

	useCase := &mockPatientUseCase{}
	useCase.On("Delete", mock.Anything, patientID).Return(nil).Once()

	router := setupRouter(useCase, doctorUser())

	req := httptest.NewRequest(http.MethodDelete, "/v1/patients/"+patientID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	useCase.AssertExpectations(t)
}
