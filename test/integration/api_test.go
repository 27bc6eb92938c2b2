// Package integration provides end-to-end integration tests for the MedVault
// API. Tests exercise the full stack, from HTTP routing down to the encrypted
// columns, against both PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault/internal/app"
	appointmentsDTO "github.com/medvault/medvault/internal/appointments/http/dto"
	auditDTO "github.com/medvault/medvault/internal/audit/http/dto"
	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authDTO "github.com/medvault/medvault/internal/auth/http/dto"
	"github.com/medvault/medvault/internal/config"
	consentsDTO "github.com/medvault/medvault/internal/consents/http/dto"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	patientsDTO "github.com/medvault/medvault/internal/patients/http/dto"
	"github.com/medvault/medvault/internal/pii/clientside"
	recordsDTO "github.com/medvault/medvault/internal/records/http/dto"
	"github.com/medvault/medvault/internal/testutil"
)

const (
	testClientSecret   = "integration-test-shared-secret"
	adminPassword      = "admin-test-password"
	doctorPassword     = "doctor-test-password"
	patientPassword    = "patient-test-password"
	testAdminEmail     = "admin@medvault.test"
	testDoctorEmail    = "doctor@medvault.test"
	testPatientEmail   = "patient@medvault.test"
	requestTimeoutSecs = 10
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container    *app.Container
	db           *sql.DB
	server       *httptest.Server
	dbDriver     string
	adminToken   string
	doctorToken  string
	doctorID     uuid.UUID
	patientToken string
	patientID    uuid.UUID
}

// makeRequest performs an HTTP request and returns the response and body.
func (tc *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, tc.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: requestTimeoutSecs * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close(), "failed to close response body")

	return resp, respBody
}

// login authenticates through the API and returns the plaintext token.
func (tc *integrationTestContext) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, body := tc.makeRequest(t, http.MethodPost, "/v1/auth/login", authDTO.LoginRequest{
		Email:    email,
		Password: password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", string(body))

	var loginResp authDTO.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

// generateTestMasterKey returns a random hex-encoded 256-bit master key.
func generateTestMasterKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err, "failed to generate master key")
	return hex.EncodeToString(key)
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		ServerHost:             "localhost",
		ServerPort:             8080,
		DBDriver:               dbDriver,
		DBConnectionString:     dsn,
		DBMaxOpenConnections:   10,
		DBMaxIdleConnections:   5,
		DBConnMaxLifetime:      time.Hour,
		LogLevel:               "error",
		PIIMasterKey:           generateTestMasterKey(t),
		ClientEncryptionSecret: testClientSecret,
		AuthTokenExpiration:    time.Hour,
		LockoutMaxAttempts:     5,
		LockoutDuration:        15 * time.Minute,
	}

	container := app.NewContainer(cfg)

	userUseCase, err := container.UserUseCase()
	require.NoError(t, err, "failed to get user use case")

	_, err = userUseCase.Create(context.Background(), &authDomain.CreateUserInput{
		Email:    testAdminEmail,
		Password: adminPassword,
		Role:     authDomain.RoleAdmin,
	})
	require.NoError(t, err, "failed to create admin user")

	doctor, err := userUseCase.Create(context.Background(), &authDomain.CreateUserInput{
		Email:    testDoctorEmail,
		Password: doctorPassword,
		Role:     authDomain.RoleDoctor,
	})
	require.NoError(t, err, "failed to create doctor user")

	patientUseCase, err := container.PatientUseCase()
	require.NoError(t, err, "failed to get patient use case")

	patient, err := patientUseCase.Create(context.Background(), &patientsDomain.CreatePatientInput{
		FirstName:   "Carla",
		LastName:    "Mendes",
		Email:       testPatientEmail,
		DateOfBirth: "1985-06-15",
	})
	require.NoError(t, err, "failed to create patient profile")

	_, err = userUseCase.Create(context.Background(), &authDomain.CreateUserInput{
		Email:     testPatientEmail,
		Password:  patientPassword,
		Role:      authDomain.RolePatient,
		PatientID: &patient.ID,
	})
	require.NoError(t, err, "failed to create patient user")

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")

	testServer := httptest.NewServer(handler)

	tc := &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
		dbDriver:  dbDriver,
		doctorID:  doctor.ID,
		patientID: patient.ID,
	}

	tc.adminToken = tc.login(t, testAdminEmail, adminPassword)
	tc.doctorToken = tc.login(t, testDoctorEmail, doctorPassword)
	tc.patientToken = tc.login(t, testPatientEmail, patientPassword)

	return tc
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, tc *integrationTestContext) {
	t.Helper()

	if tc.server != nil {
		tc.server.Close()
	}

	if tc.container != nil {
		if err := tc.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if tc.db != nil {
		testutil.TeardownDB(t, tc.db)
	}
}

func TestIntegrationPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	runAPISuite(t, "postgres")
}

func TestIntegrationMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	runAPISuite(t, "mysql")
}

func runAPISuite(t *testing.T, dbDriver string) {
	tc := setupIntegrationTest(t, dbDriver)
	defer teardownIntegrationTest(t, tc)

	t.Run("HealthAndReadiness", func(t *testing.T) {
		resp, body := tc.makeRequest(t, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "healthy")

		resp, body = tc.makeRequest(t, http.MethodGet, "/ready", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "ready")
	})

	t.Run("LoginRejectsBadCredentials", func(t *testing.T) {
		resp, _ := tc.makeRequest(t, http.MethodPost, "/v1/auth/login", authDTO.LoginRequest{
			Email:    testDoctorEmail,
			Password: "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("PatientLifecycle", func(t *testing.T) {
		// Create through the API as a doctor.
		createReq := patientsDTO.CreatePatientRequest{
			FirstName:   "Rafael",
			LastName:    "Lima",
			Email:       "rafael.lima@example.com",
			Phone:       "+55 11 91234-5678",
			Address:     "Rua das Flores 100, Sao Paulo",
			SSN:         "123-45-6789",
			DateOfBirth: "1978-11-02",
		}
		resp, body := tc.makeRequest(t, http.MethodPost, "/v1/patients", createReq, tc.doctorToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", string(body))

		var created patientsDTO.PatientResponse
		require.NoError(t, json.Unmarshal(body, &created))
		assert.Equal(t, "Rafael", created.FirstName)
		assert.Equal(t, "123-45-6789", created.SSN)

		// At rest the row must carry envelopes only: plaintext columns NULL,
		// encrypted columns populated.
		var ssnPlain sql.NullString
		var ssnEncrypted []byte
		query := `SELECT ssn, ssn_encrypted FROM patients WHERE id = $1`
		idValue := interface{}(created.ID)
		if tc.dbDriver != "postgres" {
			query = `SELECT ssn, ssn_encrypted FROM patients WHERE id = ?`
		}
		err := tc.db.QueryRow(query, idValue).Scan(&ssnPlain, &ssnEncrypted)
		require.NoError(t, err, "failed to read stored patient row")
		assert.False(t, ssnPlain.Valid, "plaintext ssn column must be NULL")
		assert.NotEmpty(t, ssnEncrypted, "encrypted ssn column must be populated")

		// Read back decrypted.
		resp, body = tc.makeRequest(t, http.MethodGet, "/v1/patients/"+created.ID, nil, tc.doctorToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var fetched patientsDTO.PatientResponse
		require.NoError(t, json.Unmarshal(body, &fetched))
		assert.Equal(t, createReq.SSN, fetched.SSN)
		assert.Equal(t, createReq.Address, fetched.Address)
		assert.Equal(t, createReq.DateOfBirth, fetched.DateOfBirth)

		// Full update replaces every field.
		updateReq := patientsDTO.UpdatePatientRequest{
			FirstName:   "Rafael",
			LastName:    "Lima",
			Email:       "rafael.lima@example.com",
			Phone:       "+55 11 99999-0000",
			Address:     "Avenida Paulista 1500, Sao Paulo",
			SSN:         "123-45-6789",
			DateOfBirth: "1978-11-02",
		}
		resp, body = tc.makeRequest(t, http.MethodPut, "/v1/patients/"+created.ID, updateReq, tc.doctorToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "update failed: %s", string(body))

		var updated patientsDTO.PatientResponse
		require.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, updateReq.Address, updated.Address)

		// Listing is clinician-only.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/patients", nil, tc.doctorToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Deletion is admin-only.
		resp, _ = tc.makeRequest(t, http.MethodDelete, "/v1/patients/"+created.ID, nil, tc.doctorToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = tc.makeRequest(t, http.MethodDelete, "/v1/patients/"+created.ID, nil, tc.adminToken)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("ClientEncryptedUpdate", func(t *testing.T) {
		cipher, err := clientside.NewPayloadCipher(testClientSecret)
		require.NoError(t, err)

		envelope, err := cipher.EncryptPayload(patientsDomain.UpdatePatientInput{
			FirstName:   "Carla",
			LastName:    "Mendes",
			Email:       testPatientEmail,
			Phone:       "+55 21 98888-7777",
			DateOfBirth: "1985-06-15",
		})
		require.NoError(t, err)

		path := "/v1/patients/" + tc.patientID.String() + "/encrypted"
		resp, body := tc.makeRequest(t, http.MethodPut, path, patientsDTO.EncryptedUpdateRequest{
			Ciphertext: envelope.Ciphertext,
			IV:         envelope.IV,
			Tag:        envelope.Tag,
		}, tc.patientToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "encrypted update failed: %s", string(body))

		var updated patientsDTO.PatientResponse
		require.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, "+55 21 98888-7777", updated.Phone)

		// A tampered tag must be rejected without applying the update.
		tampered := *envelope
		tampered.Tag = make([]byte, len(envelope.Tag))
		copy(tampered.Tag, envelope.Tag)
		tampered.Tag[0] ^= 0xFF

		resp, _ = tc.makeRequest(t, http.MethodPut, path, patientsDTO.EncryptedUpdateRequest{
			Ciphertext: tampered.Ciphertext,
			IV:         tampered.IV,
			Tag:        tampered.Tag,
		}, tc.patientToken)
		assert.GreaterOrEqual(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("MedicalRecordFlow", func(t *testing.T) {
		createReq := recordsDTO.CreateMedicalRecordRequest{
			PatientID:  tc.patientID.String(),
			RecordDate: "2026-08-20",
			Diagnosis:  "Seasonal allergic rhinitis",
			Notes:      "Prescribed antihistamines, follow up in 30 days",
		}
		resp, body := tc.makeRequest(t, http.MethodPost, "/v1/medical-records", createReq, tc.doctorToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %s", string(body))

		var created recordsDTO.MedicalRecordResponse
		require.NoError(t, json.Unmarshal(body, &created))
		assert.Equal(t, tc.doctorID.String(), created.DoctorID)
		assert.Equal(t, createReq.Diagnosis, created.Diagnosis)

		resp, body = tc.makeRequest(t, http.MethodGet, "/v1/medical-records/"+created.ID, nil, tc.doctorToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var fetched recordsDTO.MedicalRecordResponse
		require.NoError(t, json.Unmarshal(body, &fetched))
		assert.Equal(t, createReq.Notes, fetched.Notes)

		// The patient can read their own record.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/medical-records/"+created.ID, nil, tc.patientToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = tc.makeRequest(
			t, http.MethodGet,
			"/v1/patients/"+tc.patientID.String()+"/medical-records",
			nil, tc.doctorToken,
		)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = tc.makeRequest(t, http.MethodDelete, "/v1/medical-records/"+created.ID, nil, tc.doctorToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = tc.makeRequest(t, http.MethodDelete, "/v1/medical-records/"+created.ID, nil, tc.adminToken)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("AppointmentFlow", func(t *testing.T) {
		createReq := appointmentsDTO.CreateAppointmentRequest{
			PatientID: tc.patientID.String(),
			DoctorID:  tc.doctorID.String(),
			StartsAt:  "2026-09-10T14:00:00Z",
			EndsAt:    "2026-09-10T14:30:00Z",
		}
		resp, body := tc.makeRequest(t, http.MethodPost, "/v1/appointments", createReq, tc.doctorToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "booking failed: %s", string(body))

		var created appointmentsDTO.AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &created))
		assert.Equal(t, "scheduled", created.Status)

		// A window that ends before it starts is rejected.
		invalidReq := appointmentsDTO.CreateAppointmentRequest{
			PatientID: tc.patientID.String(),
			DoctorID:  tc.doctorID.String(),
			StartsAt:  "2026-09-10T15:00:00Z",
			EndsAt:    "2026-09-10T14:45:00Z",
		}
		resp, _ = tc.makeRequest(t, http.MethodPost, "/v1/appointments", invalidReq, tc.doctorToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, body = tc.makeRequest(
			t, http.MethodPatch,
			"/v1/appointments/"+created.ID+"/status",
			appointmentsDTO.ChangeAppointmentStatusRequest{Status: "confirmed"},
			tc.doctorToken,
		)
		require.Equal(t, http.StatusOK, resp.StatusCode, "status change failed: %s", string(body))

		var confirmed appointmentsDTO.AppointmentResponse
		require.NoError(t, json.Unmarshal(body, &confirmed))
		assert.Equal(t, "confirmed", confirmed.Status)

		// Moving back to scheduled is not a legal transition.
		resp, _ = tc.makeRequest(
			t, http.MethodPatch,
			"/v1/appointments/"+created.ID+"/status",
			appointmentsDTO.ChangeAppointmentStatusRequest{Status: "scheduled"},
			tc.doctorToken,
		)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = tc.makeRequest(
			t, http.MethodGet,
			"/v1/patients/"+tc.patientID.String()+"/appointments",
			nil, tc.doctorToken,
		)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ConsentFlow", func(t *testing.T) {
		grantReq := consentsDTO.GrantConsentRequest{
			PatientID: tc.patientID.String(),
			Scope:     "share-records-with-specialist",
		}
		resp, body := tc.makeRequest(t, http.MethodPost, "/v1/consents", grantReq, tc.patientToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "grant failed: %s", string(body))

		var granted consentsDTO.ConsentResponse
		require.NoError(t, json.Unmarshal(body, &granted))
		assert.True(t, granted.Active)

		resp, body = tc.makeRequest(t, http.MethodPost, "/v1/consents/"+granted.ID+"/revoke", nil, tc.patientToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "revoke failed: %s", string(body))

		var revoked consentsDTO.ConsentResponse
		require.NoError(t, json.Unmarshal(body, &revoked))
		assert.False(t, revoked.Active)
		assert.NotNil(t, revoked.RevokedAt)
	})

	t.Run("AuditTrailRecordsDecrypts", func(t *testing.T) {
		// Reading a patient decrypts PII fields, each of which must land in the
		// audit trail.
		resp, _ := tc.makeRequest(t, http.MethodGet, "/v1/patients/"+tc.patientID.String(), nil, tc.doctorToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := tc.makeRequest(t, http.MethodGet, "/v1/audit-events", nil, tc.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var events auditDTO.ListAuditEventsResponse
		require.NoError(t, json.Unmarshal(body, &events))
		require.NotEmpty(t, events.Data)

		found := false
		for _, event := range events.Data {
			if event.Action == "decrypt_field" && event.EntityType == "patient" {
				found = true
				break
			}
		}
		assert.True(t, found, "expected a decrypt_field audit event for entity patient")
	})

	t.Run("RoleEnforcement", func(t *testing.T) {
		// Patients cannot list patients.
		resp, _ := tc.makeRequest(t, http.MethodGet, "/v1/patients", nil, tc.patientToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		// Patients can read their own profile.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/patients/"+tc.patientID.String(), nil, tc.patientToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Audit trail is admin-only.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/audit-events", nil, tc.doctorToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		// No token, no access.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/patients", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Logout", func(t *testing.T) {
		token := tc.login(t, testDoctorEmail, doctorPassword)

		resp, _ := tc.makeRequest(t, http.MethodPost, "/v1/auth/logout", nil, token)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		// The revoked token no longer authenticates.
		resp, _ = tc.makeRequest(t, http.MethodGet, "/v1/patients", nil, token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
