// Package http provides HTTP handlers for patient profile operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	"github.com/medvault/medvault/internal/patients/http/dto"
	patientsUseCase "github.com/medvault/medvault/internal/patients/usecase"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	customValidation "github.com/medvault/medvault/internal/validation"
)

// PatientHandler handles HTTP requests for patient profiles.
type PatientHandler struct {
	patientUseCase patientsUseCase.PatientUseCase
	logger         *slog.Logger
}

// NewPatientHandler creates a new patient handler with required dependencies.
func NewPatientHandler(
	patientUseCase patientsUseCase.PatientUseCase,
	logger *slog.Logger,
) *PatientHandler {
	return &PatientHandler{
		patientUseCase: patientUseCase,
		logger:         logger,
	}
}

// CreatePatientHandler creates a new patient profile.
// POST /v1/patients - Requires doctor or admin role.
// Returns 201 Created with the decrypted view.
func (h *PatientHandler) CreatePatientHandler(c *gin.Context) {
	var req dto.CreatePatientRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	patient, err := h.patientUseCase.Create(c.Request.Context(), &patientsDomain.CreatePatientInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		SSN:         req.SSN,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPatientToResponse(patient))
}

// GetPatientHandler retrieves the decrypted view of a patient.
// GET /v1/patients/:id - Patients can read their own profile; doctors and
// admins can read any.
func (h *PatientHandler) GetPatientHandler(c *gin.Context) {
	patientID, ok := h.parsePatientID(c)
	if !ok {
		return
	}

	if !h.authorizePatientAccess(c, patientID) {
		return
	}

	patient, err := h.patientUseCase.Get(c.Request.Context(), patientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientToResponse(patient))
}

// ListPatientsHandler retrieves a page of decrypted patient views.
// GET /v1/patients - Requires doctor or admin role.
func (h *PatientHandler) ListPatientsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	patients, err := h.patientUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListPatientsResponse{Data: make([]dto.PatientResponse, 0, len(patients))}
	for _, patient := range patients {
		response.Data = append(response.Data, dto.MapPatientToResponse(patient))
	}

	c.JSON(http.StatusOK, response)
}

// UpdatePatientHandler replaces the full profile with plaintext input.
// PUT /v1/patients/:id - Patients can update their own profile; doctors and
// admins can update any.
func (h *PatientHandler) UpdatePatientHandler(c *gin.Context) {
	patientID, ok := h.parsePatientID(c)
	if !ok {
		return
	}

	if !h.authorizePatientAccess(c, patientID) {
		return
	}

	var req dto.UpdatePatientRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	patient, err := h.patientUseCase.Update(c.Request.Context(), patientID, &patientsDomain.UpdatePatientInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		SSN:         req.SSN,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientToResponse(patient))
}

// UpdatePatientEncryptedHandler replaces the full profile from a
// client-encrypted payload. The update arrives as one envelope sealed at the
// boundary and is decrypted server-side before the normal write path.
// PUT /v1/patients/:id/encrypted - Same authorization as UpdatePatientHandler.
func (h *PatientHandler) UpdatePatientEncryptedHandler(c *gin.Context) {
	patientID, ok := h.parsePatientID(c)
	if !ok {
		return
	}

	if !h.authorizePatientAccess(c, patientID) {
		return
	}

	var req dto.EncryptedUpdateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	envelope := &piiDomain.Envelope{
		Ciphertext: req.Ciphertext,
		IV:         req.IV,
		Tag:        req.Tag,
	}

	patient, err := h.patientUseCase.UpdateFromEncryptedPayload(c.Request.Context(), patientID, envelope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPatientToResponse(patient))
}

// DeletePatientHandler removes a patient profile.
// DELETE /v1/patients/:id - Requires admin role.
// Returns 204 No Content.
func (h *PatientHandler) DeletePatientHandler(c *gin.Context) {
	patientID, ok := h.parsePatientID(c)
	if !ok {
		return
	}

	if err := h.patientUseCase.Delete(c.Request.Context(), patientID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// parsePatientID parses the :id path parameter. Writes a 400 response and
// returns false on failure.
func (h *PatientHandler) parsePatientID(c *gin.Context) (uuid.UUID, bool) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid patient id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return patientID, true
}

// authorizePatientAccess enforces record ownership: a patient may only touch
// their own profile, doctors and admins may touch any. Writes the error
// response and returns false when access is denied.
func (h *PatientHandler) authorizePatientAccess(c *gin.Context, patientID uuid.UUID) bool {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return false
	}

	if user.Role == authDomain.RoleDoctor || user.Role == authDomain.RoleAdmin {
		return true
	}

	if user.PatientID == nil || *user.PatientID != patientID {
		h.logger.Debug("patient access denied",
			slog.String("user_id", user.ID.String()),
			slog.String("patient_id", patientID.String()))
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return false
	}

	return true
}
