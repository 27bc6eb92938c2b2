// Package http provides HTTP handlers for medical records and consultations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
	recordsDomain "github.com/medvault/medvault/internal/records/domain"
	"github.com/medvault/medvault/internal/records/http/dto"
	recordsUseCase "github.com/medvault/medvault/internal/records/usecase"
	customValidation "github.com/medvault/medvault/internal/validation"
)

const recordDateLayout = "2006-01-02"

// MedicalRecordHandler handles HTTP requests for medical records.
type MedicalRecordHandler struct {
	recordUseCase recordsUseCase.MedicalRecordUseCase
	logger        *slog.Logger
}

// NewMedicalRecordHandler creates a new medical record handler with required
// dependencies.
func NewMedicalRecordHandler(
	recordUseCase recordsUseCase.MedicalRecordUseCase,
	logger *slog.Logger,
) *MedicalRecordHandler {
	return &MedicalRecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// CreateMedicalRecordHandler creates a new medical record authored by the
// authenticated doctor.
// POST /v1/medical-records - Requires doctor or admin role.
func (h *MedicalRecordHandler) CreateMedicalRecordHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateMedicalRecordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid patient id: must be a valid UUID"), h.logger)
		return
	}

	recordDate, err := time.Parse(recordDateLayout, req.RecordDate)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record date"), h.logger)
		return
	}

	record, err := h.recordUseCase.Create(c.Request.Context(), &recordsDomain.CreateMedicalRecordInput{
		PatientID:  patientID,
		DoctorID:   user.ID,
		RecordDate: recordDate,
		Diagnosis:  req.Diagnosis,
		Notes:      req.Notes,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMedicalRecordToResponse(record))
}

// GetMedicalRecordHandler retrieves the decrypted view of a medical record.
// GET /v1/medical-records/:id - Patients can read their own records; doctors
// and admins can read any. Ownership is checked against the stored row, so
// the record is fetched before authorization.
func (h *MedicalRecordHandler) GetMedicalRecordHandler(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.Get(c.Request.Context(), recordID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !authorizePatientOwnership(c, h.logger, record.PatientID) {
		return
	}

	c.JSON(http.StatusOK, dto.MapMedicalRecordToResponse(record))
}

// ListMedicalRecordsByPatientHandler retrieves a page of decrypted records for
// one patient.
// GET /v1/patients/:id/medical-records - Patients can list their own records;
// doctors and admins can list any patient's.
func (h *MedicalRecordHandler) ListMedicalRecordsByPatientHandler(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid patient id: must be a valid UUID"), h.logger)
		return
	}

	if !authorizePatientOwnership(c, h.logger, patientID) {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	records, err := h.recordUseCase.ListByPatient(c.Request.Context(), patientID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListMedicalRecordsResponse{Data: make([]dto.MedicalRecordResponse, 0, len(records))}
	for _, record := range records {
		response.Data = append(response.Data, dto.MapMedicalRecordToResponse(record))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateMedicalRecordHandler replaces the clinical content of a record.
// PUT /v1/medical-records/:id - Requires doctor or admin role.
func (h *MedicalRecordHandler) UpdateMedicalRecordHandler(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	var req dto.UpdateMedicalRecordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	recordDate, err := time.Parse(recordDateLayout, req.RecordDate)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record date"), h.logger)
		return
	}

	record, err := h.recordUseCase.Update(c.Request.Context(), recordID,
		&recordsDomain.UpdateMedicalRecordInput{
			RecordDate: recordDate,
			Diagnosis:  req.Diagnosis,
			Notes:      req.Notes,
		})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMedicalRecordToResponse(record))
}

// DeleteMedicalRecordHandler removes a medical record.
// DELETE /v1/medical-records/:id - Requires admin role.
// Returns 204 No Content.
func (h *MedicalRecordHandler) DeleteMedicalRecordHandler(c *gin.Context) {
	recordID, ok := h.parseRecordID(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.Delete(c.Request.Context(), recordID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *MedicalRecordHandler) parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid medical record id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return recordID, true
}

// authorizePatientOwnership enforces record ownership for reads: a patient
// principal may only touch entities attached to their own patient profile,
// doctors and admins may touch any. Writes the error response and returns
// false when access is denied.
func authorizePatientOwnership(c *gin.Context, logger *slog.Logger, patientID uuid.UUID) bool {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return false
	}

	if user.Role == authDomain.RoleDoctor || user.Role == authDomain.RoleAdmin {
		return true
	}

	if user.PatientID == nil || *user.PatientID != patientID {
		logger.Debug("patient ownership check failed",
			slog.String("user_id", user.ID.String()),
			slog.String("patient_id", patientID.String()))
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
		return false
	}

	return true
}
