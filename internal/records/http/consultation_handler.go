package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/medvault/medvault/internal/auth/http"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
	recordsDomain "github.com/medvault/medvault/internal/records/domain"
	"github.com/medvault/medvault/internal/records/http/dto"
	recordsUseCase "github.com/medvault/medvault/internal/records/usecase"
	customValidation "github.com/medvault/medvault/internal/validation"
)

// ConsultationHandler handles HTTP requests for consultations.
type ConsultationHandler struct {
	consultationUseCase recordsUseCase.ConsultationUseCase
	logger              *slog.Logger
}

// NewConsultationHandler creates a new consultation handler with required
// dependencies.
func NewConsultationHandler(
	consultationUseCase recordsUseCase.ConsultationUseCase,
	logger *slog.Logger,
) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUseCase: consultationUseCase,
		logger:              logger,
	}
}

// CreateConsultationHandler creates a new consultation entry authored by the
// authenticated doctor.
// POST /v1/consultations - Requires doctor or admin role.
func (h *ConsultationHandler) CreateConsultationHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateConsultationRequest

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

	consultationDate, err := time.Parse(time.RFC3339, req.ConsultationDate)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid consultation date"), h.logger)
		return
	}

	consultation, err := h.consultationUseCase.Create(c.Request.Context(),
		&recordsDomain.CreateConsultationInput{
			PatientID:        patientID,
			DoctorID:         user.ID,
			ConsultationDate: consultationDate,
			Notes:            req.Notes,
		})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapConsultationToResponse(consultation))
}

// GetConsultationHandler retrieves the decrypted view of a consultation.
// GET /v1/consultations/:id - Patients can read their own consultations;
// doctors and admins can read any.
func (h *ConsultationHandler) GetConsultationHandler(c *gin.Context) {
	consultationID, ok := h.parseConsultationID(c)
	if !ok {
		return
	}

	consultation, err := h.consultationUseCase.Get(c.Request.Context(), consultationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !authorizePatientOwnership(c, h.logger, consultation.PatientID) {
		return
	}

	c.JSON(http.StatusOK, dto.MapConsultationToResponse(consultation))
}

// ListConsultationsByPatientHandler retrieves a page of decrypted
// consultations for one patient.
// GET /v1/patients/:id/consultations - Patients can list their own; doctors
// and admins can list any patient's.
func (h *ConsultationHandler) ListConsultationsByPatientHandler(c *gin.Context) {
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

	consultations, err := h.consultationUseCase.ListByPatient(
		c.Request.Context(), patientID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListConsultationsResponse{Data: make([]dto.ConsultationResponse, 0, len(consultations))}
	for _, consultation := range consultations {
		response.Data = append(response.Data, dto.MapConsultationToResponse(consultation))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateConsultationHandler replaces the content of a consultation entry.
// PUT /v1/consultations/:id - Requires doctor or admin role.
func (h *ConsultationHandler) UpdateConsultationHandler(c *gin.Context) {
	consultationID, ok := h.parseConsultationID(c)
	if !ok {
		return
	}

	var req dto.UpdateConsultationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	consultationDate, err := time.Parse(time.RFC3339, req.ConsultationDate)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid consultation date"), h.logger)
		return
	}

	consultation, err := h.consultationUseCase.Update(c.Request.Context(), consultationID,
		&recordsDomain.UpdateConsultationInput{
			ConsultationDate: consultationDate,
			Notes:            req.Notes,
		})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConsultationToResponse(consultation))
}

// DeleteConsultationHandler removes a consultation entry.
// DELETE /v1/consultations/:id - Requires admin role.
// Returns 204 No Content.
func (h *ConsultationHandler) DeleteConsultationHandler(c *gin.Context) {
	consultationID, ok := h.parseConsultationID(c)
	if !ok {
		return
	}

	if err := h.consultationUseCase.Delete(c.Request.Context(), consultationID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ConsultationHandler) parseConsultationID(c *gin.Context) (uuid.UUID, bool) {
	consultationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid consultation id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return consultationID, true
}
