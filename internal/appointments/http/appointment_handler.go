// Package http provides HTTP handlers for appointment scheduling.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appointmentsDomain "github.com/medvault/medvault/internal/appointments/domain"
	"github.com/medvault/medvault/internal/appointments/http/dto"
	appointmentsUseCase "github.com/medvault/medvault/internal/appointments/usecase"
	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
	customValidation "github.com/medvault/medvault/internal/validation"
)

// AppointmentHandler handles HTTP requests for appointments.
type AppointmentHandler struct {
	appointmentUseCase appointmentsUseCase.AppointmentUseCase
	logger             *slog.Logger
}

// NewAppointmentHandler creates a new appointment handler with required
// dependencies.
func NewAppointmentHandler(
	appointmentUseCase appointmentsUseCase.AppointmentUseCase,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUseCase: appointmentUseCase,
		logger:             logger,
	}
}

// CreateAppointmentHandler books a new appointment. A patient principal can
// only book for their own profile; doctors and admins can book for anyone.
// POST /v1/appointments
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var req dto.CreateAppointmentRequest

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
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid doctor id: must be a valid UUID"), h.logger)
		return
	}

	if !h.authorizeOwnership(c, patientID) {
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid start time"), h.logger)
		return
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid end time"), h.logger)
		return
	}

	appointment, err := h.appointmentUseCase.Create(c.Request.Context(),
		&appointmentsDomain.CreateAppointmentInput{
			PatientID: patientID,
			DoctorID:  doctorID,
			StartsAt:  startsAt,
			EndsAt:    endsAt,
		})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAppointmentToResponse(appointment))
}

// GetAppointmentHandler retrieves one appointment.
// GET /v1/appointments/:id - Patients see their own; doctors and admins any.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	appointmentID, ok := h.parseAppointmentID(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentUseCase.Get(c.Request.Context(), appointmentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !h.authorizeOwnership(c, appointment.PatientID) {
		return
	}

	c.JSON(http.StatusOK, dto.MapAppointmentToResponse(appointment))
}

// ListAppointmentsByPatientHandler retrieves a page of appointments for one
// patient.
// GET /v1/patients/:id/appointments
func (h *AppointmentHandler) ListAppointmentsByPatientHandler(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid patient id: must be a valid UUID"), h.logger)
		return
	}

	if !h.authorizeOwnership(c, patientID) {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	appointments, err := h.appointmentUseCase.ListByPatient(
		c.Request.Context(), patientID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapList(appointments))
}

// ListMyScheduleHandler retrieves the authenticated doctor's schedule.
// GET /v1/appointments - Requires doctor or admin role.
func (h *AppointmentHandler) ListMyScheduleHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	appointments, err := h.appointmentUseCase.ListByDoctor(
		c.Request.Context(), user.ID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, mapList(appointments))
}

// ChangeAppointmentStatusHandler moves an appointment through its lifecycle.
// A patient principal may only cancel their own appointment; doctors and
// admins may apply any valid transition.
// PATCH /v1/appointments/:id/status
func (h *AppointmentHandler) ChangeAppointmentStatusHandler(c *gin.Context) {
	appointmentID, ok := h.parseAppointmentID(c)
	if !ok {
		return
	}

	var req dto.ChangeAppointmentStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status := appointmentsDomain.Status(req.Status)

	user, okUser := authHTTP.GetUser(c.Request.Context())
	if !okUser || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if user.Role == authDomain.RolePatient {
		if status != appointmentsDomain.StatusCancelled {
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
			return
		}
		appointment, err := h.appointmentUseCase.Get(c.Request.Context(), appointmentID)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		if user.PatientID == nil || *user.PatientID != appointment.PatientID {
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
			return
		}
	}

	appointment, err := h.appointmentUseCase.ChangeStatus(c.Request.Context(), appointmentID, status)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAppointmentToResponse(appointment))
}

// DeleteAppointmentHandler removes an appointment.
// DELETE /v1/appointments/:id - Requires admin role.
// Returns 204 No Content.
func (h *AppointmentHandler) DeleteAppointmentHandler(c *gin.Context) {
	appointmentID, ok := h.parseAppointmentID(c)
	if !ok {
		return
	}

	if err := h.appointmentUseCase.Delete(c.Request.Context(), appointmentID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) parseAppointmentID(c *gin.Context) (uuid.UUID, bool) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid appointment id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return appointmentID, true
}

// authorizeOwnership enforces that a patient principal only touches their own
// appointments; doctors and admins may touch any.
func (h *AppointmentHandler) authorizeOwnership(c *gin.Context, patientID uuid.UUID) bool {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return false
	}

	if user.Role == authDomain.RoleDoctor || user.Role == authDomain.RoleAdmin {
		return true
	}

	if user.PatientID == nil || *user.PatientID != patientID {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return false
	}

	return true
}

func mapList(appointments []*appointmentsDomain.Appointment) dto.ListAppointmentsResponse {
	response := dto.ListAppointmentsResponse{Data: make([]dto.AppointmentResponse, 0, len(appointments))}
	for _, appointment := range appointments {
		response.Data = append(response.Data, dto.MapAppointmentToResponse(appointment))
	}
	return response
}
