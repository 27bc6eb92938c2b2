// Package http provides HTTP handlers for patient consents.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	consentsDomain "github.com/medvault/medvault/internal/consents/domain"
	"github.com/medvault/medvault/internal/consents/http/dto"
	consentsUseCase "github.com/medvault/medvault/internal/consents/usecase"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
	customValidation "github.com/medvault/medvault/internal/validation"
)

// ConsentHandler handles HTTP requests for consents.
type ConsentHandler struct {
	consentUseCase consentsUseCase.ConsentUseCase
	logger         *slog.Logger
}

// NewConsentHandler creates a new consent handler with required dependencies.
func NewConsentHandler(
	consentUseCase consentsUseCase.ConsentUseCase,
	logger *slog.Logger,
) *ConsentHandler {
	return &ConsentHandler{
		consentUseCase: consentUseCase,
		logger:         logger,
	}
}

// GrantConsentHandler grants a consent on behalf of the authenticated
// principal. A patient principal can only grant for their own profile.
// POST /v1/consents
func (h *ConsentHandler) GrantConsentHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.GrantConsentRequest

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

	if !h.authorizeOwnership(c, user, patientID) {
		return
	}

	consent, err := h.consentUseCase.Grant(c.Request.Context(), &consentsDomain.GrantConsentInput{
		PatientID: patientID,
		Scope:     req.Scope,
		GrantedBy: user.ID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapConsentToResponse(consent))
}

// RevokeConsentHandler revokes an active consent.
// POST /v1/consents/:id/revoke - Patients can revoke their own consents;
// doctors and admins any.
func (h *ConsentHandler) RevokeConsentHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	consentID, okID := h.parseConsentID(c)
	if !okID {
		return
	}

	existing, err := h.consentUseCase.Get(c.Request.Context(), consentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !h.authorizeOwnership(c, user, existing.PatientID) {
		return
	}

	consent, err := h.consentUseCase.Revoke(c.Request.Context(), consentID, user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConsentToResponse(consent))
}

// GetConsentHandler retrieves one consent.
// GET /v1/consents/:id
func (h *ConsentHandler) GetConsentHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	consentID, okID := h.parseConsentID(c)
	if !okID {
		return
	}

	consent, err := h.consentUseCase.Get(c.Request.Context(), consentID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !h.authorizeOwnership(c, user, consent.PatientID) {
		return
	}

	c.JSON(http.StatusOK, dto.MapConsentToResponse(consent))
}

// ListConsentsByPatientHandler retrieves a page of consents for one patient.
// GET /v1/patients/:id/consents
func (h *ConsentHandler) ListConsentsByPatientHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid patient id: must be a valid UUID"), h.logger)
		return
	}

	if !h.authorizeOwnership(c, user, patientID) {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	consents, err := h.consentUseCase.ListByPatient(c.Request.Context(), patientID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListConsentsResponse{Data: make([]dto.ConsentResponse, 0, len(consents))}
	for _, consent := range consents {
		response.Data = append(response.Data, dto.MapConsentToResponse(consent))
	}

	c.JSON(http.StatusOK, response)
}

func (h *ConsentHandler) parseConsentID(c *gin.Context) (uuid.UUID, bool) {
	consentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid consent id: must be a valid UUID"), h.logger)
		return uuid.Nil, false
	}
	return consentID, true
}

func (h *ConsentHandler) authorizeOwnership(
	c *gin.Context,
	user *authDomain.User,
	patientID uuid.UUID,
) bool {
	if user.Role == authDomain.RoleDoctor || user.Role == authDomain.RoleAdmin {
		return true
	}

	if user.PatientID == nil || *user.PatientID != patientID {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return false
	}

	return true
}
