// Package http provides HTTP handlers for the audit trail.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/audit/http/dto"
	auditUseCase "github.com/medvault/medvault/internal/audit/usecase"
	"github.com/medvault/medvault/internal/httputil"
)

// AuditEventHandler handles HTTP requests for audit events.
type AuditEventHandler struct {
	eventUseCase auditUseCase.EventUseCase
	logger       *slog.Logger
}

// NewAuditEventHandler creates a new audit event handler with required
// dependencies.
func NewAuditEventHandler(
	eventUseCase auditUseCase.EventUseCase,
	logger *slog.Logger,
) *AuditEventHandler {
	return &AuditEventHandler{
		eventUseCase: eventUseCase,
		logger:       logger,
	}
}

// ListAuditEventsHandler retrieves audit events with pagination and optional
// inclusive time-range filtering via created_at_from / created_at_to (RFC3339).
// GET /v1/audit-events - Requires admin role.
func (h *AuditEventHandler) ListAuditEventsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	createdAtFrom, err := parseTimeQuery(c, "created_at_from")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	createdAtTo, err := parseTimeQuery(c, "created_at_to")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.List(c.Request.Context(), offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListAuditEventsResponse{Data: make([]dto.AuditEventResponse, 0, len(events))}
	for _, event := range events {
		response.Data = append(response.Data, dto.MapEventToResponse(event))
	}

	c.JSON(http.StatusOK, response)
}

// parseTimeQuery parses an optional RFC3339 query parameter. Absent parameters
// yield nil.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be RFC3339", name)
	}
	return &parsed, nil
}
