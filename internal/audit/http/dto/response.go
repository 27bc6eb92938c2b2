// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medvault/medvault/internal/audit/domain"
)

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	FieldName  string         `json:"field_name,omitempty"`
	Success    bool           `json:"success"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MapEventToResponse converts an audit event to an API response. A nil actor
// (system or anonymous) is rendered as an absent field.
func MapEventToResponse(event *auditDomain.Event) AuditEventResponse {
	response := AuditEventResponse{
		ID:         event.ID.String(),
		Action:     string(event.Action),
		EntityType: event.EntityType,
		FieldName:  event.FieldName,
		Success:    event.Success,
		Metadata:   event.Metadata,
		CreatedAt:  event.CreatedAt,
	}
	if event.ActorID != uuid.Nil {
		response.ActorID = event.ActorID.String()
	}
	return response
}

// ListAuditEventsResponse represents a paginated list of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}
