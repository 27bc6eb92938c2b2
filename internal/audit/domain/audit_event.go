// Package domain defines audit trail models for security-relevant events.
// Every decrypt attempt on a sensitive field is recorded here, alongside
// consent changes and authentication outcomes.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what the actor attempted.
type Action string

const (
	// ActionDecryptField records a decrypt attempt on an encrypted PII field.
	ActionDecryptField Action = "decrypt_field"
	// ActionLogin records an authentication attempt.
	ActionLogin Action = "login"
	// ActionConsentChange records a consent grant or revocation.
	ActionConsentChange Action = "consent_change"
)

// Event records one security-relevant operation for compliance and incident
// investigation. Events are fire-and-forget: producing one must never block
// or fail the operation it describes.
type Event struct {
	ID uuid.UUID
	// ActorID is the authenticated principal, or uuid.Nil for system/anonymous.
	ActorID uuid.UUID
	Action  Action
	// EntityType and FieldName identify what was touched (e.g., "patient", "ssn").
	EntityType string
	FieldName  string
	Success    bool
	// Metadata carries structured detail such as the failure reason.
	Metadata  map[string]any
	CreatedAt time.Time
}
