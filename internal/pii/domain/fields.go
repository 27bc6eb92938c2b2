package domain

// EntityType names a protected entity kind carrying configured PII fields.
type EntityType string

const (
	// EntityUser covers account profiles (patients and doctors share the shape).
	EntityUser EntityType = "user"
	// EntityPatient covers patient demographic profiles.
	EntityPatient EntityType = "patient"
	// EntityMedicalRecord covers clinical record entries.
	EntityMedicalRecord EntityType = "medical_record"
	// EntityConsultation covers consultation notes.
	EntityConsultation EntityType = "consultation"
)

// FieldRegistry maps an entity type to the names of its PII fields. Only
// registered fields may be encrypted; asking to encrypt anything else is a
// caller error. Fields not listed here pass through the write path unchanged.
type FieldRegistry map[EntityType][]string

// DefaultFieldRegistry returns the PII field configuration for the standard
// entity types. These are the direct identifiers that must never be stored
// in plaintext; display-only fields are protected by access control instead.
func DefaultFieldRegistry() FieldRegistry {
	return FieldRegistry{
		EntityUser: {
			"first_name",
			"last_name",
			"email",
			"phone",
		},
		EntityPatient: {
			"first_name",
			"last_name",
			"email",
			"phone",
			"address",
			"ssn",
			"date_of_birth",
		},
		EntityMedicalRecord: {
			"diagnosis",
			"notes",
		},
		EntityConsultation: {
			"notes",
		},
	}
}

// IsConfigured reports whether fieldName is a registered PII field for the
// entity type.
func (r FieldRegistry) IsConfigured(entityType EntityType, fieldName string) bool {
	for _, f := range r[entityType] {
		if f == fieldName {
			return true
		}
	}
	return false
}

// Fields returns the configured PII field names for the entity type.
func (r FieldRegistry) Fields(entityType EntityType) []string {
	return r[entityType]
}
