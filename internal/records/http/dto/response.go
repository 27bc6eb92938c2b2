package dto

import (
	"time"

	recordsDomain "github.com/medvault/medvault/internal/records/domain"
)

// MedicalRecordResponse represents a decrypted medical record in API
// responses. Fields that failed to decrypt carry the masked placeholder.
type MedicalRecordResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	DoctorID   string    `json:"doctor_id"`
	RecordDate string    `json:"record_date"`
	Diagnosis  string    `json:"diagnosis"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapMedicalRecordToResponse converts a decrypted record view to an API response.
func MapMedicalRecordToResponse(record *recordsDomain.MedicalRecord) MedicalRecordResponse {
	return MedicalRecordResponse{
		ID:         record.ID.String(),
		PatientID:  record.PatientID.String(),
		DoctorID:   record.DoctorID.String(),
		RecordDate: record.RecordDate.Format("2006-01-02"),
		Diagnosis:  record.Diagnosis,
		Notes:      record.Notes,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

// ListMedicalRecordsResponse represents a paginated list of medical records.
type ListMedicalRecordsResponse struct {
	Data []MedicalRecordResponse `json:"data"`
}

// ConsultationResponse represents a decrypted consultation in API responses.
type ConsultationResponse struct {
	ID               string    `json:"id"`
	PatientID        string    `json:"patient_id"`
	DoctorID         string    `json:"doctor_id"`
	ConsultationDate time.Time `json:"consultation_date"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MapConsultationToResponse converts a decrypted consultation view to an API
// response.
func MapConsultationToResponse(consultation *recordsDomain.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:               consultation.ID.String(),
		PatientID:        consultation.PatientID.String(),
		DoctorID:         consultation.DoctorID.String(),
		ConsultationDate: consultation.ConsultationDate,
		Notes:            consultation.Notes,
		CreatedAt:        consultation.CreatedAt,
		UpdatedAt:        consultation.UpdatedAt,
	}
}

// ListConsultationsResponse represents a paginated list of consultations.
type ListConsultationsResponse struct {
	Data []ConsultationResponse `json:"data"`
}
