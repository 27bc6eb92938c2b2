// Package usecase implements business logic orchestration for medical records
// and consultations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	recordsDomain "github.com/medvault/medvault/internal/records/domain"
)

// MedicalRecordRepository defines persistence operations for stored medical
// records.
type MedicalRecordRepository interface {
	Create(ctx context.Context, record *recordsDomain.StoredMedicalRecord) error
	Update(ctx context.Context, record *recordsDomain.StoredMedicalRecord) error
	Get(ctx context.Context, recordID uuid.UUID) (*recordsDomain.StoredMedicalRecord, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*recordsDomain.StoredMedicalRecord, error)
	Delete(ctx context.Context, recordID uuid.UUID) error
}

// ConsultationRepository defines persistence operations for stored
// consultations.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *recordsDomain.StoredConsultation) error
	Update(ctx context.Context, consultation *recordsDomain.StoredConsultation) error
	Get(ctx context.Context, consultationID uuid.UUID) (*recordsDomain.StoredConsultation, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*recordsDomain.StoredConsultation, error)
	Delete(ctx context.Context, consultationID uuid.UUID) error
}

// MedicalRecordUseCase defines business operations for medical records.
type MedicalRecordUseCase interface {
	Create(
		ctx context.Context,
		input *recordsDomain.CreateMedicalRecordInput,
	) (*recordsDomain.MedicalRecord, error)
	Get(ctx context.Context, recordID uuid.UUID) (*recordsDomain.MedicalRecord, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*recordsDomain.MedicalRecord, error)
	Update(
		ctx context.Context,
		recordID uuid.UUID,
		input *recordsDomain.UpdateMedicalRecordInput,
	) (*recordsDomain.MedicalRecord, error)
	Delete(ctx context.Context, recordID uuid.UUID) error
}

// ConsultationUseCase defines business operations for consultations.
type ConsultationUseCase interface {
	Create(
		ctx context.Context,
		input *recordsDomain.CreateConsultationInput,
	) (*recordsDomain.Consultation, error)
	Get(ctx context.Context, consultationID uuid.UUID) (*recordsDomain.Consultation, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*recordsDomain.Consultation, error)
	Update(
		ctx context.Context,
		consultationID uuid.UUID,
		input *recordsDomain.UpdateConsultationInput,
	) (*recordsDomain.Consultation, error)
	Delete(ctx context.Context, consultationID uuid.UUID) error
}
