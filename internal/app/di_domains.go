package app

import (
	"fmt"

	appointmentsRepository "github.com/medvault/medvault/internal/appointments/repository"
	appointmentsUseCase "github.com/medvault/medvault/internal/appointments/usecase"
	auditRepository "github.com/medvault/medvault/internal/audit/repository"
	auditUseCase "github.com/medvault/medvault/internal/audit/usecase"
	consentsRepository "github.com/medvault/medvault/internal/consents/repository"
	consentsUseCase "github.com/medvault/medvault/internal/consents/usecase"
	patientsRepository "github.com/medvault/medvault/internal/patients/repository"
	patientsUseCase "github.com/medvault/medvault/internal/patients/usecase"
	recordsRepository "github.com/medvault/medvault/internal/records/repository"
	recordsUseCase "github.com/medvault/medvault/internal/records/usecase"
)

// PatientRepository returns the patient repository instance.
func (c *Container) PatientRepository() (patientsUseCase.PatientRepository, error) {
	var err error
	c.patientRepoInit.Do(func() {
		c.patientRepo, err = c.initPatientRepository()
		if err != nil {
			c.initErrors["patientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patientRepo"]; exists {
		return nil, storedErr
	}
	return c.patientRepo, nil
}

// MedicalRecordRepository returns the medical record repository instance.
func (c *Container) MedicalRecordRepository() (recordsUseCase.MedicalRecordRepository, error) {
	var err error
	c.medicalRecordRepoInit.Do(func() {
		c.medicalRecordRepo, err = c.initMedicalRecordRepository()
		if err != nil {
			c.initErrors["medicalRecordRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["medicalRecordRepo"]; exists {
		return nil, storedErr
	}
	return c.medicalRecordRepo, nil
}

// ConsultationRepository returns the consultation repository instance.
func (c *Container) ConsultationRepository() (recordsUseCase.ConsultationRepository, error) {
	var err error
	c.consultationRepoInit.Do(func() {
		c.consultationRepo, err = c.initConsultationRepository()
		if err != nil {
			c.initErrors["consultationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consultationRepo"]; exists {
		return nil, storedErr
	}
	return c.consultationRepo, nil
}

// AppointmentRepository returns the appointment repository instance.
func (c *Container) AppointmentRepository() (appointmentsUseCase.AppointmentRepository, error) {
	var err error
	c.appointmentRepoInit.Do(func() {
		c.appointmentRepo, err = c.initAppointmentRepository()
		if err != nil {
			c.initErrors["appointmentRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["appointmentRepo"]; exists {
		return nil, storedErr
	}
	return c.appointmentRepo, nil
}

// ConsentRepository returns the consent repository instance.
func (c *Container) ConsentRepository() (consentsUseCase.ConsentRepository, error) {
	var err error
	c.consentRepoInit.Do(func() {
		c.consentRepo, err = c.initConsentRepository()
		if err != nil {
			c.initErrors["consentRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consentRepo"]; exists {
		return nil, storedErr
	}
	return c.consentRepo, nil
}

// AuditEventRepository returns the audit event repository instance.
func (c *Container) AuditEventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.auditEventRepoInit.Do(func() {
		c.auditEventRepo, err = c.initAuditEventRepository()
		if err != nil {
			c.initErrors["auditEventRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventRepo"]; exists {
		return nil, storedErr
	}
	return c.auditEventRepo, nil
}

// PatientUseCase returns the patient use case instance.
func (c *Container) PatientUseCase() (patientsUseCase.PatientUseCase, error) {
	var err error
	c.patientUseCaseInit.Do(func() {
		c.patientUseCase, err = c.initPatientUseCase()
		if err != nil {
			c.initErrors["patientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patientUseCase"]; exists {
		return nil, storedErr
	}
	return c.patientUseCase, nil
}

// MedicalRecordUseCase returns the medical record use case instance.
func (c *Container) MedicalRecordUseCase() (recordsUseCase.MedicalRecordUseCase, error) {
	var err error
	c.medicalRecordUseCaseInit.Do(func() {
		c.medicalRecordUseCase, err = c.initMedicalRecordUseCase()
		if err != nil {
			c.initErrors["medicalRecordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["medicalRecordUseCase"]; exists {
		return nil, storedErr
	}
	return c.medicalRecordUseCase, nil
}

// ConsultationUseCase returns the consultation use case instance.
func (c *Container) ConsultationUseCase() (recordsUseCase.ConsultationUseCase, error) {
	var err error
	c.consultationUseCaseInit.Do(func() {
		c.consultationUseCase, err = c.initConsultationUseCase()
		if err != nil {
			c.initErrors["consultationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consultationUseCase"]; exists {
		return nil, storedErr
	}
	return c.consultationUseCase, nil
}

// AppointmentUseCase returns the appointment use case instance.
func (c *Container) AppointmentUseCase() (appointmentsUseCase.AppointmentUseCase, error) {
	var err error
	c.appointmentUseCaseInit.Do(func() {
		c.appointmentUseCase, err = c.initAppointmentUseCase()
		if err != nil {
			c.initErrors["appointmentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["appointmentUseCase"]; exists {
		return nil, storedErr
	}
	return c.appointmentUseCase, nil
}

// ConsentUseCase returns the consent use case instance.
func (c *Container) ConsentUseCase() (consentsUseCase.ConsentUseCase, error) {
	var err error
	c.consentUseCaseInit.Do(func() {
		c.consentUseCase, err = c.initConsentUseCase()
		if err != nil {
			c.initErrors["consentUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consentUseCase"]; exists {
		return nil, storedErr
	}
	return c.consentUseCase, nil
}

// AuditEventUseCase returns the audit event use case instance.
func (c *Container) AuditEventUseCase() (auditUseCase.EventUseCase, error) {
	var err error
	c.auditEventUseCaseInit.Do(func() {
		c.auditEventUseCase, err = c.initAuditEventUseCase()
		if err != nil {
			c.initErrors["auditEventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditEventUseCase, nil
}

// initPatientRepository creates the patient repository instance.
func (c *Container) initPatientRepository() (patientsUseCase.PatientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for patient repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return patientsRepository.NewMySQLPatientRepository(db), nil
	case "postgres":
		return patientsRepository.NewPostgreSQLPatientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initMedicalRecordRepository creates the medical record repository instance.
func (c *Container) initMedicalRecordRepository() (recordsUseCase.MedicalRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for medical record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return recordsRepository.NewMySQLMedicalRecordRepository(db), nil
	case "postgres":
		return recordsRepository.NewPostgreSQLMedicalRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initConsultationRepository creates the consultation repository instance.
func (c *Container) initConsultationRepository() (recordsUseCase.ConsultationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for consultation repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return recordsRepository.NewMySQLConsultationRepository(db), nil
	case "postgres":
		return recordsRepository.NewPostgreSQLConsultationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAppointmentRepository creates the appointment repository instance.
func (c *Container) initAppointmentRepository() (appointmentsUseCase.AppointmentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for appointment repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return appointmentsRepository.NewMySQLAppointmentRepository(db), nil
	case "postgres":
		return appointmentsRepository.NewPostgreSQLAppointmentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initConsentRepository creates the consent repository instance.
func (c *Container) initConsentRepository() (consentsUseCase.ConsentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for consent repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return consentsRepository.NewMySQLConsentRepository(db), nil
	case "postgres":
		return consentsRepository.NewPostgreSQLConsentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditEventRepository creates the audit event repository instance.
func (c *Container) initAuditEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLAuditEventRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPatientUseCase creates the patient use case with all its dependencies.
func (c *Container) initPatientUseCase() (patientsUseCase.PatientUseCase, error) {
	patientRepo, err := c.PatientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get patient repository for patient use case: %w", err)
	}

	protector, err := c.Protector()
	if err != nil {
		return nil, fmt.Errorf("failed to get protector for patient use case: %w", err)
	}

	decryptor, err := c.Decryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get decryptor for patient use case: %w", err)
	}

	payloadCipher, err := c.PayloadCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get payload cipher for patient use case: %w", err)
	}

	return patientsUseCase.NewPatientUseCase(patientRepo, protector, decryptor, payloadCipher), nil
}

// initMedicalRecordUseCase creates the medical record use case with all its
// dependencies.
func (c *Container) initMedicalRecordUseCase() (recordsUseCase.MedicalRecordUseCase, error) {
	recordRepo, err := c.MedicalRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record repository for medical record use case: %w", err)
	}

	protector, err := c.Protector()
	if err != nil {
		return nil, fmt.Errorf("failed to get protector for medical record use case: %w", err)
	}

	decryptor, err := c.Decryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get decryptor for medical record use case: %w", err)
	}

	return recordsUseCase.NewMedicalRecordUseCase(recordRepo, protector, decryptor), nil
}

// initConsultationUseCase creates the consultation use case with all its
// dependencies.
func (c *Container) initConsultationUseCase() (recordsUseCase.ConsultationUseCase, error) {
	consultationRepo, err := c.ConsultationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation repository for consultation use case: %w", err)
	}

	protector, err := c.Protector()
	if err != nil {
		return nil, fmt.Errorf("failed to get protector for consultation use case: %w", err)
	}

	decryptor, err := c.Decryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get decryptor for consultation use case: %w", err)
	}

	return recordsUseCase.NewConsultationUseCase(consultationRepo, protector, decryptor), nil
}

// initAppointmentUseCase creates the appointment use case.
func (c *Container) initAppointmentUseCase() (appointmentsUseCase.AppointmentUseCase, error) {
	appointmentRepo, err := c.AppointmentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment repository for appointment use case: %w", err)
	}

	return appointmentsUseCase.NewAppointmentUseCase(appointmentRepo), nil
}

// initConsentUseCase creates the consent use case with all its dependencies.
func (c *Container) initConsentUseCase() (consentsUseCase.ConsentUseCase, error) {
	consentRepo, err := c.ConsentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent repository for consent use case: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for consent use case: %w", err)
	}

	return consentsUseCase.NewConsentUseCase(consentRepo, auditEventUseCase, c.Logger()), nil
}

// initAuditEventUseCase creates the audit event use case with all its
// dependencies.
func (c *Container) initAuditEventUseCase() (auditUseCase.EventUseCase, error) {
	auditEventRepo, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit event use case: %w", err)
	}

	return auditUseCase.NewEventUseCase(auditEventRepo, c.Logger()), nil
}
