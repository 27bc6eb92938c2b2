package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appointmentsHTTP "github.com/medvault/medvault/internal/appointments/http"
	auditHTTP "github.com/medvault/medvault/internal/audit/http"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	consentsHTTP "github.com/medvault/medvault/internal/consents/http"
	"github.com/medvault/medvault/internal/http"
	"github.com/medvault/medvault/internal/metrics"
	patientsHTTP "github.com/medvault/medvault/internal/patients/http"
	recordsHTTP "github.com/medvault/medvault/internal/records/http"
)

// initHTTPServer creates the HTTP server with the full API router attached.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	patientUseCase, err := c.PatientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get patient use case for http server: %w", err)
	}

	medicalRecordUseCase, err := c.MedicalRecordUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record use case for http server: %w", err)
	}

	consultationUseCase, err := c.ConsultationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation use case for http server: %w", err)
	}

	appointmentUseCase, err := c.AppointmentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment use case for http server: %w", err)
	}

	consentUseCase, err := c.ConsentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent use case for http server: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for http server: %w", err)
	}

	var metricsMiddleware gin.HandlerFunc
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		metricsMiddleware = metrics.HTTPMetricsMiddleware(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	var rateLimitMiddleware gin.HandlerFunc
	if c.config.RateLimitEnabled {
		rateLimitMiddleware = authHTTP.RateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}

	var loginRateLimitMiddleware gin.HandlerFunc
	if c.config.RateLimitLoginEnabled {
		loginRateLimitMiddleware = authHTTP.LoginRateLimitMiddleware(
			c.config.RateLimitLoginRequestsPerSec,
			c.config.RateLimitLoginBurst,
			logger,
		)
	}

	gin.SetMode(c.config.GetGinMode())

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(http.RouterConfig{
		Logger:       logger,
		TokenUseCase: tokenUseCase,
		TokenService: c.TokenService(),

		TokenHandler:         authHTTP.NewTokenHandler(tokenUseCase, c.TokenService(), logger),
		PatientHandler:       patientsHTTP.NewPatientHandler(patientUseCase, logger),
		MedicalRecordHandler: recordsHTTP.NewMedicalRecordHandler(medicalRecordUseCase, logger),
		ConsultationHandler:  recordsHTTP.NewConsultationHandler(consultationUseCase, logger),
		AppointmentHandler:   appointmentsHTTP.NewAppointmentHandler(appointmentUseCase, logger),
		ConsentHandler:       consentsHTTP.NewConsentHandler(consentUseCase, logger),
		AuditEventHandler:    auditHTTP.NewAuditEventHandler(auditEventUseCase, logger),

		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,

		MetricsMiddleware:        metricsMiddleware,
		RateLimitMiddleware:      rateLimitMiddleware,
		LoginRateLimitMiddleware: loginRateLimitMiddleware,
	})

	return server, nil
}
