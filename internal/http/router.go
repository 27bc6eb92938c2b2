package http

import (
	"log/slog"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appointmentsHTTP "github.com/medvault/medvault/internal/appointments/http"
	auditHTTP "github.com/medvault/medvault/internal/audit/http"
	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authHTTP "github.com/medvault/medvault/internal/auth/http"
	authService "github.com/medvault/medvault/internal/auth/service"
	authUseCase "github.com/medvault/medvault/internal/auth/usecase"
	consentsHTTP "github.com/medvault/medvault/internal/consents/http"
	patientsHTTP "github.com/medvault/medvault/internal/patients/http"
	recordsHTTP "github.com/medvault/medvault/internal/records/http"
)

// RouterConfig holds the handlers and middleware used to assemble the API
// router. Middleware entries may be nil, in which case they are skipped.
type RouterConfig struct {
	Logger *slog.Logger

	// Authentication dependencies for the bearer token middleware.
	TokenUseCase authUseCase.TokenUseCase
	TokenService authService.TokenService

	TokenHandler         *authHTTP.TokenHandler
	PatientHandler       *patientsHTTP.PatientHandler
	MedicalRecordHandler *recordsHTTP.MedicalRecordHandler
	ConsultationHandler  *recordsHTTP.ConsultationHandler
	AppointmentHandler   *appointmentsHTTP.AppointmentHandler
	ConsentHandler       *consentsHTTP.ConsentHandler
	AuditEventHandler    *auditHTTP.AuditEventHandler

	CORSEnabled      bool
	CORSAllowOrigins string

	MetricsMiddleware        gin.HandlerFunc
	RateLimitMiddleware      gin.HandlerFunc
	LoginRateLimitMiddleware gin.HandlerFunc
}

// SetupRouter builds the API router and attaches it to the server.
//
// Route-level authorization covers the coarse role requirements; ownership
// checks (a patient reaching only their own resources) live in the handlers,
// which need the resource loaded before they can decide.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(cfg.Logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.Logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Login is the only unauthenticated API route. It gets an IP-based rate
	// limit instead of the per-user one.
	login := router.Group("/v1/auth")
	if cfg.LoginRateLimitMiddleware != nil {
		login.Use(cfg.LoginRateLimitMiddleware)
	}
	login.POST("/login", cfg.TokenHandler.LoginHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(cfg.TokenUseCase, cfg.TokenService, cfg.Logger))
	if cfg.RateLimitMiddleware != nil {
		v1.Use(cfg.RateLimitMiddleware)
	}

	clinicians := authHTTP.RequireRoleMiddleware(cfg.Logger, authDomain.RoleDoctor, authDomain.RoleAdmin)
	admins := authHTTP.RequireRoleMiddleware(cfg.Logger, authDomain.RoleAdmin)

	// Auth
	v1.POST("/auth/logout", cfg.TokenHandler.LogoutHandler)
	v1.GET("/auth/me", cfg.TokenHandler.MeHandler)

	// Patients
	v1.POST("/patients", clinicians, cfg.PatientHandler.CreatePatientHandler)
	v1.GET("/patients", clinicians, cfg.PatientHandler.ListPatientsHandler)
	v1.GET("/patients/:id", cfg.PatientHandler.GetPatientHandler)
	v1.PUT("/patients/:id", cfg.PatientHandler.UpdatePatientHandler)
	v1.PUT("/patients/:id/encrypted", cfg.PatientHandler.UpdatePatientEncryptedHandler)
	v1.DELETE("/patients/:id", admins, cfg.PatientHandler.DeletePatientHandler)

	// Medical records
	v1.POST("/medical-records", clinicians, cfg.MedicalRecordHandler.CreateMedicalRecordHandler)
	v1.GET("/medical-records/:id", cfg.MedicalRecordHandler.GetMedicalRecordHandler)
	v1.PUT("/medical-records/:id", clinicians, cfg.MedicalRecordHandler.UpdateMedicalRecordHandler)
	v1.DELETE("/medical-records/:id", admins, cfg.MedicalRecordHandler.DeleteMedicalRecordHandler)
	v1.GET("/patients/:id/medical-records", cfg.MedicalRecordHandler.ListMedicalRecordsByPatientHandler)

	// Consultations
	v1.POST("/consultations", clinicians, cfg.ConsultationHandler.CreateConsultationHandler)
	v1.GET("/consultations/:id", cfg.ConsultationHandler.GetConsultationHandler)
	v1.PUT("/consultations/:id", clinicians, cfg.ConsultationHandler.UpdateConsultationHandler)
	v1.DELETE("/consultations/:id", admins, cfg.ConsultationHandler.DeleteConsultationHandler)
	v1.GET("/patients/:id/consultations", cfg.ConsultationHandler.ListConsultationsByPatientHandler)

	// Appointments
	v1.POST("/appointments", cfg.AppointmentHandler.CreateAppointmentHandler)
	v1.GET("/appointments", clinicians, cfg.AppointmentHandler.ListMyScheduleHandler)
	v1.GET("/appointments/:id", cfg.AppointmentHandler.GetAppointmentHandler)
	v1.PATCH("/appointments/:id/status", cfg.AppointmentHandler.ChangeAppointmentStatusHandler)
	v1.DELETE("/appointments/:id", admins, cfg.AppointmentHandler.DeleteAppointmentHandler)
	v1.GET("/patients/:id/appointments", cfg.AppointmentHandler.ListAppointmentsByPatientHandler)

	// Consents
	v1.POST("/consents", cfg.ConsentHandler.GrantConsentHandler)
	v1.POST("/consents/:id/revoke", cfg.ConsentHandler.RevokeConsentHandler)
	v1.GET("/consents/:id", cfg.ConsentHandler.GetConsentHandler)
	v1.GET("/patients/:id/consents", cfg.ConsentHandler.ListConsentsByPatientHandler)

	// Audit trail
	v1.GET("/audit-events", admins, cfg.AuditEventHandler.ListAuditEventsHandler)

	s.router = router
}
