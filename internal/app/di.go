// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	appointmentsUseCase "github.com/medvault/medvault/internal/appointments/usecase"
	auditUseCase "github.com/medvault/medvault/internal/audit/usecase"
	authService "github.com/medvault/medvault/internal/auth/service"
	authUseCase "github.com/medvault/medvault/internal/auth/usecase"
	"github.com/medvault/medvault/internal/config"
	consentsUseCase "github.com/medvault/medvault/internal/consents/usecase"
	"github.com/medvault/medvault/internal/database"
	"github.com/medvault/medvault/internal/http"
	"github.com/medvault/medvault/internal/metrics"
	patientsUseCase "github.com/medvault/medvault/internal/patients/usecase"
	"github.com/medvault/medvault/internal/pii/clientside"
	piiService "github.com/medvault/medvault/internal/pii/service"
	recordsUseCase "github.com/medvault/medvault/internal/records/usecase"
)

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider

	// PII protection pipeline
	keyManager    piiService.KeyManager
	fieldCodec    piiService.FieldCodec
	kmsService    piiService.KMSService
	protector     piiService.Protector
	decryptor     piiService.Decryptor
	payloadCipher *clientside.PayloadCipher
	piiMetrics    metrics.PIIMetrics

	// Auth
	passwordService authService.PasswordService
	tokenService    authService.TokenService
	userRepo        authUseCase.UserRepository
	tokenRepo       authUseCase.TokenRepository
	userUseCase     authUseCase.UserUseCase
	tokenUseCase    authUseCase.TokenUseCase

	// Domain repositories
	patientRepo       patientsUseCase.PatientRepository
	medicalRecordRepo recordsUseCase.MedicalRecordRepository
	consultationRepo  recordsUseCase.ConsultationRepository
	appointmentRepo   appointmentsUseCase.AppointmentRepository
	consentRepo       consentsUseCase.ConsentRepository
	auditEventRepo    auditUseCase.EventRepository

	// Domain use cases
	patientUseCase       patientsUseCase.PatientUseCase
	medicalRecordUseCase recordsUseCase.MedicalRecordUseCase
	consultationUseCase  recordsUseCase.ConsultationUseCase
	appointmentUseCase   appointmentsUseCase.AppointmentUseCase
	consentUseCase       consentsUseCase.ConsentUseCase
	auditEventUseCase    auditUseCase.EventUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	dbInit                   sync.Once
	txManagerInit            sync.Once
	metricsProviderInit      sync.Once
	piiMetricsInit           sync.Once
	keyManagerInit           sync.Once
	fieldCodecInit           sync.Once
	kmsServiceInit           sync.Once
	protectorInit            sync.Once
	decryptorInit            sync.Once
	payloadCipherInit        sync.Once
	passwordServiceInit      sync.Once
	tokenServiceInit         sync.Once
	userRepoInit             sync.Once
	tokenRepoInit            sync.Once
	userUseCaseInit          sync.Once
	tokenUseCaseInit         sync.Once
	patientRepoInit          sync.Once
	medicalRecordRepoInit    sync.Once
	consultationRepoInit     sync.Once
	appointmentRepoInit      sync.Once
	consentRepoInit          sync.Once
	auditEventRepoInit       sync.Once
	patientUseCaseInit       sync.Once
	medicalRecordUseCaseInit sync.Once
	consultationUseCaseInit  sync.Once
	appointmentUseCaseInit   sync.Once
	consentUseCaseInit       sync.Once
	auditEventUseCaseInit    sync.Once
	httpServerInit           sync.Once
	metricsServerInit        sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			err = fmt.Errorf("failed to create metrics provider: %w", err)
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// PIIMetrics returns the decrypt-attempt metrics recorder. It falls back to a
// no-op implementation when metrics are disabled.
func (c *Container) PIIMetrics() (metrics.PIIMetrics, error) {
	var err error
	c.piiMetricsInit.Do(func() {
		c.piiMetrics, err = c.initPIIMetrics()
		if err != nil {
			c.initErrors["piiMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["piiMetrics"]; exists {
		return nil, storedErr
	}
	return c.piiMetrics, nil
}

// HTTPServer returns the HTTP server instance with the full API router
// attached.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initPIIMetrics creates the decrypt-attempt metrics recorder.
func (c *Container) initPIIMetrics() (metrics.PIIMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for pii metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpPIIMetrics(), nil
	}

	piiMetrics, err := metrics.NewPIIMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create pii metrics: %w", err)
	}
	return piiMetrics, nil
}

// initMetricsServer creates the metrics server instance.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
