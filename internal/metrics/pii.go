package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PIIMetrics defines the interface for recording decrypt attempts on encrypted
// fields. Recording must never block or fail the decrypt path.
type PIIMetrics interface {
	// RecordDecrypt counts one decrypt attempt on an encrypted field. Failed
	// attempts are additionally counted in a dedicated failure counter so the
	// failure rate can be alerted on directly.
	RecordDecrypt(ctx context.Context, entityType, fieldName string, success bool)
}

// piiMetrics implements PIIMetrics using OpenTelemetry metrics.
type piiMetrics struct {
	attemptCounter metric.Int64Counter
	failureCounter metric.Int64Counter
}

// NewPIIMetrics creates a new PIIMetrics implementation using the provided
// meter provider. The namespace parameter is used as a prefix for all metric
// names (e.g., "medvault").
func NewPIIMetrics(meterProvider metric.MeterProvider, namespace string) (PIIMetrics, error) {
	meter := meterProvider.Meter(namespace)

	attemptCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_pii_decrypt_attempts_total", namespace),
		metric.WithDescription("Total number of decrypt attempts on encrypted fields"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt attempt counter: %w", err)
	}

	failureCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_pii_decrypt_failures_total", namespace),
		metric.WithDescription("Total number of failed decrypt attempts on encrypted fields"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt failure counter: %w", err)
	}

	return &piiMetrics{
		attemptCounter: attemptCounter,
		failureCounter: failureCounter,
	}, nil
}

// RecordDecrypt increments the attempt counter, and the failure counter on
// unsuccessful attempts.
func (p *piiMetrics) RecordDecrypt(ctx context.Context, entityType, fieldName string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("entity_type", entityType),
		attribute.String("field_name", fieldName),
		attribute.Bool("success", success),
	}

	p.attemptCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if !success {
		p.failureCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("entity_type", entityType),
				attribute.String("field_name", fieldName),
			),
		)
	}
}

// NoOpPIIMetrics is a no-op implementation of PIIMetrics for when metrics are
// disabled.
type NoOpPIIMetrics struct{}

// NewNoOpPIIMetrics creates a no-op PIIMetrics implementation.
func NewNoOpPIIMetrics() PIIMetrics {
	return &NoOpPIIMetrics{}
}

// RecordDecrypt does nothing when metrics are disabled.
func (n *NoOpPIIMetrics) RecordDecrypt(ctx context.Context, entityType, fieldName string, success bool) {
}
