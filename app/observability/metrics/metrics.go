package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ExportRequestsTotal     metric.Int64Counter
	MailSendErrorsTotal     metric.Int64Counter
	FavoriteConflictsTotal  metric.Int64Counter
	LoginFailuresTotal      metric.Int64Counter
	CsvSerializationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments only once.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("filmotheque-api")
		var err error
		m := &AppMetrics{}

		m.ExportRequestsTotal, err = meter.Int64Counter(
			"csv_export_requests_total",
			metric.WithDescription("Total number of CSV export requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create csv_export_requests_total: %v", err)
		}

		m.MailSendErrorsTotal, err = meter.Int64Counter(
			"mail_send_errors_total",
			metric.WithDescription("Total number of failed mail deliveries"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create mail_send_errors_total: %v", err)
		}

		m.FavoriteConflictsTotal, err = meter.Int64Counter(
			"favorite_conflicts_total",
			metric.WithDescription("Total number of duplicate add-to-favorites attempts"),
			metric.WithUnit("{conflict}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create favorite_conflicts_total: %v", err)
		}

		m.LoginFailuresTotal, err = meter.Int64Counter(
			"login_failures_total",
			metric.WithDescription("Total number of rejected login attempts"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create login_failures_total: %v", err)
		}

		m.CsvSerializationSeconds, err = meter.Float64Histogram(
			"csv_serialization_duration_seconds",
			metric.WithDescription("Duration of CSV serialization in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create csv_serialization_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
