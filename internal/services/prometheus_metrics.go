package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	transactionsTotal         *prometheus.CounterVec
	transactionAmount         prometheus.Histogram
	summaryRequestsTotal      prometheus.Counter
	summaryDuration           prometheus.Histogram
	syncRunsTotal             *prometheus.CounterVec
	syncDuration              prometheus.Histogram
	syncEmailsProcessed       *prometheus.CounterVec
	classificationsTotal      *prometheus.CounterVec
	classificationDuration    prometheus.Histogram
	extractionRequestsTotal   *prometheus.CounterVec
	circuitBreakerState       *prometheus.GaugeVec
	authenticationEventsTotal *prometheus.CounterVec
	guestOperationsTotal      *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		transactionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_total",
				Help: "Total number of transaction mutations",
			},
			[]string{"operation", "status"},
		),
		transactionAmount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transaction_amount",
				Help:    "Transaction amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		summaryRequestsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "summary_requests_total",
				Help: "Total number of spending summary computations",
			},
		),
		summaryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "summary_duration_milliseconds",
				Help:    "Spending summary computation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		syncRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_sync_runs_total",
				Help: "Total number of email sync runs",
			},
			[]string{"status"},
		),
		syncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "email_sync_duration_milliseconds",
				Help:    "Email sync run duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		syncEmailsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_sync_emails_total",
				Help: "Total number of emails seen by sync runs",
			},
			[]string{"kind"},
		),
		classificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifications_total",
				Help: "Total number of classification requests",
			},
			[]string{"status"},
		),
		classificationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "classification_duration_milliseconds",
				Help:    "Classification request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		extractionRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extraction_requests_total",
				Help: "Total number of email extraction requests",
			},
			[]string{"status"},
		),
		circuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		authenticationEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		guestOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guest_operations_total",
				Help: "Total number of guest-mode store operations",
			},
			[]string{"operation"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]
	status := tags["status"]

	switch name {
	case "transaction.mutation":
		m.transactionsTotal.WithLabelValues(operation, status).Inc()
	case "summary.computed":
		m.summaryRequestsTotal.Inc()
	case "sync.run":
		if status != "" {
			m.syncRunsTotal.WithLabelValues(status).Inc()
		}
	case "classification.request":
		if status != "" {
			m.classificationsTotal.WithLabelValues(status).Inc()
		}
	case "extraction.request":
		if status != "" {
			m.extractionRequestsTotal.WithLabelValues(status).Inc()
		}
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	case "guest.operation":
		if operation != "" {
			m.guestOperationsTotal.WithLabelValues(operation).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "summary.duration":
		m.summaryDuration.Observe(float64(duration.Milliseconds()))
	case "sync.duration":
		m.syncDuration.Observe(float64(duration.Milliseconds()))
	case "classification.duration":
		m.classificationDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "transaction_amount":
		m.transactionAmount.Observe(value)
	case "circuit_breaker.state":
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	case "sync.emails":
		if kind := tags["kind"]; kind != "" {
			m.syncEmailsProcessed.WithLabelValues(kind).Add(value)
		}
	}
}
