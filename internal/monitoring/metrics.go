// Package monitoring exposes Prometheus metrics for the registration and
// validation pipelines.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_created_total",
			Help: "Registrations created, by initial payment status",
		},
		[]string{"payment_status"},
	)

	registrationsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_cancelled_total",
			Help: "Registrations cancelled by their participant",
		},
	)

	paymentDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_decisions_total",
			Help: "Organizer payment decisions",
		},
		[]string{"decision"},
	)

	entryValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_validations_total",
			Help: "Entry validation outcomes",
		},
		[]string{"status"},
	)

	entryValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "entry_validation_duration_seconds",
			Help:    "Duration of entry validation including the consume transaction",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// TrackRegistrationCreated records a successful registration.
func TrackRegistrationCreated(paymentStatus string) {
	registrationsCreated.WithLabelValues(paymentStatus).Inc()
}

// TrackRegistrationCancelled records a participant cancellation.
func TrackRegistrationCancelled() {
	registrationsCancelled.Inc()
}

// TrackPaymentDecision records an organizer accept/reject verdict.
func TrackPaymentDecision(decision string) {
	paymentDecisions.WithLabelValues(decision).Inc()
}

// TrackEntryValidation records a scan outcome and its duration.
func TrackEntryValidation(status string, duration time.Duration) {
	entryValidations.WithLabelValues(status).Inc()
	entryValidationDuration.Observe(duration.Seconds())
}
