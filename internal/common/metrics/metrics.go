// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grant_applications_created_total",
			Help: "Total number of applications created",
		},
		[]string{"status"},
	)

	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grant_applications_submitted_total",
			Help: "Total number of applications moved to submitted",
		},
	)

	SectionsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grant_sections_saved_total",
			Help: "Total number of section saves by result",
		},
		[]string{"result"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grant_webhook_deliveries_total",
			Help: "Total number of submission webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	AuthCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grant_auth_cache_lookups_total",
			Help: "Auth token cache lookups by result",
		},
		[]string{"result"},
	)
)

// Section save results.
const (
	SectionCreated = "created"
	SectionUpdated = "updated"
	SectionFailed  = "failed"
)
