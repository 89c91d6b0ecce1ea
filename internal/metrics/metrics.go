package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the webhook ingestion pipeline and CRM sync.
var (
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"source"},
	)

	WebhookDuplicatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_duplicates_total",
			Help: "Total number of webhook deliveries deduplicated by the event ledger",
		},
		[]string{"source"},
	)

	WebhookInvalidSignaturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_invalid_signatures_total",
			Help: "Total number of webhook deliveries rejected at the signature check",
		},
		[]string{"source"},
	)

	WebhookProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_seconds",
			Help:    "Duration of webhook processing",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	HubspotSyncsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hubspot_syncs_total",
			Help: "Total number of HubSpot sync attempts",
		},
	)

	HubspotSyncFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hubspot_sync_failures_total",
			Help: "Total number of HubSpot syncs that did not complete",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(WebhookEventsTotal)
	prometheus.MustRegister(WebhookDuplicatesTotal)
	prometheus.MustRegister(WebhookInvalidSignaturesTotal)
	prometheus.MustRegister(WebhookProcessingDuration)
	prometheus.MustRegister(HubspotSyncsTotal)
	prometheus.MustRegister(HubspotSyncFailuresTotal)
}
