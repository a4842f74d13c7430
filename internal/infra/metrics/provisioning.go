package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		VerifyRequests,
		VerifyDuration,
		ProvisionTotal,
		ProvisionAnomalies,
		ActivationTotal,
		EmailTotal,
	)
}

var (
	// Count of verify-checkout calls grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): bad_json|not_paid|bad_metadata|locked|provider_error|backend_error|unknown
	VerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_verify_requests_total",
			Help: "Count of /verify-checkout calls by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of the verify handler grouped by result.
	VerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_verify_duration_seconds",
			Help:    "Duration of /verify-checkout handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// Provisioning runs by purchase variant and result.
	// result: ok|duplicate_email|already_processed|error
	ProvisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_provision_total",
			Help: "Provisioning saga runs by variant and result.",
		},
		[]string{"variant", "result"},
	)

	// Operator-visible anomalies: an identity exists for an email but no
	// gift record witnesses its provisioning (the crash window between
	// identity creation and witness persistence).
	ProvisionAnomalies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_provision_anomalies_total",
			Help: "Provisioning attempts that found an orphaned identity.",
		},
	)

	// Deferred gift activations by result.
	// result: ok|token_not_found|token_used|wrong_variant|duplicate_email|error
	ActivationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_activation_total",
			Help: "Deferred gift activation attempts by result.",
		},
		[]string{"result"},
	)

	// Outbound transactional emails by kind and delivery status.
	// kind: welcome|gift_recipient|gift_buyer|activation
	// status: sent|error
	EmailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_email_total",
			Help: "Transactional emails by kind and delivery status.",
		},
		[]string{"kind", "status"},
	)
)
