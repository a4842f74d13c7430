package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		AccessValidations,
		AccessEventsLogged,
	)
}

var (
	// Subscriber access validations by result.
	// result: ok|not_found|forbidden|error
	AccessValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_access_validations_total",
			Help: "Subscriber token validations by result.",
		},
		[]string{"result"},
	)

	// Audit rows appended, including appends that fail (status=error) since
	// the log is a product requirement, not an optimization.
	AccessEventsLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_access_events_total",
			Help: "Access-event audit rows by append status.",
		},
		[]string{"status"},
	)
)
