package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "pizzeria"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_registrations_total",
			Help:      "Total number of registration attempts.",
		},
		[]string{"provider", "result"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Total number of sign-in attempts.",
		},
		[]string{"provider", "result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_tokens_issued_total",
			Help:      "Total number of tokens issued, by purpose.",
		},
		[]string{"purpose"},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Total number of account emails dispatched.",
		},
		[]string{"kind", "result"},
	)

	OrdersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of order placement attempts.",
		},
		[]string{"result"},
	)

	ReviewsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_created_total",
			Help:      "Total number of review submissions.",
		},
		[]string{"result"},
	)
)

// MustRegister registers every collector with reg. It panics on duplicates.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		RegistrationsTotal,
		LoginsTotal,
		TokensIssuedTotal,
		EmailsTotal,
		OrdersPlacedTotal,
		ReviewsCreatedTotal,
	)
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
