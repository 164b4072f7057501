package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlm_registrations_total",
			Help: "Registrations by outcome",
		},
		[]string{"result"},
	)

	IncomeCreditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlm_income_credited_total",
			Help: "Income credited to wallets, by bucket",
		},
		[]string{"bucket"},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlm_withdrawals_total",
			Help: "Withdrawal requests by resulting status",
		},
		[]string{"status"},
	)

	PinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlm_pins_total",
			Help: "Pin lifecycle transitions",
		},
		[]string{"status"},
	)
)
