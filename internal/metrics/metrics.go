package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Auth metrics
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of successful registrations",
		},
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)
	TokenRefreshesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Total number of access tokens issued via refresh",
		},
	)

	// Expense metrics
	ExpensesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "expenses_created_total",
			Help: "Total number of expenses created",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(LoginsTotal)
	prometheus.MustRegister(TokenRefreshesTotal)

	prometheus.MustRegister(ExpensesCreatedTotal)

	prometheus.MustRegister(collectors.NewGoCollector())
	prometheus.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
