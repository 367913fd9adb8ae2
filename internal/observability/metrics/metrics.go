package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	IncidentsReportedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "incidents_reported_total",
			Help: "Total number of submitted incident reports.",
		},
	)

	IncidentUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_updates_total",
			Help: "Total number of incident lifecycle transitions.",
		},
		[]string{"action", "result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of outbound mail notifications.",
		},
		[]string{"result"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthLoginsTotal,
		AuthRegistrationsTotal,
		IncidentsReportedTotal,
		IncidentUpdatesTotal,
		NotificationsTotal,
	)
}
