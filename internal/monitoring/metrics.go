package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	salesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Completed sale submissions per event",
		},
		[]string{"event_id"},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets minted per event",
		},
		[]string{"event_id"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Check-in operations by result",
		},
		[]string{"result"},
	)

	saleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_create_duration_seconds",
			Help:    "End-to-end latency of sale creation",
			Buckets: prometheus.DefBuckets,
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func SaleCreated(eventID string, tickets int, elapsed time.Duration) {
	salesCreated.WithLabelValues(eventID).Inc()
	ticketsIssued.WithLabelValues(eventID).Add(float64(tickets))
	saleDuration.Observe(elapsed.Seconds())
}

func CheckInRecorded(result string) {
	checkIns.WithLabelValues(result).Inc()
}

func HTTPRequest(method, route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
