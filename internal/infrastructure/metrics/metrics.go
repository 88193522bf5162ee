package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// NotificationsDispatched counts delivery attempts per channel
	// (store, websocket, push) and outcome.
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notification deliveries by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	ShareLinkResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_link_resolutions_total",
			Help: "Share link resolutions by outcome",
		},
		[]string{"outcome"},
	)

	ChatReadOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_read_operations_total",
			Help: "Chat read-state changes by kind",
		},
		[]string{"kind"},
	)

	StatsCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_requests_total",
			Help: "Review stats cache lookups by result",
		},
		[]string{"result"},
	)
)
