package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "saathigo", Name: "active_requests", Help: "Ride requests currently in the registry"})
	EventsTotal    = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "saathigo", Name: "events_total", Help: "Inbound events processed, by type"},
		[]string{"type"},
	)
	MatchesComputed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "matches_computed_total", Help: "Match list computations"})
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "broadcasts_total", Help: "Full recompute-and-push cycles"})
	ShareInvites    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "share_invites_total", Help: "Ride share invitations delivered"})
	SharesAccepted  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "shares_accepted_total", Help: "Mutually confirmed ride shares"})
	SharesDeclined  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "shares_declined_total", Help: "Declined ride share invitations"})
	ReapedRequests  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "saathigo", Name: "reaped_requests_total", Help: "Stale searching requests evicted by the reaper"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "saathigo", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "saathigo",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
