package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order submissions",
	}, []string{"reason"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions by target status",
	}, []string{"to"})

	OrderTransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_rejected_total",
		Help: "Order status transitions rejected by the transition table",
	}, []string{"from", "to"})

	MovementsApprovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_approved_total",
		Help: "Stock movements approved, by direction",
	}, []string{"direction"})

	MovementConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_movement_version_conflicts_total",
		Help: "Stock movement transitions rejected by the version check",
	})

	MovementApplyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_movement_apply_latency_seconds",
		Help:    "Latency of applying an approved movement's stock deltas",
		Buckets: prometheus.DefBuckets,
	})

	WishlistOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_operations_total",
		Help: "Wishlist operations by kind",
	}, []string{"op"})

	StatsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_stats_cache_hits_total",
		Help: "User stats served from the redis cache",
	})

	StatsCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_stats_cache_misses_total",
		Help: "User stats recomputed from the store",
	})

	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_sent_total",
		Help: "Notification emails sent, by kind",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
