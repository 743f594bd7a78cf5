package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_sessions_created_total",
		Help: "Total number of storefront sessions created",
	})

	SessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_sessions_evicted_total",
		Help: "Total number of idle sessions evicted",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_active_sessions",
		Help: "Sessions currently held by the in-memory store",
	})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Total number of cart operations",
	}, []string{"operation"})

	CheckoutTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_transitions_total",
		Help: "Checkout phase transitions by target phase",
	}, []string{"to"})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_rejected_total",
		Help: "Rejected checkout transitions",
	}, []string{"action"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total number of simulated orders placed",
	})

	AdviceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_advice_requests_total",
		Help: "Advisory requests by outcome",
	}, []string{"outcome"})

	AdviceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_advice_latency_seconds",
		Help:    "Latency of advisory service calls",
		Buckets: prometheus.DefBuckets,
	})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_publish_failed_total",
		Help: "Storefront events that could not be published",
	}, []string{"event_type"})

	InsightsEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_insights_events_total",
		Help: "Storefront events consumed by the insights worker",
	}, []string{"event_type"})

	InsightsBasketItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_insights_basket_items",
		Help:    "Items per placed order",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	InsightsSalesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_insights_sales_rand_total",
		Help: "Sum of placed order subtotals in rand",
	})

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
