package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	paymentsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_processed_total",
			Help:      "Total number of successfully processed payment confirmations",
		},
	)

	paymentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_failed_total",
			Help:      "Total number of failed payment confirmation attempts",
		},
	)

	paymentsDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "kafka_consumer",
			Name:      "payments_dlq_total",
			Help:      "Total number of payment confirmations written to DLQ",
		},
	)

	commitErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "kafka_consumer",
			Name:      "commit_errors_total",
			Help:      "Total number of Kafka commit errors",
		},
	)

	paymentProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "market_service",
			Subsystem: "kafka_consumer",
			Name:      "payment_processing_duration_seconds",
			Help:      "Histogram of payment confirmation processing durations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

var (
	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "http",
			Name:      "orders_created_total",
			Help:      "Total number of orders created over HTTP",
		},
	)

	quotesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "market_service",
			Subsystem: "http",
			Name:      "quotes_sent_total",
			Help:      "Total number of quotes sent for custom lists",
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		paymentsProcessed,
		paymentsFailed,
		paymentsDLQ,
		commitErrors,
		paymentProcessingDuration,

		ordersCreated,
		quotesSent,
	)
}
