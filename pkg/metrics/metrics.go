// Package metrics exposes prometheus collectors for the transaction engine
// and the notification dispatcher. A nil *Collector is valid and records
// nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "smartbank"

// Collector holds every collector on its own registry.
type Collector struct {
	registry *prometheus.Registry

	transactionsTotal   *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	admissionRejected   prometheus.Counter
	lockTimeouts        prometheus.Counter

	notificationsTotal *prometheus.CounterVec
	queueSaturated     prometheus.Counter
}

// NewCollector creates a collector registered under namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Transactions processed by kind, final status and failure code",
		},
		[]string{"kind", "status", "code"},
	)
	c.transactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transaction_duration_seconds",
			Help:      "Time from request to recorded outcome",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"},
	)
	c.admissionRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "admission_rejected_total",
		Help:      "Requests denied by the rate limiter",
	})
	c.lockTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "lock_timeouts_total",
		Help:      "Mutations aborted waiting for an account lock",
	})
	c.notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "delivered_total",
			Help:      "Notification deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)
	c.queueSaturated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "queue_saturated_total",
		Help:      "Submissions rejected because the queue was full",
	})

	c.registry.MustRegister(
		c.transactionsTotal,
		c.transactionDuration,
		c.admissionRejected,
		c.lockTimeouts,
		c.notificationsTotal,
		c.queueSaturated,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordTransaction records one engine outcome.
func (c *Collector) RecordTransaction(kind, status, code string, duration time.Duration) {
	if c == nil {
		return
	}
	c.transactionsTotal.WithLabelValues(kind, status, code).Inc()
	c.transactionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordAdmissionRejected counts a rate limited request.
func (c *Collector) RecordAdmissionRejected() {
	if c == nil {
		return
	}
	c.admissionRejected.Inc()
}

// RecordLockTimeout counts an aborted lock wait.
func (c *Collector) RecordLockTimeout() {
	if c == nil {
		return
	}
	c.lockTimeouts.Inc()
}

// RecordDelivery records a notification delivery attempt.
func (c *Collector) RecordDelivery(channel string, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.notificationsTotal.WithLabelValues(channel, result).Inc()
}

// RecordQueueSaturated counts a rejected submission.
func (c *Collector) RecordQueueSaturated() {
	if c == nil {
		return
	}
	c.queueSaturated.Inc()
}

// RegisterQueueDepth exposes depth as the dispatcher queue gauge.
func (c *Collector) RegisterQueueDepth(namespace string, depth func() int) {
	if c == nil {
		return
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "queue_depth",
			Help:      "Notifications waiting for a worker",
		},
		func() float64 { return float64(depth()) },
	))
}
