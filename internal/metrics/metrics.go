// Package metrics exposes Prometheus counters for the appointment service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dentabook"

// Recorder is what the appointment service reports to.
type Recorder interface {
	RecordBooked(service string)
	RecordUpdated()
	RecordCancelled()
	RecordRejected(operation, reason string)
	RecordAvailabilityCheck(available bool)
	RecordOperationLatency(operation string, d time.Duration)
	RecordPersistenceFailure()
	RecordPublish(topic, eventType string, d time.Duration, err error)
}

type Collector struct {
	booked              *prometheus.CounterVec
	updated             prometheus.Counter
	cancelled           prometheus.Counter
	rejected            *prometheus.CounterVec
	availabilityChecks  *prometheus.CounterVec
	operationLatency    *prometheus.HistogramVec
	persistenceFailures prometheus.Counter
	published           *prometheus.CounterVec
	publishLatency      prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		booked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_booked_total",
			Help:      "Appointments booked, by service.",
		}, []string{"service"}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_updated_total",
			Help:      "Appointments updated.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_cancelled_total",
			Help:      "Appointments cancelled.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Scheduling requests rejected, by operation and reason.",
		}, []string{"operation", "reason"}),
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability checks, by outcome.",
		}, []string{"available"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of scheduling operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		persistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Saves that failed after an in-memory mutation.",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Kafka event publishes, by topic, event type and result.",
		}, []string{"topic", "event_type", "result"}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_publish_duration_seconds",
			Help:      "Kafka publish latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.booked,
		c.updated,
		c.cancelled,
		c.rejected,
		c.availabilityChecks,
		c.operationLatency,
		c.persistenceFailures,
		c.published,
		c.publishLatency,
	)

	return c
}

func (c *Collector) RecordBooked(service string) {
	c.booked.WithLabelValues(service).Inc()
}

func (c *Collector) RecordUpdated() {
	c.updated.Inc()
}

func (c *Collector) RecordCancelled() {
	c.cancelled.Inc()
}

func (c *Collector) RecordRejected(operation, reason string) {
	c.rejected.WithLabelValues(operation, reason).Inc()
}

func (c *Collector) RecordAvailabilityCheck(available bool) {
	label := "false"
	if available {
		label = "true"
	}
	c.availabilityChecks.WithLabelValues(label).Inc()
}

func (c *Collector) RecordOperationLatency(operation string, d time.Duration) {
	c.operationLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordPersistenceFailure() {
	c.persistenceFailures.Inc()
}

// RecordPublish matches the kafka metrics middleware observer signature.
func (c *Collector) RecordPublish(topic, eventType string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.published.WithLabelValues(topic, eventType, result).Inc()
	c.publishLatency.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordBooked(string)                                    {}
func (Nop) RecordUpdated()                                         {}
func (Nop) RecordCancelled()                                       {}
func (Nop) RecordRejected(string, string)                          {}
func (Nop) RecordAvailabilityCheck(bool)                           {}
func (Nop) RecordOperationLatency(string, time.Duration)           {}
func (Nop) RecordPersistenceFailure()                              {}
func (Nop) RecordPublish(string, string, time.Duration, error)     {}
