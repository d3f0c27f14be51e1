package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/image-embedder/v1/observability"
)

// Operation status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// IncrementOperations increments the operation counter.
// Example: metrics.IncrementOperations("embedding", "embed_image", "bria_attribution_model", "success")
func (m *Metrics) IncrementOperations(component, operation, resource, status string) {
	m.operationsTotal.WithLabelValues(component, operation, resource, status).Inc()
}

// RecordOperationDuration records the duration (in seconds) of an operation.
// Example: defer metrics.RecordOperationDuration(time.Now(), "triton", "infer", "bria_attribution_model")
func (m *Metrics) RecordOperationDuration(start time.Time, component, operation, resource string) {
	m.operationDuration.WithLabelValues(component, operation, resource).Observe(time.Since(start).Seconds())
}

// ObserveEmbeddingDimension records the length of a returned embedding vector.
// Example: metrics.ObserveEmbeddingDimension("bria_attribution_model", 512)
func (m *Metrics) ObserveEmbeddingDimension(model string, dim int) {
	m.embeddingDimension.WithLabelValues(model).Set(float64(dim))
}

// ObserveOperation implements observability.Observer, so a *Metrics can be
// attached to the embedding, triton and assetstore clients:
//
//	client.WithObserver(metricsInstance)
//
// Every operation increments operations_total and records its duration;
// operations reporting a payload size also feed operation_payload_bytes.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	status := StatusSuccess
	if op.Error != nil {
		status = StatusError
	}
	m.operationsTotal.WithLabelValues(op.Component, op.Operation, op.Resource, status).Inc()
	m.operationDuration.WithLabelValues(op.Component, op.Operation, op.Resource).Observe(op.Duration.Seconds())
	if op.Size > 0 {
		m.payloadBytes.WithLabelValues(op.Component, op.Operation).Observe(float64(op.Size))
	}
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
// Used internally by NewMetrics for latency tracking.
func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec safely for resource monitoring.
func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
