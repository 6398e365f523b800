package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all production-service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Temporal metrics
	WorkflowsStarted    *prometheus.CounterVec
	WorkflowsCompleted  *prometheus.CounterVec
	ActivitiesCompleted *prometheus.CounterVec

	// Business metrics
	JobsCreated      *prometheus.CounterVec
	JobsFinalized    *prometheus.CounterVec
	StepsCompleted   *prometheus.CounterVec
	GoodsRejected    *prometheus.CounterVec
	VersionConflicts *prometheus.CounterVec
	StockSyncFailures *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "mes",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of Kafka events published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "topic"},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "collection", "operation"},
	)

	m.WorkflowsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "temporal_workflows_started_total",
			Help:      "Total number of Temporal workflows started",
		},
		[]string{"service", "workflow_type"},
	)

	m.WorkflowsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "temporal_workflows_completed_total",
			Help:      "Total number of Temporal workflows completed",
		},
		[]string{"service", "workflow_type", "status"},
	)

	m.ActivitiesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "temporal_activities_completed_total",
			Help:      "Total number of Temporal activities completed",
		},
		[]string{"service", "activity_type", "status"},
	)

	m.JobsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "jobs_created_total",
			Help:      "Total number of production jobs created",
		},
		[]string{"service", "source"},
	)

	m.JobsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "jobs_finalized_total",
			Help:      "Total number of jobs closed by final inspection",
		},
		[]string{"service", "result"},
	)

	m.StepsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "steps_completed_total",
			Help:      "Total number of manufacturing steps completed",
		},
		[]string{"service", "step_type"},
	)

	m.GoodsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "goods_rejected_total",
			Help:      "Total quantity of goods rejected at steps",
		},
		[]string{"service", "step_type"},
	)

	m.VersionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "job_version_conflicts_total",
			Help:      "Total number of optimistic concurrency conflicts on job saves",
		},
		[]string{"service", "operation"},
	)

	m.StockSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "stock_sync_failures_total",
			Help:      "Total number of stock ledger projection failures",
		},
		[]string{"service", "ledger"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.WorkflowsStarted,
		m.WorkflowsCompleted,
		m.ActivitiesCompleted,
		m.JobsCreated,
		m.JobsFinalized,
		m.StepsCompleted,
		m.GoodsRejected,
		m.VersionConflicts,
		m.StockSyncFailures,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordKafkaPublish records a Kafka publish event
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordWorkflowStarted records a workflow start
func (m *Metrics) RecordWorkflowStarted(workflowType string) {
	m.WorkflowsStarted.WithLabelValues(m.serviceName, workflowType).Inc()
}

// RecordWorkflowCompleted records a workflow completion
func (m *Metrics) RecordWorkflowCompleted(workflowType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.WorkflowsCompleted.WithLabelValues(m.serviceName, workflowType, status).Inc()
}

// RecordActivityCompleted records an activity completion
func (m *Metrics) RecordActivityCompleted(activityType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ActivitiesCompleted.WithLabelValues(m.serviceName, activityType, status).Inc()
}

// RecordJobCreated records a job creation
func (m *Metrics) RecordJobCreated(source string) {
	m.JobsCreated.WithLabelValues(m.serviceName, source).Inc()
}

// RecordJobFinalized records a job finalization
func (m *Metrics) RecordJobFinalized(result string) {
	m.JobsFinalized.WithLabelValues(m.serviceName, result).Inc()
}

// RecordStepCompleted records a step completion
func (m *Metrics) RecordStepCompleted(stepType string) {
	m.StepsCompleted.WithLabelValues(m.serviceName, stepType).Inc()
}

// RecordGoodsRejected records rejected quantity at a step
func (m *Metrics) RecordGoodsRejected(stepType string, quantity int) {
	m.GoodsRejected.WithLabelValues(m.serviceName, stepType).Add(float64(quantity))
}

// RecordVersionConflict records an optimistic concurrency conflict
func (m *Metrics) RecordVersionConflict(operation string) {
	m.VersionConflicts.WithLabelValues(m.serviceName, operation).Inc()
}

// RecordStockSyncFailure records a failed stock ledger projection
func (m *Metrics) RecordStockSyncFailure(ledger string) {
	m.StockSyncFailures.WithLabelValues(m.serviceName, ledger).Inc()
}

// SetCircuitBreakerState records circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
