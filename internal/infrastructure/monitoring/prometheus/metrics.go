package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric family the platform emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Discovery layer
	DiscoveryRunsTotal    CounterVec
	DiscoveryRunDuration  HistogramVec
	RowsParsedTotal       CounterVec
	RowsRejectedTotal     CounterVec
	RecordsInsertedTotal  CounterVec
	ActiveSessions        GaugeVec

	// Agent/search layer
	AgentRequestsTotal   CounterVec
	AgentRequestDuration HistogramVec
	SearchRequestsTotal  CounterVec

	// Infrastructure
	DBQueryDuration   HistogramVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRunDurationBuckets   = []float64{1, 5, 10, 30, 60, 120, 300, 600}
	DefaultAgentDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every family on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total",
		"Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds",
		"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.DiscoveryRunsTotal = collector.RegisterCounter("discovery_runs_total",
		"Discovery runs", "kind", "outcome")
	m.DiscoveryRunDuration = collector.RegisterHistogram("discovery_run_duration_seconds",
		"Discovery run duration", DefaultRunDurationBuckets, "kind")
	m.RowsParsedTotal = collector.RegisterCounter("rows_parsed_total",
		"Table rows parsed from agent output", "kind")
	m.RowsRejectedTotal = collector.RegisterCounter("rows_rejected_total",
		"Rows rejected during validation", "kind", "reason")
	m.RecordsInsertedTotal = collector.RegisterCounter("records_inserted_total",
		"Records persisted", "entity")
	m.ActiveSessions = collector.RegisterGauge("active_sessions",
		"In-flight discovery sessions", "kind")

	m.AgentRequestsTotal = collector.RegisterCounter("agent_requests_total",
		"LLM agent requests", "agent", "status")
	m.AgentRequestDuration = collector.RegisterHistogram("agent_request_duration_seconds",
		"LLM agent request duration", DefaultAgentDurationBuckets, "agent")
	m.SearchRequestsTotal = collector.RegisterCounter("search_requests_total",
		"Web search requests", "backend", "status")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds",
		"Database query duration", DefaultDBDurationBuckets, "operation")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status",
		"Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total",
		"Total errors", "component", "error_type")

	return m
}

// Recorder methods.  These satisfy the narrow instrumentation interfaces the
// discovery services and repositories accept, so those packages never import
// this one's registration machinery.

func (m *AppMetrics) DiscoveryRun(kind, outcome string, duration time.Duration) {
	m.DiscoveryRunsTotal.WithLabelValues(kind, outcome).Inc()
	m.DiscoveryRunDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *AppMetrics) RowsParsed(kind string, count int) {
	m.RowsParsedTotal.WithLabelValues(kind).Add(float64(count))
}

func (m *AppMetrics) RowsRejected(kind, reason string, count int) {
	m.RowsRejectedTotal.WithLabelValues(kind, reason).Add(float64(count))
}

func (m *AppMetrics) RecordsInserted(entity string, count int) {
	m.RecordsInsertedTotal.WithLabelValues(entity).Add(float64(count))
}

func (m *AppMetrics) AgentRequest(agent string, success bool, duration time.Duration) {
	RecordAgentRequest(m, agent, success, duration)
}

func (m *AppMetrics) SearchRequest(backend string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.SearchRequestsTotal.WithLabelValues(backend, status).Inc()
}

func (m *AppMetrics) DBQuery(operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Helpers

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordAgentRequest(m *AppMetrics, agent string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.AgentRequestsTotal.WithLabelValues(agent, status).Inc()
	m.AgentRequestDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

func RecordDiscoveryRun(m *AppMetrics, kind, outcome string, duration time.Duration) {
	m.DiscoveryRunsTotal.WithLabelValues(kind, outcome).Inc()
	m.DiscoveryRunDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func RecordError(m *AppMetrics, component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

//Personal.AI order the ending
