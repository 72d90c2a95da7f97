package discovery

import "time"

// MetricsRecorder receives discovery instrumentation.  Like EventPublisher,
// a nil recorder disables it without touching the flow.
type MetricsRecorder interface {
	DiscoveryRun(kind, outcome string, duration time.Duration)
	RowsParsed(kind string, count int)
	RowsRejected(kind, reason string, count int)
	RecordsInserted(entity string, count int)
	AgentRequest(agent string, success bool, duration time.Duration)
	SearchRequest(backend string, success bool)
}

// Run outcomes.
const (
	outcomeCompleted = "completed"
	outcomeStopped   = "stopped"
	outcomeFailed    = "failed"
)

func recordRun(m MetricsRecorder, kind, outcome string, started time.Time) {
	if m != nil {
		m.DiscoveryRun(kind, outcome, time.Since(started))
	}
}

func recordRowsParsed(m MetricsRecorder, kind string, count int) {
	if m != nil && count > 0 {
		m.RowsParsed(kind, count)
	}
}

func recordRowsRejected(m MetricsRecorder, kind, reason string, count int) {
	if m != nil && count > 0 {
		m.RowsRejected(kind, reason, count)
	}
}

// recordRejections fans the validator's counters out per reason label.
func recordRejections(m MetricsRecorder, kind string, c RejectionCounters) {
	if m == nil {
		return
	}
	recordRowsRejected(m, kind, "missing_required", c.MissingRequired)
	recordRowsRejected(m, kind, "low_confidence", c.LowConfidence)
	recordRowsRejected(m, kind, "excluded_keyword", c.ExcludedKeyword)
	recordRowsRejected(m, kind, "no_api_mention", c.NoAPIMention)
	recordRowsRejected(m, kind, "bad_url", c.BadURL)
	recordRowsRejected(m, kind, "duplicate", c.Duplicate)
}

func recordInserted(m MetricsRecorder, entity string, count int) {
	if m != nil && count > 0 {
		m.RecordsInserted(entity, count)
	}
}

func recordAgentRequest(m MetricsRecorder, agent string, success bool, started time.Time) {
	if m != nil {
		m.AgentRequest(agent, success, time.Since(started))
	}
}

func recordSearchRequest(m MetricsRecorder, backend string, success bool) {
	if m != nil {
		m.SearchRequest(backend, success)
	}
}

//Personal.AI order the ending
