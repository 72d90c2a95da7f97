package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/agents"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/search"
	"github.com/turtacn/APISource-Intelligence/internal/nlp/classifier"
	"github.com/turtacn/APISource-Intelligence/internal/nlp/normalizer"
	"github.com/turtacn/APISource-Intelligence/internal/retry"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// Finding is one search hit that survived relevance classification.
type Finding struct {
	Title          string                `json:"title"`
	URL            string                `json:"url"`
	SourceKind     search.SourceKind     `json:"source_kind"`
	Classification classifier.Result     `json:"classification"`
	Viability      ViabilityAssessment   `json:"viability"`
}

// AnalysisReport summarizes one patent-relevance run.
type AnalysisReport struct {
	APIName        string    `json:"api_name"`
	QueriesRun     int       `json:"queries_run"`
	ResultsScanned int       `json:"results_scanned"`
	Findings       []Finding `json:"findings"`
	Stopped        bool      `json:"stopped"`
	// RouteSummary is the agent-written synthesis route summary of the
	// strongest finding.  Empty when no summary agent is wired or the
	// agent failed.
	RouteSummary string `json:"route_summary,omitempty"`
	// Suggestions carries retry hints when nothing was found.
	Suggestions []string `json:"suggestions,omitempty"`
}

// RelevanceAnalyzer drives the search -> classify -> viability pipeline for
// synthesis patents.  Searchers are tried in order per query; any backend
// failure falls through to the next, never aborting the run.
type RelevanceAnalyzer struct {
	searchers  []search.Searcher
	policy     classifier.Policy
	maxResults int

	agent       agents.ChatCompleter
	retryCfg    retry.Config
	maxTokens   int
	temperature float64

	metrics MetricsRecorder
	logger  logging.Logger
}

// NewRelevanceAnalyzer wires the analyzer.  At least one searcher is
// required.
func NewRelevanceAnalyzer(
	searchers []search.Searcher,
	policy classifier.Policy,
	maxResults int,
	logger logging.Logger,
) (*RelevanceAnalyzer, error) {
	if len(searchers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryFailed,
			"relevance analyzer needs at least one search backend")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &RelevanceAnalyzer{
		searchers:   searchers,
		policy:      policy,
		maxResults:  maxResults,
		maxTokens:   4096,
		temperature: 0.1,
		logger:      logger.Named("relevance"),
	}, nil
}

// WithSummaryAgent installs an LLM agent that writes a synthesis route
// summary for the strongest finding.  Without an agent the report carries no
// summary.
func (a *RelevanceAnalyzer) WithSummaryAgent(agent agents.ChatCompleter, retryCfg retry.Config) *RelevanceAnalyzer {
	a.agent = agent
	a.retryCfg = retryCfg
	return a
}

// WithMetrics installs a metrics recorder.
func (a *RelevanceAnalyzer) WithMetrics(m MetricsRecorder) *RelevanceAnalyzer {
	a.metrics = m
	return a
}

// WithGeneration overrides the default LLM generation parameters.
// Non-positive values keep the defaults.
func (a *RelevanceAnalyzer) WithGeneration(maxTokens int, temperature float64) *RelevanceAnalyzer {
	if maxTokens > 0 {
		a.maxTokens = maxTokens
	}
	if temperature > 0 {
		a.temperature = temperature
	}
	return a
}

// Analyze runs the pipeline for apiName.  Cancellation is observed between
// external calls via ctx and tracker; a stopped run returns the partial
// report with Stopped set rather than an error.
func (a *RelevanceAnalyzer) Analyze(
	ctx context.Context,
	apiName string,
	tracker *ProgressTracker,
) (*AnalysisReport, error) {
	if strings.TrimSpace(apiName) == "" {
		return nil, apperrors.New(apperrors.ErrCodeEmptyAPIName, "api name required")
	}

	started := time.Now()
	report := &AnalysisReport{APIName: apiName}
	queries := normalizer.SearchQueries(apiName)
	seenURLs := make(map[string]struct{})

	var bestText string
	var bestScore int

	for i, query := range queries {
		if stopped(ctx, tracker) {
			report.Stopped = true
			recordRun(a.metrics, "analysis", outcomeStopped, started)
			return report, nil
		}
		if tracker != nil {
			tracker.Publish(10+80*i/len(queries), "searching: "+query)
		}

		results := a.searchOne(ctx, query)
		report.QueriesRun++

		for _, r := range results {
			if stopped(ctx, tracker) {
				report.Stopped = true
				recordRun(a.metrics, "analysis", outcomeStopped, started)
				return report, nil
			}
			if _, dup := seenURLs[r.URL]; dup || r.URL == "" {
				continue
			}
			seenURLs[r.URL] = struct{}{}
			report.ResultsScanned++

			text := r.Title + " " + r.Snippet
			cls := classifier.ClassifyWithPolicy(text, apiName, a.policy)
			if !cls.Decision {
				continue
			}
			report.Findings = append(report.Findings, Finding{
				Title:          r.Title,
				URL:            r.URL,
				SourceKind:     search.ClassifySource(r.URL),
				Classification: cls,
				Viability:      AssessViability(text),
			})
			if cls.SynthesisScore > bestScore || bestText == "" {
				bestScore = cls.SynthesisScore
				bestText = text
			}
		}
	}

	if len(report.Findings) == 0 {
		report.Suggestions = []string{
			"no synthesis patents found",
			"retry with a salt form of the name (e.g. hydrochloride, phosphate)",
			"retry with the generic compound name",
		}
	} else if a.agent != nil {
		if tracker != nil {
			tracker.Publish(92, "summarizing synthesis route")
		}
		report.RouteSummary = a.summarize(ctx, apiName, bestText)
	}
	recordRun(a.metrics, "analysis", outcomeCompleted, started)
	if tracker != nil {
		tracker.Publish(100, "analysis complete")
	}
	return report, nil
}

// summarize asks the agent for a route summary of the strongest finding.
// A failing agent degrades to an empty summary, never a run failure.
func (a *RelevanceAnalyzer) summarize(ctx context.Context, apiName, text string) string {
	cfg := a.retryCfg
	if cfg.Retryable == nil {
		cfg.Retryable = agents.IsRetryable
	}
	var reply string
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		attemptStart := time.Now()
		var callErr error
		reply, callErr = a.agent.Complete(ctx, agents.Request{
			Messages:    agents.BuildSynthesisAnalysisPrompt(apiName, text),
			MaxTokens:   a.maxTokens,
			Temperature: a.temperature,
		})
		recordAgentRequest(a.metrics, a.agent.Name(), callErr == nil, attemptStart)
		return callErr
	})
	if err != nil {
		a.logger.Warn("route summary agent failed",
			logging.String("agent", a.agent.Name()), logging.Err(err))
		return ""
	}
	return strings.TrimSpace(reply)
}

// searchOne tries each backend in order and returns the first success.
// Failures are logged and swallowed; an all-backends failure yields an empty
// result set.
func (a *RelevanceAnalyzer) searchOne(ctx context.Context, query string) []search.Result {
	for _, s := range a.searchers {
		results, err := s.Search(ctx, query, a.maxResults)
		recordSearchRequest(a.metrics, s.Name(), err == nil)
		if err != nil {
			a.logger.Warn("search backend failed",
				logging.String("backend", s.Name()),
				logging.String("query", query),
				logging.Err(err))
			continue
		}
		return results
	}
	return nil
}

func stopped(ctx context.Context, tracker *ProgressTracker) bool {
	if ctx.Err() != nil {
		return true
	}
	return tracker != nil && tracker.Stopped()
}

//Personal.AI order the ending
