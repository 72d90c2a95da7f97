package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/agents"
	"github.com/turtacn/APISource-Intelligence/internal/nlp/mdtable"
	"github.com/turtacn/APISource-Intelligence/internal/retry"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// EventPublisher receives discovery lifecycle events.  A nil publisher
// disables event publishing without touching the discovery flow.
type EventPublisher interface {
	RecordsInserted(ctx context.Context, entity, apiName string, count int) error
	RunCompleted(ctx context.Context, entity, apiName string, inserted, rejected int) error
}

// ManufacturerResult summarizes one manufacturer discovery run.
type ManufacturerResult struct {
	APIName       string                        `json:"api_name"`
	Country       string                        `json:"country"`
	Existing      []sourcing.ManufacturerRecord `json:"existing"`
	New           []sourcing.ManufacturerRecord `json:"new"`
	InsertedCount int                           `json:"inserted_count"`
	Rejections    RejectionCounters             `json:"rejections"`
	RejectedRows  int                           `json:"rejected_rows"`
	AgentErrors   int                           `json:"agent_errors"`
	Stopped       bool                          `json:"stopped"`
}

// ManufacturerService orchestrates API-manufacturer discovery: known records
// are fetched to seed the skip set, each agent is prompted in turn, tables
// are parsed, validated rows become records, and the batch is upserted with
// insert-if-absent semantics.  One failing agent never aborts the run.
type ManufacturerService struct {
	agents      []agents.ChatCompleter
	repo        sourcing.ManufacturerRepository
	retryCfg    retry.Config
	events      EventPublisher
	metrics     MetricsRecorder
	logger      logging.Logger
	maxTokens   int
	temperature float64
}

// NewManufacturerService wires the service.  At least one agent and a
// repository are required; events may be nil.
func NewManufacturerService(
	completers []agents.ChatCompleter,
	repo sourcing.ManufacturerRepository,
	retryCfg retry.Config,
	events EventPublisher,
	logger logging.Logger,
) (*ManufacturerService, error) {
	if len(completers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryFailed,
			"manufacturer service needs at least one agent")
	}
	if repo == nil {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryFailed,
			"manufacturer service needs a repository")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ManufacturerService{
		agents:      completers,
		repo:        repo,
		retryCfg:    retryCfg,
		events:      events,
		logger:      logger.Named("manufacturer"),
		maxTokens:   4096,
		temperature: 0.1,
	}, nil
}

// WithMetrics installs a metrics recorder.  Returns the receiver for
// chaining during wiring.
func (s *ManufacturerService) WithMetrics(m MetricsRecorder) *ManufacturerService {
	s.metrics = m
	return s
}

// WithGeneration overrides the default LLM generation parameters.
// Non-positive values keep the defaults.
func (s *ManufacturerService) WithGeneration(maxTokens int, temperature float64) *ManufacturerService {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	if temperature > 0 {
		s.temperature = temperature
	}
	return s
}

// manufacturerPolicy validates parsed manufacturer rows.  API-only keywords
// are disabled since the rows are supposed to be API manufacturers; middleman
// keywords still apply.
func manufacturerPolicy() Policy {
	return Policy{
		RequiredColumns: []string{"manufacturer", "country"},
		FreeTextFields:  []string{"manufacturer", "source_name"},
		APIOnlyKeywords: []string{},
	}
}

// Discover runs one manufacturer discovery pass for apiName, optionally
// limited to country.  Storage failures degrade to empty reads and zero
// inserts; the run still reports what the agents produced.
func (s *ManufacturerService) Discover(
	ctx context.Context,
	apiName, country string,
	tracker *ProgressTracker,
) (*ManufacturerResult, error) {
	if strings.TrimSpace(apiName) == "" {
		return nil, apperrors.New(apperrors.ErrCodeEmptyAPIName, "api name required")
	}

	started := time.Now()
	result := &ManufacturerResult{APIName: apiName, Country: country}
	publish(tracker, 5, "loading known manufacturers")

	existing, err := s.repo.Query(ctx, apiName, country)
	if err != nil {
		s.logger.Warn("existing-records query failed, continuing with empty skip set",
			logging.Err(err))
	}
	result.Existing = existing

	skip := sourcing.SkipSet{}
	known := make([]string, 0, len(existing))
	for _, rec := range existing {
		skip.Add(rec.Manufacturer)
		known = append(known, rec.Manufacturer)
	}

	var records []sourcing.ManufacturerRecord
	for i, agent := range s.agents {
		if stopped(ctx, tracker) {
			result.Stopped = true
			recordRun(s.metrics, "manufacturer", outcomeStopped, started)
			return result, nil
		}
		publish(tracker, 10+70*i/len(s.agents), "querying agent "+agent.Name())

		reply, err := s.completeWithRetry(ctx, agent,
			agents.BuildManufacturerPrompt(apiName, country, known))
		if err != nil {
			result.AgentErrors++
			s.logger.Warn("agent failed, moving to next",
				logging.String("agent", agent.Name()), logging.Err(err))
			continue
		}

		table := mdtable.Parse(reply)
		result.RejectedRows += table.Rejected
		recordRowsParsed(s.metrics, "manufacturer", len(table.Rows))
		recordRowsRejected(s.metrics, "manufacturer", "parse", table.Rejected)
		if table.Empty() {
			s.logger.Info("agent produced no table", logging.String("agent", agent.Name()))
			continue
		}

		accepted, counters, err := Validate(table.Rows, apiName, manufacturerPolicy(),
			skip, func(row map[string]string) string { return row["manufacturer"] })
		if err != nil {
			recordRun(s.metrics, "manufacturer", outcomeFailed, started)
			return nil, err
		}
		mergeCounters(&result.Rejections, counters)
		recordRejections(s.metrics, "manufacturer", counters)

		for _, row := range accepted {
			records = append(records, rowToManufacturer(row, apiName, agent.Name()))
			known = append(known, row["manufacturer"])
		}
	}

	publish(tracker, 85, "persisting new records")
	if len(records) > 0 {
		upsert, err := s.repo.Upsert(ctx, records)
		if err != nil {
			s.logger.Error("upsert failed, reporting zero inserts", logging.Err(err))
		} else {
			result.New = upsert.Inserted
			result.InsertedCount = upsert.InsertedCount
			recordInserted(s.metrics, "manufacturer", upsert.InsertedCount)
		}
	}

	s.publishEvents(ctx, result)
	recordRun(s.metrics, "manufacturer", outcomeCompleted, started)
	publish(tracker, 100, "manufacturer discovery complete")
	return result, nil
}

func (s *ManufacturerService) completeWithRetry(
	ctx context.Context,
	agent agents.ChatCompleter,
	messages []agents.Message,
) (string, error) {
	var reply string
	cfg := s.retryCfg
	if cfg.Retryable == nil {
		cfg.Retryable = agents.IsRetryable
	}
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		attemptStart := time.Now()
		var callErr error
		reply, callErr = agent.Complete(ctx, agents.Request{
			Messages:    messages,
			MaxTokens:   s.maxTokens,
			Temperature: s.temperature,
		})
		recordAgentRequest(s.metrics, agent.Name(), callErr == nil, attemptStart)
		return callErr
	})
	return reply, err
}

func (s *ManufacturerService) publishEvents(ctx context.Context, result *ManufacturerResult) {
	if s.events == nil {
		return
	}
	if result.InsertedCount > 0 {
		if err := s.events.RecordsInserted(ctx, "manufacturer", result.APIName, result.InsertedCount); err != nil {
			s.logger.Warn("event publish failed", logging.Err(err))
		}
	}
	if err := s.events.RunCompleted(ctx, "manufacturer", result.APIName,
		result.InsertedCount, result.Rejections.Total()+result.RejectedRows); err != nil {
		s.logger.Warn("event publish failed", logging.Err(err))
	}
}

func rowToManufacturer(row map[string]string, apiName, agentName string) sourcing.ManufacturerRecord {
	sourceName := row["source_name"]
	if sourceName == "" {
		sourceName = agentName
	}
	return sourcing.ManufacturerRecord{
		APIName:      strings.ToLower(strings.TrimSpace(apiName)),
		Manufacturer: row["manufacturer"],
		Country:      row["country"],
		USDMF:        sourcing.ParseFlag(row["usdmf"]),
		CEP:          sourcing.ParseFlag(row["cep"]),
		SourceName:   sourceName,
		SourceURL:    row["source_url"],
		ImportedAt:   time.Now().UTC(),
	}
}

func publish(tracker *ProgressTracker, pct int, msg string) {
	if tracker != nil {
		tracker.Publish(pct, msg)
	}
}

func mergeCounters(dst *RejectionCounters, src RejectionCounters) {
	dst.MissingRequired += src.MissingRequired
	dst.LowConfidence += src.LowConfidence
	dst.ExcludedKeyword += src.ExcludedKeyword
	dst.NoAPIMention += src.NoAPIMention
	dst.BadURL += src.BadURL
	dst.Duplicate += src.Duplicate
}

//Personal.AI order the ending
