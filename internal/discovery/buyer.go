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

// BuyerResult summarizes one buyer discovery run.
type BuyerResult struct {
	APIName       string                 `json:"api_name"`
	Country       string                 `json:"country"`
	Existing      []sourcing.BuyerRecord `json:"existing"`
	New           []sourcing.BuyerRecord `json:"new"`
	InsertedCount int                    `json:"inserted_count"`
	Rejections    RejectionCounters      `json:"rejections"`
	RejectedRows  int                    `json:"rejected_rows"`
	AgentErrors   int                    `json:"agent_errors"`
	// RelaxedPass reports whether the wider-net second pass ran.
	RelaxedPass bool `json:"relaxed_pass"`
	Stopped     bool `json:"stopped"`
}

// BuyerConfidence holds the two confidence floors of the buyer flow.  The
// strict pass runs first; the relaxed pass runs only when the strict pass
// accepted nothing.
type BuyerConfidence struct {
	Strict  int
	Relaxed int
}

// BuyerService orchestrates finished-dosage-form buyer discovery with the
// strict-then-relaxed two-pass prompt strategy.
type BuyerService struct {
	agents      []agents.ChatCompleter
	repo        sourcing.BuyerRepository
	confidence  BuyerConfidence
	retryCfg    retry.Config
	events      EventPublisher
	metrics     MetricsRecorder
	logger      logging.Logger
	maxTokens   int
	temperature float64
}

// NewBuyerService wires the service.  Confidence floors of zero fall back to
// 90 strict / 50 relaxed.
func NewBuyerService(
	completers []agents.ChatCompleter,
	repo sourcing.BuyerRepository,
	confidence BuyerConfidence,
	retryCfg retry.Config,
	events EventPublisher,
	logger logging.Logger,
) (*BuyerService, error) {
	if len(completers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryFailed,
			"buyer service needs at least one agent")
	}
	if repo == nil {
		return nil, apperrors.New(apperrors.ErrCodeDiscoveryFailed,
			"buyer service needs a repository")
	}
	if confidence.Strict <= 0 {
		confidence.Strict = 90
	}
	if confidence.Relaxed <= 0 {
		confidence.Relaxed = 50
	}
	if confidence.Strict < confidence.Relaxed {
		return nil, apperrors.Newf(apperrors.ErrCodeValidationPolicy,
			"strict confidence %d below relaxed %d", confidence.Strict, confidence.Relaxed)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BuyerService{
		agents:      completers,
		repo:        repo,
		confidence:  confidence,
		retryCfg:    retryCfg,
		events:      events,
		logger:      logger.Named("buyer"),
		maxTokens:   4096,
		temperature: 0.1,
	}, nil
}

// WithMetrics installs a metrics recorder.
func (s *BuyerService) WithMetrics(m MetricsRecorder) *BuyerService {
	s.metrics = m
	return s
}

// WithGeneration overrides the default LLM generation parameters.
// Non-positive values keep the defaults.
func (s *BuyerService) WithGeneration(maxTokens int, temperature float64) *BuyerService {
	if maxTokens > 0 {
		s.maxTokens = maxTokens
	}
	if temperature > 0 {
		s.temperature = temperature
	}
	return s
}

// buyerPolicy validates parsed buyer rows at the given confidence floor.
func buyerPolicy(minConfidence int) Policy {
	return Policy{
		RequiredColumns:     []string{"company", "form", "confidence", "url"},
		MinConfidence:       minConfidence,
		RequireAPIMentionIn: []string{"product_name", "form", "strength", "verification_source"},
		RequireURL:          true,
	}
}

// Find runs one buyer discovery pass for apiName in country.
func (s *BuyerService) Find(
	ctx context.Context,
	apiName, country string,
	tracker *ProgressTracker,
) (*BuyerResult, error) {
	if strings.TrimSpace(apiName) == "" {
		return nil, apperrors.New(apperrors.ErrCodeEmptyAPIName, "api name required")
	}

	started := time.Now()
	result := &BuyerResult{APIName: apiName, Country: country}
	publish(tracker, 5, "loading known buyers")

	existing, err := s.repo.Query(ctx, apiName, country)
	if err != nil {
		s.logger.Warn("existing-records query failed, continuing with empty skip set",
			logging.Err(err))
	}
	result.Existing = existing

	skip := sourcing.SkipSet{}
	known := make([]string, 0, len(existing))
	for _, rec := range existing {
		skip.Add(rec.Company)
		known = append(known, rec.Company)
	}

	records := s.runPass(ctx, result, tracker, apiName, country, known, skip, false)
	if result.Stopped {
		recordRun(s.metrics, "buyer", outcomeStopped, started)
		return result, nil
	}
	if len(records) == 0 {
		result.RelaxedPass = true
		publish(tracker, 50, "strict pass empty, widening the net")
		records = s.runPass(ctx, result, tracker, apiName, country, known, skip, true)
		if result.Stopped {
			recordRun(s.metrics, "buyer", outcomeStopped, started)
			return result, nil
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
			recordInserted(s.metrics, "buyer", upsert.InsertedCount)
		}
	}

	s.publishEvents(ctx, result)
	recordRun(s.metrics, "buyer", outcomeCompleted, started)
	publish(tracker, 100, "buyer discovery complete")
	return result, nil
}

// runPass prompts every agent once at the pass's confidence floor and
// returns the validated records.  Stopped state is recorded on result.
func (s *BuyerService) runPass(
	ctx context.Context,
	result *BuyerResult,
	tracker *ProgressTracker,
	apiName, country string,
	known []string,
	skip sourcing.SkipSet,
	relaxed bool,
) []sourcing.BuyerRecord {
	minConfidence := s.confidence.Strict
	buildPrompt := agents.BuildStrictBuyerPrompt
	if relaxed {
		minConfidence = s.confidence.Relaxed
		buildPrompt = agents.BuildRelaxedBuyerPrompt
	}

	var records []sourcing.BuyerRecord
	for i, agent := range s.agents {
		if stopped(ctx, tracker) {
			result.Stopped = true
			return records
		}
		publish(tracker, 10+70*i/len(s.agents), "querying agent "+agent.Name())

		reply, err := s.completeWithRetry(ctx, agent, buildPrompt(apiName, country, known))
		if err != nil {
			result.AgentErrors++
			s.logger.Warn("agent failed, moving to next",
				logging.String("agent", agent.Name()), logging.Err(err))
			continue
		}

		table := mdtable.Parse(reply)
		result.RejectedRows += table.Rejected
		recordRowsParsed(s.metrics, "buyer", len(table.Rows))
		recordRowsRejected(s.metrics, "buyer", "parse", table.Rejected)
		if table.Empty() {
			continue
		}

		accepted, counters, err := Validate(table.Rows, apiName, buyerPolicy(minConfidence),
			skip, func(row map[string]string) string { return row["company"] })
		if err != nil {
			// Policy is built locally and always carries required columns.
			s.logger.Error("validation policy rejected", logging.Err(err))
			continue
		}
		mergeCounters(&result.Rejections, counters)
		recordRejections(s.metrics, "buyer", counters)

		for _, row := range accepted {
			records = append(records, rowToBuyer(row, apiName, country))
			known = append(known, row["company"])
		}
	}
	return records
}

func (s *BuyerService) completeWithRetry(
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

func (s *BuyerService) publishEvents(ctx context.Context, result *BuyerResult) {
	if s.events == nil {
		return
	}
	if result.InsertedCount > 0 {
		if err := s.events.RecordsInserted(ctx, "buyer", result.APIName, result.InsertedCount); err != nil {
			s.logger.Warn("event publish failed", logging.Err(err))
		}
	}
	if err := s.events.RunCompleted(ctx, "buyer", result.APIName,
		result.InsertedCount, result.Rejections.Total()+result.RejectedRows); err != nil {
		s.logger.Warn("event publish failed", logging.Err(err))
	}
}

func rowToBuyer(row map[string]string, apiName, country string) sourcing.BuyerRecord {
	rowCountry := row["country"]
	if rowCountry == "" {
		rowCountry = country
	}
	now := time.Now().UTC()
	return sourcing.BuyerRecord{
		Company:            row["company"],
		Form:               row["form"],
		Strength:           row["strength"],
		VerificationSource: row["verification_source"],
		Confidence:         sourcing.ParseConfidence(row["confidence"]),
		URL:                row["url"],
		AdditionalInfo:     row["additional_info"],
		API:                strings.ToLower(strings.TrimSpace(apiName)),
		Country:            rowCountry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

//Personal.AI order the ending
