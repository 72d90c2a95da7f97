// Package discovery orchestrates manufacturer and buyer discovery runs:
// prompting LLM agents, parsing their tables, validating and deduplicating
// rows, and persisting the survivors.  Validation deliberately biases toward
// under-inclusion: the LLM self-reports confidence and evidence, so this
// stage is the only defense against hallucinated rows.
package discovery

import (
	"strings"

	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/nlp/normalizer"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// Default exclusion keyword sets.  A company whose free-text fields mention
// these is an ingredient supplier or a middleman, not a dosage-form buyer.
var (
	DefaultAPIOnlyKeywords = []string{
		"api manufacturer",
		"api supplier",
		"bulk drug",
		"raw material",
		"active pharmaceutical ingredient supplier",
	}
	DefaultImporterDistributorKeywords = []string{
		"importer",
		"distributor",
		"trading",
		"trader",
		"wholesaler",
	}
)

// Policy configures row validation.  RequiredColumns is mandatory; the other
// fields default sensibly when zero.
type Policy struct {
	// RequiredColumns must be present and non-empty in every accepted row,
	// named by canonical lower_snake keys.
	RequiredColumns []string

	// MinConfidence is the inclusive lower bound applied to the confidence
	// column when one exists.
	MinConfidence int

	// ConfidenceColumn names the confidence cell.  Default "confidence".
	ConfidenceColumn string

	// APIOnlyKeywords and ImporterDistributorKeywords are matched against
	// the concatenated FreeTextFields; any hit rejects the row.
	APIOnlyKeywords             []string
	ImporterDistributorKeywords []string

	// FreeTextFields are the keys concatenated for exclusion-keyword
	// matching.  Default company, additional_info, verification_source.
	FreeTextFields []string

	// RequireAPIMentionIn lists the keys at least one of which must contain
	// the API name or its base form.  Empty disables the check.
	RequireAPIMentionIn []string

	// RequireURL demands a URLColumn cell beginning with http:// or
	// https://.
	RequireURL bool

	// URLColumn names the URL cell.  Default "url".
	URLColumn string
}

func (p Policy) withDefaults() Policy {
	if p.ConfidenceColumn == "" {
		p.ConfidenceColumn = "confidence"
	}
	if p.URLColumn == "" {
		p.URLColumn = "url"
	}
	if p.FreeTextFields == nil {
		p.FreeTextFields = []string{"company", "additional_info", "verification_source"}
	}
	if p.APIOnlyKeywords == nil {
		p.APIOnlyKeywords = DefaultAPIOnlyKeywords
	}
	if p.ImporterDistributorKeywords == nil {
		p.ImporterDistributorKeywords = DefaultImporterDistributorKeywords
	}
	return p
}

// RejectionCounters breaks down why rows were dropped, surfaced to callers
// for observability.
type RejectionCounters struct {
	MissingRequired int `json:"missing_required"`
	LowConfidence   int `json:"low_confidence"`
	ExcludedKeyword int `json:"excluded_keyword"`
	NoAPIMention    int `json:"no_api_mention"`
	BadURL          int `json:"bad_url"`
	Duplicate       int `json:"duplicate"`
}

// Total sums all rejection reasons.
func (c RejectionCounters) Total() int {
	return c.MissingRequired + c.LowConfidence + c.ExcludedKeyword +
		c.NoAPIMention + c.BadURL + c.Duplicate
}

// KeyFunc derives the identity key of a row for skip-set deduplication.
type KeyFunc func(row map[string]string) string

// Validate filters rows against policy, in order, and deduplicates the
// survivors against skip (case-insensitive).  Accepted rows are also added to
// skip so duplicates within the same batch collapse to the first occurrence.
//
// A bad row is never an error; only a malformed policy (no RequiredColumns)
// errors, and it does so before any row is examined.
func Validate(
	rows []map[string]string,
	apiName string,
	policy Policy,
	skip sourcing.SkipSet,
	key KeyFunc,
) ([]map[string]string, RejectionCounters, error) {
	var counters RejectionCounters
	if len(policy.RequiredColumns) == 0 {
		return nil, counters, apperrors.New(apperrors.ErrCodeValidationPolicy,
			"validation policy must define required columns")
	}
	policy = policy.withDefaults()

	base, full := normalizer.Normalize(apiName)
	if skip == nil {
		skip = sourcing.SkipSet{}
	}

	var accepted []map[string]string
rowLoop:
	for _, row := range rows {
		for _, col := range policy.RequiredColumns {
			if strings.TrimSpace(row[col]) == "" {
				counters.MissingRequired++
				continue rowLoop
			}
		}

		if cell, ok := row[policy.ConfidenceColumn]; ok {
			if sourcing.ParseConfidence(cell) < policy.MinConfidence {
				counters.LowConfidence++
				continue
			}
		}

		freeText := concatFields(row, policy.FreeTextFields)
		if containsAny(freeText, policy.APIOnlyKeywords) ||
			containsAny(freeText, policy.ImporterDistributorKeywords) {
			counters.ExcludedKeyword++
			continue
		}

		if len(policy.RequireAPIMentionIn) > 0 &&
			!mentionsAPI(row, policy.RequireAPIMentionIn, base, full) {
			counters.NoAPIMention++
			continue
		}

		if policy.RequireURL {
			url := strings.TrimSpace(row[policy.URLColumn])
			if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
				counters.BadURL++
				continue
			}
		}

		if key != nil {
			k := key(row)
			if skip.Contains(k) {
				counters.Duplicate++
				continue
			}
			skip.Add(k)
		}

		accepted = append(accepted, row)
	}
	return accepted, counters, nil
}

func concatFields(row map[string]string, fields []string) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(strings.ToLower(row[f]))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func mentionsAPI(row map[string]string, fields []string, base, full string) bool {
	for _, f := range fields {
		cell := strings.ToLower(row[f])
		if cell == "" {
			continue
		}
		if (base != "" && strings.Contains(cell, base)) ||
			(full != "" && strings.Contains(cell, full)) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
