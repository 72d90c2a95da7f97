// Package classifier scores free text against synthesis and formulation
// keyword sets to decide whether a document is about synthesizing a named
// compound rather than formulating it into a dosage form.  All functions are
// pure and deterministic.
package classifier

import (
	"strings"

	"github.com/turtacn/APISource-Intelligence/internal/nlp/normalizer"
)

// synthesisKeywords indicate process-chemistry content.  Counted as
// non-overlapping substring occurrences.
var synthesisKeywords = []string{
	"synthesis",
	"preparation",
	"synthetic route",
	"chemical process",
	"manufacturing process",
	"reaction",
	"intermediate",
	"coupling",
	"reagent",
	"procedure",
	"example",
	"step",
	"stage",
	"method",
}

// formulationKeywords indicate dosage-form content, the main false-positive
// source in patent corpora since formulation patents cite the compound too.
var formulationKeywords = []string{
	"tablet",
	"capsule",
	"formulation",
	"pharmaceutical composition",
	"solid dosage",
	"excipient",
	"binder",
	"disintegrant",
	"lubricant",
	"coating",
	"granulation",
	"compression",
	"drug delivery",
	"dosage form",
}

const (
	// DefaultSynthesisThreshold is the minimum synthesis score for a
	// positive decision.
	DefaultSynthesisThreshold = 3
	// DefaultSynthesisRatio is the minimum synthesis/formulation score ratio
	// when any formulation keywords are present.
	DefaultSynthesisRatio = 1.2
	// fuzzyMinLen caps the fuzzy probe to variants long enough that a
	// prefix/suffix fragment still identifies the compound.
	fuzzyMinLen = 6
)

// Policy tunes the classification decision.  Zero values fall back to the
// package defaults.
type Policy struct {
	SynthesisThreshold int
	SynthesisRatio     float64
}

func (p Policy) withDefaults() Policy {
	if p.SynthesisThreshold <= 0 {
		p.SynthesisThreshold = DefaultSynthesisThreshold
	}
	if p.SynthesisRatio <= 0 {
		p.SynthesisRatio = DefaultSynthesisRatio
	}
	return p
}

// Result is the classification outcome with its score breakdown, surfaced to
// callers for observability.
type Result struct {
	SynthesisScore   int  `json:"synthesis_score"`
	FormulationScore int  `json:"formulation_score"`
	APIPresent       bool `json:"api_present"`
	FuzzyAPIPresent  bool `json:"fuzzy_api_present"`
	Decision         bool `json:"decision"`
}

// countOccurrences returns the number of non-overlapping occurrences of
// keyword in text.
func countOccurrences(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	return strings.Count(text, keyword)
}

func scoreKeywords(text string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += countOccurrences(text, kw)
	}
	return score
}

// Classify scores text against the synthesis and formulation keyword sets and
// checks for the presence of apiName's lexical variants.  The decision is true
// only when the synthesis score meets the threshold, a variant is present
// (literally or fuzzily), and formulation keywords do not dominate.
//
// Empty text yields zero scores and a false decision.  Ties resolve toward
// exclusion.
func Classify(text, apiName string) Result {
	return ClassifyWithPolicy(text, apiName, Policy{})
}

// ClassifyWithPolicy is Classify with caller-supplied thresholds.
func ClassifyWithPolicy(text, apiName string, policy Policy) Result {
	policy = policy.withDefaults()
	lower := strings.ToLower(text)

	res := Result{
		SynthesisScore:   scoreKeywords(lower, synthesisKeywords),
		FormulationScore: scoreKeywords(lower, formulationKeywords),
	}

	variants := normalizer.Variants(apiName)
	for v := range variants {
		if strings.Contains(lower, v) {
			res.APIPresent = true
			break
		}
	}

	if !res.APIPresent {
		res.FuzzyAPIPresent = fuzzyPresent(lower, variants)
	}

	ratioOK := res.FormulationScore == 0 ||
		float64(res.SynthesisScore) >= float64(res.FormulationScore)*policy.SynthesisRatio

	res.Decision = res.SynthesisScore >= policy.SynthesisThreshold &&
		(res.APIPresent || res.FuzzyAPIPresent) &&
		ratioOK

	return res
}

// fuzzyPresent probes text with fragments of each sufficiently long variant:
// the variant minus its last 2 characters, or its last 6 characters.
func fuzzyPresent(text string, variants map[string]struct{}) bool {
	for v := range variants {
		if len(v) < fuzzyMinLen {
			continue
		}
		prefix := v[:len(v)-2]
		suffix := v[len(v)-6:]
		if strings.Contains(text, prefix) || strings.Contains(text, suffix) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
