package discovery

import (
	"regexp"
	"strconv"
	"strings"
)

// Commercial-viability indicators scanned over synthesis-relevant patent
// text.  Positive phrases suggest a route that scales; negative phrases
// suggest laboratory-only chemistry.
var (
	positiveViabilityIndicators = []string{
		"industrial scale",
		"commercial scale",
		"large scale",
		"kilogram",
		"pilot plant",
		"cost effective",
		"high yield",
		"readily available",
		"mild conditions",
		"one pot",
		"continuous process",
	}
	negativeViabilityIndicators = []string{
		"laboratory scale",
		"milligram",
		"low yield",
		"expensive reagent",
		"cryogenic",
		"chromatographic purification",
		"column chromatography",
		"hazardous",
		"pyrophoric",
		"multi-step purification",
	}
)

// Yield statements come in both "85% yield" and "yield: 85%" shapes.
var yieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%\s*(?:isolated\s+)?yield`),
	regexp.MustCompile(`yield\s*(?:of|:)?\s*(\d{1,3}(?:\.\d+)?)\s*%`),
}

// ViabilityLevel bands the 0-100 viability score.
type ViabilityLevel string

const (
	ViabilityHigh     ViabilityLevel = "high"
	ViabilityModerate ViabilityLevel = "moderate"
	ViabilityLow      ViabilityLevel = "low"
)

// ViabilityAssessment is the commercial-viability verdict for one synthesis
// source.
type ViabilityAssessment struct {
	Score           int            `json:"score"`
	Level           ViabilityLevel `json:"level"`
	PositiveSignals []string       `json:"positive_signals"`
	NegativeSignals []string       `json:"negative_signals"`
	Yields          []float64      `json:"yields"`
	Recommendation  string         `json:"recommendation"`
}

// ExtractYields pulls reported percentage yields out of text, deduplicated
// in order of appearance and capped at 100.
func ExtractYields(text string) []float64 {
	lower := strings.ToLower(text)
	seen := make(map[float64]struct{})
	var yields []float64
	for _, re := range yieldPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v > 100 {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			yields = append(yields, v)
		}
	}
	return yields
}

// AssessViability scores text for commercial synthesis viability.  The score
// starts neutral at 50, moves 8 points per indicator hit, and shifts with the
// best reported yield.  Empty text scores 0 with a low level.
func AssessViability(text string) ViabilityAssessment {
	if strings.TrimSpace(text) == "" {
		return ViabilityAssessment{Level: ViabilityLow, Recommendation: "no synthesis text to assess"}
	}
	lower := strings.ToLower(text)

	a := ViabilityAssessment{Score: 50}
	for _, ind := range positiveViabilityIndicators {
		if strings.Contains(lower, ind) {
			a.PositiveSignals = append(a.PositiveSignals, ind)
			a.Score += 8
		}
	}
	for _, ind := range negativeViabilityIndicators {
		if strings.Contains(lower, ind) {
			a.NegativeSignals = append(a.NegativeSignals, ind)
			a.Score -= 8
		}
	}

	a.Yields = ExtractYields(lower)
	if best := bestYield(a.Yields); best > 0 {
		switch {
		case best >= 80:
			a.Score += 10
		case best < 40:
			a.Score -= 10
		}
	}

	if a.Score > 100 {
		a.Score = 100
	}
	if a.Score < 0 {
		a.Score = 0
	}

	switch {
	case a.Score >= 75:
		a.Level = ViabilityHigh
		a.Recommendation = "route looks commercially viable; prioritize for process development"
	case a.Score >= 50:
		a.Level = ViabilityModerate
		a.Recommendation = "route may be viable; review scale-up risks before committing"
	default:
		a.Level = ViabilityLow
		a.Recommendation = "route appears laboratory-scale; keep searching for alternatives"
	}
	return a
}

func bestYield(yields []float64) float64 {
	best := 0.0
	for _, y := range yields {
		if y > best {
			best = y
		}
	}
	return best
}

//Personal.AI order the ending
