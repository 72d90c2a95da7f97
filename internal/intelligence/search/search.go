// Package search provides web-search collaborators (Google Custom Search,
// SerpAPI) behind one Searcher interface, plus source classification of
// result URLs into patent and literature domains.
package search

import (
	"context"
	"strings"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	// Source labels the backend that produced the hit.
	Source string `json:"source"`
}

// Searcher runs a web search query.  Implementations own their HTTP
// timeouts; callers own retries and cancellation.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// SourceKind classifies a result URL's origin.
type SourceKind string

const (
	SourcePatent     SourceKind = "patent"
	SourceLiterature SourceKind = "literature"
	SourceOther      SourceKind = "other"
)

// trustedPatentDomains host full-text patent documents worth classifying.
var trustedPatentDomains = []string{
	"patents.google.com",
	"patentscope.wipo.int",
	"worldwide.espacenet.com",
	"freepatentsonline.com",
	"patft.uspto.gov",
	"ppubs.uspto.gov",
}

// trustedLiteratureDomains host process-chemistry literature.
var trustedLiteratureDomains = []string{
	"pubmed.ncbi.nlm.nih.gov",
	"sciencedirect.com",
	"pubs.acs.org",
	"link.springer.com",
	"onlinelibrary.wiley.com",
	"organic-chemistry.org",
}

// ClassifySource maps a result URL onto its source kind by trusted-domain
// membership.
func ClassifySource(url string) SourceKind {
	lower := strings.ToLower(url)
	for _, d := range trustedPatentDomains {
		if strings.Contains(lower, d) {
			return SourcePatent
		}
	}
	for _, d := range trustedLiteratureDomains {
		if strings.Contains(lower, d) {
			return SourceLiterature
		}
	}
	return SourceOther
}

//Personal.AI order the ending
