package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

const serpAPIEndpoint = "https://serpapi.com/search.json"

// SerpAPI searches via serpapi.com, the fallback backend when Google CSE
// quota is exhausted.
type SerpAPI struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerpAPI builds a SerpAPI client.
func NewSerpAPI(apiKey string) *SerpAPI {
	return &SerpAPI{
		apiKey:     apiKey,
		endpoint:   serpAPIEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Searcher.
func (s *SerpAPI) Name() string { return "serpapi" }

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search implements Searcher.
func (s *SerpAPI) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "build serpapi request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "serpapi request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrCodeSearchRequest,
			"serpapi returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "read serpapi response")
	}
	var parsed serpAPIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "decode serpapi response")
	}

	results := make([]Result, 0, len(parsed.OrganicResults))
	for i, item := range parsed.OrganicResults {
		if i >= maxResults {
			break
		}
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  s.Name(),
		})
	}
	return results, nil
}

//Personal.AI order the ending
