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

const googleCSEEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleCSE searches via the Google Custom Search JSON API.
type GoogleCSE struct {
	apiKey     string
	cx         string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleCSE builds a Google Custom Search client for engine cx.
func NewGoogleCSE(apiKey, cx string) *GoogleCSE {
	return &GoogleCSE{
		apiKey:     apiKey,
		cx:         cx,
		endpoint:   googleCSEEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Searcher.
func (g *GoogleCSE) Name() string { return "google_cse" }

type googleCSEResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements Searcher.  The CSE API caps one page at 10 results.
func (g *GoogleCSE) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "build cse request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "google cse request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrCodeSearchRequest,
			"google cse returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "read cse response")
	}
	var parsed googleCSEResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSearchRequest, "decode cse response")
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  g.Name(),
		})
	}
	return results, nil
}

//Personal.AI order the ending
