package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// DiscoveryRequest starts a discovery or analysis run.
type DiscoveryRequest struct {
	APIName string `json:"api_name"`
	Country string `json:"country,omitempty"`
}

// SessionStarted acknowledges an accepted run.
type SessionStarted struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// Session lifecycle states as reported by the server.
const (
	SessionRunning = "running"
	SessionDone    = "done"
	SessionStopped = "stopped"
	SessionFailed  = "failed"
)

// Session is the stored state of one run.  Result shape depends on Kind.
type Session struct {
	ID        string          `json:"id"`
	APIName   string          `json:"api_name"`
	Country   string          `json:"country"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Finished reports whether the session reached a terminal state.
func (s *Session) Finished() bool {
	switch s.Status {
	case SessionDone, SessionStopped, SessionFailed:
		return true
	default:
		return false
	}
}

// ProgressEvent is one step update from a running session.
type ProgressEvent struct {
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Progress is the buffered progress of a session since the last poll.
type Progress struct {
	SessionID string          `json:"session_id"`
	Status    string          `json:"status"`
	Events    []ProgressEvent `json:"events"`
}

// ManufacturerRecord mirrors the server's stored manufacturer row.
type ManufacturerRecord struct {
	ID           int64     `json:"id"`
	APIName      string    `json:"api_name"`
	Manufacturer string    `json:"manufacturer"`
	Country      string    `json:"country"`
	USDMF        string    `json:"usdmf"`
	CEP          string    `json:"cep"`
	SourceName   string    `json:"source_name"`
	SourceURL    string    `json:"source_url"`
	ImportedAt   time.Time `json:"imported_at"`
}

// BuyerRecord mirrors the server's stored buyer row.
type BuyerRecord struct {
	ID                 int64     `json:"id"`
	Company            string    `json:"company"`
	Form               string    `json:"form"`
	Strength           string    `json:"strength"`
	VerificationSource string    `json:"verification_source"`
	Confidence         int       `json:"confidence"`
	URL                string    `json:"url"`
	AdditionalInfo     string    `json:"additional_info"`
	API                string    `json:"api"`
	Country            string    `json:"country"`
}

// ManufacturerRecords is the paged-less record listing response.
type ManufacturerRecords struct {
	Records []ManufacturerRecord `json:"records"`
	Count   int                  `json:"count"`
}

// BuyerRecords is the buyer record listing response.
type BuyerRecords struct {
	Records []BuyerRecord `json:"records"`
	Count   int           `json:"count"`
}

// PurgeResult reports a source purge.
type PurgeResult struct {
	Source  string `json:"source"`
	Deleted int64  `json:"deleted"`
}

// StartManufacturerDiscovery starts a manufacturer discovery run.
func (c *Client) StartManufacturerDiscovery(ctx context.Context, req DiscoveryRequest) (*SessionStarted, error) {
	var out SessionStarted
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/discovery/manufacturers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartBuyerDiscovery starts a buyer discovery run.
func (c *Client) StartBuyerDiscovery(ctx context.Context, req DiscoveryRequest) (*SessionStarted, error) {
	var out SessionStarted
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/discovery/buyers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartSynthesisAnalysis starts a patent-landscape analysis run.
func (c *Client) StartSynthesisAnalysis(ctx context.Context, req DiscoveryRequest) (*SessionStarted, error) {
	var out SessionStarted
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/analysis/synthesis", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/sessions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProgress fetches the progress events buffered since the last poll.
func (c *Client) GetProgress(ctx context.Context, id string) (*Progress, error) {
	var out Progress
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/sessions/"+url.PathEscape(id)+"/progress", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopSession requests cooperative cancellation of a running session.
func (c *Client) StopSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/sessions/"+url.PathEscape(id)+"/stop", nil, nil)
}

// QueryManufacturers lists stored manufacturer records matching the loose
// filters.  Empty filters list everything.
func (c *Client) QueryManufacturers(ctx context.Context, apiName, country string) (*ManufacturerRecords, error) {
	var out ManufacturerRecords
	path := apiPrefix + "/records/manufacturers?" + recordQuery(apiName, country)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryBuyers lists stored buyer records matching the loose filters.
func (c *Client) QueryBuyers(ctx context.Context, apiName, country string) (*BuyerRecords, error) {
	var out BuyerRecords
	path := apiPrefix + "/records/buyers?" + recordQuery(apiName, country)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurgeSource deletes every manufacturer record imported from sourceName.
func (c *Client) PurgeSource(ctx context.Context, sourceName string) (*PurgeResult, error) {
	var out PurgeResult
	path := apiPrefix + "/records/manufacturers/sources/" + url.PathEscape(sourceName)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForSession polls until the session finishes or ctx is canceled.  Each
// batch of progress events is handed to onProgress when non-nil.
func (c *Client) WaitForSession(
	ctx context.Context,
	id string,
	pollInterval time.Duration,
	onProgress func([]ProgressEvent),
) (*Session, error) {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		progress, err := c.GetProgress(ctx, id)
		if err != nil {
			return nil, err
		}
		if onProgress != nil && len(progress.Events) > 0 {
			onProgress(progress.Events)
		}
		if progress.Status != SessionRunning && progress.Status != "pending" {
			return c.GetSession(ctx, id)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func recordQuery(apiName, country string) string {
	q := url.Values{}
	if apiName != "" {
		q.Set("api", apiName)
	}
	if country != "" {
		q.Set("country", country)
	}
	return q.Encode()
}

//Personal.AI order the ending
