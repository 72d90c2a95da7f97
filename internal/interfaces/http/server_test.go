package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/APISource-Intelligence/internal/config"
	"github.com/turtacn/APISource-Intelligence/internal/discovery"
	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/agents"
	"github.com/turtacn/APISource-Intelligence/internal/retry"
	"github.com/turtacn/APISource-Intelligence/internal/session"
	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

type stubAgent struct {
	name  string
	reply string
	err   error
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Complete(_ context.Context, _ agents.Request) (string, error) {
	return a.reply, a.err
}

type stubManufacturerRepo struct {
	records  []sourcing.ManufacturerRecord
	queryErr error
	deleted  int64
	upserted []sourcing.ManufacturerRecord
}

func (r *stubManufacturerRepo) Upsert(_ context.Context, records []sourcing.ManufacturerRecord) (*sourcing.ManufacturerUpsertResult, error) {
	r.upserted = append(r.upserted, records...)
	return &sourcing.ManufacturerUpsertResult{InsertedCount: len(records), Inserted: records}, nil
}

func (r *stubManufacturerRepo) Query(_ context.Context, _, _ string) ([]sourcing.ManufacturerRecord, error) {
	return r.records, r.queryErr
}

func (r *stubManufacturerRepo) DeleteBySource(_ context.Context, _ string) (int64, error) {
	return r.deleted, r.queryErr
}

type stubBuyerRepo struct {
	records  []sourcing.BuyerRecord
	queryErr error
}

func (r *stubBuyerRepo) Upsert(_ context.Context, records []sourcing.BuyerRecord) (*sourcing.BuyerUpsertResult, error) {
	return &sourcing.BuyerUpsertResult{InsertedCount: len(records), Inserted: records}, nil
}

func (r *stubBuyerRepo) Query(_ context.Context, _, _ string) ([]sourcing.BuyerRecord, error) {
	return r.records, r.queryErr
}

const manufacturerReply = "| Manufacturer | Country | USDMF | CEP | Source Name | Source URL |\n" +
	"|---|---|---|---|---|---|\n" +
	"| Aurobindo Pharma | India | Yes | No | PharmaCompass | https://example.com/a |\n"

func newTestServer(t *testing.T, mfRepo *stubManufacturerRepo, buyerRepo *stubBuyerRepo) *Server {
	t.Helper()
	fast := retry.Config{MaxAttempts: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	mfSvc, err := discovery.NewManufacturerService(
		[]agents.ChatCompleter{&stubAgent{name: "stub", reply: manufacturerReply}},
		mfRepo, fast, nil, nil)
	require.NoError(t, err)

	buyerSvc, err := discovery.NewBuyerService(
		[]agents.ChatCompleter{&stubAgent{name: "stub", reply: "no table here"}},
		buyerRepo, discovery.BuyerConfidence{}, fast, nil, nil)
	require.NoError(t, err)

	return NewServer(Options{
		Config:              config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Manufacturers:       mfSvc,
		Buyers:              buyerSvc,
		Sessions:            session.NewMemoryStore(time.Hour),
		ManufacturerRecords: mfRepo,
		BuyerRecords:        buyerRepo,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func waitForStatus(t *testing.T, h http.Handler, id string, want session.Status) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		w := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id, "")
		require.Equal(t, http.StatusOK, w.Code)
		var sess map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
		if sess["status"] == string(want) {
			return sess
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session %s never reached status %s", id, want)
	return nil
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHealthzDegraded(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	s.healthFn = func(context.Context) error {
		return apperrors.Unavailable("database unreachable")
	}
	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestManufacturerDiscoveryLifecycle(t *testing.T) {
	repo := &stubManufacturerRepo{}
	s := newTestServer(t, repo, &stubBuyerRepo{})
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/v1/discovery/manufacturers",
		`{"api_name": "sitagliptin", "country": "India"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var started sessionStartedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, "running", started.Status)

	sess := waitForStatus(t, h, started.SessionID, session.StatusDone)
	result, ok := sess["result"].(map[string]interface{})
	require.True(t, ok, "done session carries the run result")
	assert.Equal(t, float64(1), result["inserted_count"])
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Aurobindo Pharma", repo.upserted[0].Manufacturer)

	// Progress events were buffered for polling.
	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+started.SessionID+"/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	var progress progressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.Equal(t, session.StatusDone, progress.Status)
	assert.NotEmpty(t, progress.Events)
}

func TestStartDiscoveryRequiresAPIName(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/discovery/manufacturers",
		`{"country": "India"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuyerDiscoveryEmptyRun(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/v1/discovery/buyers",
		`{"api_name": "sitagliptin"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var started sessionStartedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	sess := waitForStatus(t, h, started.SessionID, session.StatusDone)
	result, ok := sess["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), result["inserted_count"])
	assert.Equal(t, true, result["relaxed_pass"])
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	w := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrCodeSessionNotFound))
}

func TestStopSession(t *testing.T) {
	s := newTestServer(t, &stubManufacturerRepo{}, &stubBuyerRepo{})
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/v1/discovery/manufacturers",
		`{"api_name": "sitagliptin"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var started sessionStartedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	w = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+started.SessionID+"/stop", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestQueryManufacturerRecords(t *testing.T) {
	repo := &stubManufacturerRepo{records: []sourcing.ManufacturerRecord{
		{APIName: "sitagliptin", Manufacturer: "Aurobindo Pharma", Country: "India"},
	}}
	s := newTestServer(t, repo, &stubBuyerRepo{})

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/records/manufacturers?api=sitagliptin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Records []sourcing.ManufacturerRecord `json:"records"`
		Count   int                           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Aurobindo Pharma", resp.Records[0].Manufacturer)
}

func TestQueryRecordsStorageFailureReadsEmpty(t *testing.T) {
	repo := &stubManufacturerRepo{
		queryErr: apperrors.New(apperrors.ErrCodeDatabaseError, "connection refused"),
	}
	s := newTestServer(t, repo, &stubBuyerRepo{queryErr: repo.queryErr})
	h := s.Handler()

	for _, path := range []string{"/api/v1/records/manufacturers", "/api/v1/records/buyers"} {
		w := doJSON(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"count":0`, path)
	}
}

func TestPurgeBySource(t *testing.T) {
	repo := &stubManufacturerRepo{deleted: 3}
	s := newTestServer(t, repo, &stubBuyerRepo{})

	w := doJSON(t, s.Handler(), http.MethodDelete, "/api/v1/records/manufacturers/sources/stub", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":3`)
}
