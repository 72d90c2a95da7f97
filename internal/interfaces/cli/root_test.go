package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/APISource-Intelligence/pkg/client"
)

func executeCLI(t *testing.T, serverURL string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--server", serverURL}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"NAME", "COUNTRY"},
		[][]string{{"Aurobindo Pharma", "India"}, {"Teva", "Israel"}},
	)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "----")
	assert.Contains(t, out, "Aurobindo Pharma  India")
	assert.Contains(t, out, "Teva")

	assert.Empty(t, FormatTable(nil, nil))
}

func TestDiscoverCommandLifecycle(t *testing.T) {
	result, err := json.Marshal(map[string]interface{}{
		"api_name":       "sitagliptin",
		"existing":       []interface{}{},
		"new":            []map[string]string{{"manufacturer": "Aurobindo Pharma", "country": "India", "usdmf": "Yes", "cep": "No", "source_name": "groq"}},
		"inserted_count": 1,
	})
	require.NoError(t, err)

	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/discovery/manufacturers":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(client.SessionStarted{SessionID: "s1", Status: "running"})
		case "/api/v1/sessions/s1/progress":
			polls++
			status := "running"
			if polls >= 2 {
				status = "done"
			}
			json.NewEncoder(w).Encode(client.Progress{
				SessionID: "s1",
				Status:    status,
				Events:    []client.ProgressEvent{{Percentage: 50, Message: "querying agent groq"}},
			})
		case "/api/v1/sessions/s1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "s1",
				"status": "done",
				"result": json.RawMessage(result),
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	stdout, stderr, err := executeCLI(t, srv.URL, "discover", "sitagliptin", "--poll-interval", "1ms")
	require.NoError(t, err)
	assert.Contains(t, stderr, "session s1 started")
	assert.Contains(t, stderr, "querying agent groq")
	assert.Contains(t, stdout, "1 new manufacturers for sitagliptin")
	assert.Contains(t, stdout, "Aurobindo Pharma")
}

func TestDiscoverFailedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/discovery/manufacturers":
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(client.SessionStarted{SessionID: "s1", Status: "running"})
		case "/api/v1/sessions/s1/progress":
			json.NewEncoder(w).Encode(client.Progress{SessionID: "s1", Status: "failed"})
		case "/api/v1/sessions/s1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "s1", "status": "failed", "error": "all agents failed",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	_, _, err := executeCLI(t, srv.URL, "discover", "sitagliptin", "--poll-interval", "1ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all agents failed")
}

func TestRecordsManufacturersCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/records/manufacturers", r.URL.Path)
		assert.Equal(t, "sitagliptin", r.URL.Query().Get("api"))
		json.NewEncoder(w).Encode(client.ManufacturerRecords{
			Records: []client.ManufacturerRecord{
				{APIName: "sitagliptin", Manufacturer: "Aurobindo Pharma", Country: "India"},
			},
			Count: 1,
		})
	}))
	defer srv.Close()

	stdout, _, err := executeCLI(t, srv.URL, "records", "manufacturers", "--api", "sitagliptin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Aurobindo Pharma")
	assert.Contains(t, stdout, "1 record(s)")
}

func TestRecordsPurgeRequiresConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server must not be called without --yes")
	}))
	defer srv.Close()

	_, _, err := executeCLI(t, srv.URL, "records", "purge", "groq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestRecordsPurge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		json.NewEncoder(w).Encode(client.PurgeResult{Source: "groq", Deleted: 4})
	}))
	defer srv.Close()

	stdout, _, err := executeCLI(t, srv.URL, "records", "purge", "groq", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted 4 record(s) from source groq")
}

func TestSessionStopCommand(t *testing.T) {
	stopped := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sessions/s1/stop" {
			stopped = true
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	stdout, _, err := executeCLI(t, srv.URL, "session", "stop", "s1")
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Contains(t, stdout, "stop requested for session s1")
}

func TestDiscoverRequiresAPIName(t *testing.T) {
	_, _, err := executeCLI(t, "http://localhost:1", "discover")
	require.Error(t, err)
}
