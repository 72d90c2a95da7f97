package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient("test-agent", srv.URL, "test-key", "test-model", 0)
}

func TestCompleteSuccess(t *testing.T) {
	var captured chatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := chatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message Message `json:"message"`
		}{Message: Message{Role: RoleAssistant, Content: "| Company |\n|---|\n| Acme |"}})
		json.NewEncoder(w).Encode(resp)
	})

	out, err := client.Complete(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "find buyers"}},
		MaxTokens:   128,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 128, captured.MaxTokens)
}

func TestCompleteRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAgentRateLimit))
	assert.True(t, IsRetryable(err))
}

func TestCompleteServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	_, err := client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAgentRequest))
	assert.True(t, IsRetryable(err))
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAgentResponse))
	assert.False(t, IsRetryable(err), "malformed responses are permanent")
}

func TestCompleteContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, Request{})
	require.Error(t, err)
}

func TestPromptsDemandTableShape(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     []string
	}{
		{
			"strict buyer",
			BuildStrictBuyerPrompt("aspirin", "India", []string{"MedCo"}),
			[]string{"90%", "aspirin", "India", "MedCo", "| Company |"},
		},
		{
			"relaxed buyer",
			BuildRelaxedBuyerPrompt("aspirin", "", nil),
			[]string{"confidence", "aspirin", "any country", "| Company |"},
		},
		{
			"manufacturer",
			BuildManufacturerPrompt("aspirin", "China", nil),
			[]string{"US DMF", "CEP", "China", "| Manufacturer |"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.messages, 2)
			assert.Equal(t, RoleSystem, tt.messages[0].Role)
			user := tt.messages[1].Content
			for _, fragment := range tt.want {
				assert.Contains(t, user, fragment)
			}
		})
	}
}

func TestSynthesisAnalysisPromptEmbedsText(t *testing.T) {
	msgs := BuildSynthesisAnalysisPrompt("aspirin", "acetylation of salicylic acid")
	require.Len(t, msgs, 2)
	assert.True(t, strings.Contains(msgs[1].Content, "acetylation of salicylic acid"))
}
