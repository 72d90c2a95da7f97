package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI, Groq, self-hosted gateways).
type OpenAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// OpenAIOption customizes client construction.
type OpenAIOption func(*OpenAIClient)

// WithHTTPClient substitutes the underlying HTTP client, used by tests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAIClient) { o.httpClient = c }
}

// NewOpenAIClient builds a client for the chat-completions endpoint rooted at
// baseURL (e.g. "https://api.groq.com/openai/v1").
func NewOpenAIClient(name, baseURL, apiKey, model string, timeout time.Duration, opts ...OpenAIOption) *OpenAIClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &OpenAIClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements ChatCompleter.
func (c *OpenAIClient) Name() string { return c.name }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete implements ChatCompleter over POST /chat/completions.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAgentRequest, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAgentRequest, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAgentRequest,
			fmt.Sprintf("agent %s request failed", c.name))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAgentResponse, "read chat response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.Newf(apperrors.ErrCodeAgentRateLimit,
			"agent %s rate limited", c.name)
	case resp.StatusCode >= 400:
		return "", apperrors.Newf(apperrors.ErrCodeAgentRequest,
			"agent %s returned status %d", c.name, resp.StatusCode).
			WithDetail(truncate(string(raw), 512))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeAgentResponse, "decode chat response")
	}
	if parsed.Error != nil {
		return "", apperrors.Newf(apperrors.ErrCodeAgentResponse,
			"agent %s error: %s", c.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.Newf(apperrors.ErrCodeAgentResponse,
			"agent %s returned no choices", c.name)
	}
	return parsed.Choices[0].Message.Content, nil
}

// IsRetryable classifies agent errors for the retry decorator: rate limits
// and transport failures are transient, malformed responses are not.
func IsRetryable(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeAgentRateLimit) ||
		apperrors.IsCode(err, apperrors.ErrCodeAgentRequest)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

//Personal.AI order the ending
