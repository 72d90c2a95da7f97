// Package agents defines the chat-completion collaborator boundary and an
// OpenAI-compatible HTTP client implementation.  The discovery services
// depend only on the ChatCompleter interface; concrete providers (Groq,
// OpenAI, any compatible gateway) are configuration.
package agents

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System and user role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request is a provider-independent chat-completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatCompleter produces a completion for a chat request.  Implementations
// own their HTTP timeouts; callers own retry and cancellation.
type ChatCompleter interface {
	// Name identifies the agent in logs, progress events, and metrics.
	Name() string
	// Complete returns the assistant's reply text.
	Complete(ctx context.Context, req Request) (string, error)
}

//Personal.AI order the ending
