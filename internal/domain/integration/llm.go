package integration

import "context"

// ChatRole is the speaker of a prompt message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the prompt history
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// CompletionRequest is a provider-neutral chat request
type CompletionRequest struct {
	System    string
	Messages  []ChatMessage
	MaxTokens int
	// Purpose labels usage metrics (chat, generate, autofix)
	Purpose string
}

// Completion is the final assistant reply with token usage
type Completion struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// TokenFunc receives streamed text deltas. Returning an error aborts the stream.
type TokenFunc func(delta string) error

// LLMProvider streams chat completions
type LLMProvider interface {
	Name() string
	// Stream calls onToken for each text delta and returns the assembled reply.
	// onToken may be nil.
	Stream(ctx context.Context, req CompletionRequest, onToken TokenFunc) (*Completion, error)
}

// Complete runs a request without observing the stream
func Complete(ctx context.Context, p LLMProvider, req CompletionRequest) (*Completion, error) {
	return p.Stream(ctx, req, nil)
}
