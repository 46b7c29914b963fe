package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client sends a full conversation to a completion provider and blocks until
// the reply is available.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
