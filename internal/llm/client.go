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

// Client is the language-model capability the chatbot flows are built on.
type Client interface {
	// Complete runs a single request/response completion.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream runs a completion and invokes onChunk for every generated chunk
	// as it arrives, returning the full concatenated text at the end. If
	// onChunk returns an error the underlying model call is cancelled and
	// that error is returned.
	Stream(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error)
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
