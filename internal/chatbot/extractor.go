package chatbot

import (
	"context"
	"fmt"
	"time"

	"github.com/careloop/care-assistant/internal/llm"
)

// SlotExtractor asks the model to pull appointment fields out of the
// conversation. The raw output is supposed to be a JSON object but is not
// guaranteed to be one; validation happens downstream.
type SlotExtractor struct {
	llm llm.Client
	now func() time.Time
}

func NewSlotExtractor(client llm.Client) *SlotExtractor {
	return &SlotExtractor{llm: client, now: time.Now}
}

func (e *SlotExtractor) Extract(ctx context.Context, memory *Memory, message string) (string, error) {
	out, err := e.llm.Complete(ctx, []llm.Message{
		llm.System(extractionPrompt(memory.Render(), e.now())),
		llm.User(message),
	})
	if err != nil {
		return "", fmt.Errorf("extract appointment fields: %w", err)
	}
	return out, nil
}
