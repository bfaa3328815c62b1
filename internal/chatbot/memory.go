package chatbot

import (
	"fmt"
	"strings"
)

// Exchange is one (input, output) pair of a conversation.
type Exchange struct {
	Input  string
	Output string
}

// Memory is the append-only conversation history for a single chat session.
// It is owned by exactly one connection, whose turns are processed
// sequentially, so no locking is needed. It is discarded when the
// connection closes.
type Memory struct {
	exchanges []Exchange
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(input, output string) {
	m.exchanges = append(m.exchanges, Exchange{Input: input, Output: output})
}

func (m *Memory) Len() int {
	return len(m.exchanges)
}

func (m *Memory) Exchanges() []Exchange {
	out := make([]Exchange, len(m.exchanges))
	copy(out, m.exchanges)
	return out
}

// Render lays the history out as a Human/AI transcript for prompts.
func (m *Memory) Render() string {
	var b strings.Builder
	for _, e := range m.exchanges {
		fmt.Fprintf(&b, "Human: %s\nAI: %s\n", e.Input, e.Output)
	}
	return b.String()
}
