package chatbot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/llm"
)

// GeneralChat handles messages with no actionable intent: a single
// persona-constrained streamed completion, no side effects.
type GeneralChat struct {
	llm        llm.Client
	memory     *Memory
	log        *zap.Logger
	llmTimeout time.Duration
}

func NewGeneralChat(client llm.Client, memory *Memory, log *zap.Logger, llmTimeout time.Duration) *GeneralChat {
	return &GeneralChat{llm: client, memory: memory, log: log, llmTimeout: llmTimeout}
}

func (g *GeneralChat) HandleTurn(ctx context.Context, emit Emitter, message string) error {
	g.emit(ctx, emit, echoEvent(message))
	g.emit(ctx, emit, botEvent("", EventStart))

	messages := []llm.Message{llm.System(generalChatPersona)}
	for _, e := range g.memory.Exchanges() {
		messages = append(messages, llm.User(e.Input), llm.Assistant(e.Output))
	}
	messages = append(messages, llm.User(message))

	callCtx, cancel := context.WithTimeout(ctx, g.llmTimeout)
	defer cancel()

	answer, err := g.llm.Stream(callCtx, messages, func(chunk string) error {
		return emit.Emit(ctx, botEvent(chunk, EventStream))
	})
	if err != nil {
		g.emit(ctx, emit, botEvent(genericFailureMessage, EventStream))
		g.emit(ctx, emit, botEvent("", EventEnd))
		return fmt.Errorf("general chat completion: %w", err)
	}

	g.memory.Append(message, answer)
	g.emit(ctx, emit, botEvent("", EventEnd))

	return nil
}

func (g *GeneralChat) emit(ctx context.Context, emit Emitter, ev Event) {
	if err := emit.Emit(ctx, ev); err != nil {
		g.log.Warn("emit chat event", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
