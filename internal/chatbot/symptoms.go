package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/llm"
	"github.com/careloop/care-assistant/internal/retrieval"
)

// SymptomQA answers symptom questions with retrieval-augmented generation:
// condense the follow-up question against the conversation history, fetch
// reference passages, then stream an answer conditioned on the passages and
// the user's health profile.
type SymptomQA struct {
	llm       llm.Client
	retriever retrieval.Retriever
	memory    *Memory
	log       *zap.Logger

	llmTimeout       time.Duration
	retrievalTimeout time.Duration
}

type SymptomQAConfig struct {
	LLM              llm.Client
	Retriever        retrieval.Retriever
	Memory           *Memory
	Logger           *zap.Logger
	LLMTimeout       time.Duration
	RetrievalTimeout time.Duration
}

func NewSymptomQA(cfg SymptomQAConfig) *SymptomQA {
	return &SymptomQA{
		llm:              cfg.LLM,
		retriever:        cfg.Retriever,
		memory:           cfg.Memory,
		log:              cfg.Logger,
		llmTimeout:       cfg.LLMTimeout,
		retrievalTimeout: cfg.RetrievalTimeout,
	}
}

func (q *SymptomQA) HandleTurn(ctx context.Context, emit Emitter, message, healthContext string) error {
	q.emit(ctx, emit, echoEvent(message))
	q.emit(ctx, emit, botEvent("", EventStart))

	question, err := q.condense(ctx, emit, message)
	if err != nil {
		q.fail(ctx, emit)
		return fmt.Errorf("condense question: %w", err)
	}

	passages := q.retrieve(ctx, question)

	answer, err := q.generate(ctx, emit, question, healthContext, passages)
	if err != nil {
		q.fail(ctx, emit)
		return fmt.Errorf("generate answer: %w", err)
	}

	q.memory.Append(message, answer)
	q.emit(ctx, emit, botEvent("", EventEnd))

	return nil
}

// condense rewrites a follow-up into a standalone question using the
// conversation so far. The first question of a session passes through as-is.
func (q *SymptomQA) condense(ctx context.Context, emit Emitter, message string) (string, error) {
	if q.memory.Len() == 0 {
		return message, nil
	}

	q.emit(ctx, emit, botEvent("Synthesizing question...", EventInfo))

	callCtx, cancel := context.WithTimeout(ctx, q.llmTimeout)
	defer cancel()

	out, err := q.llm.Complete(callCtx, []llm.Message{
		llm.User(condensePrompt(q.memory.Render(), message)),
	})
	if err != nil {
		return "", err
	}

	standalone := strings.TrimSpace(out)
	if standalone == "" {
		return message, nil
	}
	return standalone, nil
}

// retrieve fetches reference passages. Retrieval problems are not fatal:
// generation proceeds without context and the prompt already tells the model
// to say it does not know.
func (q *SymptomQA) retrieve(ctx context.Context, question string) []retrieval.Passage {
	callCtx, cancel := context.WithTimeout(ctx, q.retrievalTimeout)
	defer cancel()

	passages, err := q.retriever.Query(callCtx, question)
	if err != nil {
		q.log.Warn("condition retrieval failed, answering without context", zap.Error(err))
		return nil
	}
	return passages
}

func (q *SymptomQA) generate(ctx context.Context, emit Emitter, question, healthContext string, passages []retrieval.Passage) (string, error) {
	var contextBlock strings.Builder
	for _, p := range passages {
		contextBlock.WriteString(p.Content)
		contextBlock.WriteString("\n\n")
	}

	callCtx, cancel := context.WithTimeout(ctx, q.llmTimeout)
	defer cancel()

	return q.llm.Stream(callCtx, []llm.Message{
		llm.User(symptomsQAPrompt(contextBlock.String(), question, healthContext)),
	}, func(chunk string) error {
		return emit.Emit(ctx, botEvent(chunk, EventStream))
	})
}

func (q *SymptomQA) fail(ctx context.Context, emit Emitter) {
	q.emit(ctx, emit, botEvent(genericFailureMessage, EventStream))
	q.emit(ctx, emit, botEvent("", EventEnd))
}

func (q *SymptomQA) emit(ctx context.Context, emit Emitter, ev Event) {
	if err := emit.Emit(ctx, ev); err != nil {
		q.log.Warn("emit chat event", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
