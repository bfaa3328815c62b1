package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/retrieval"
)

func newTestSymptomQA(model *fakeLLM, retriever *fakeRetriever, memory *Memory) *SymptomQA {
	return NewSymptomQA(SymptomQAConfig{
		LLM:              model,
		Retriever:        retriever,
		Memory:           memory,
		Logger:           zap.NewNop(),
		LLMTimeout:       time.Second,
		RetrievalTimeout: time.Second,
	})
}

func TestSymptomQAFirstQuestionSkipsCondense(t *testing.T) {
	model := &fakeLLM{replies: []string{"Headaches can have many causes."}}
	retriever := &fakeRetriever{passages: []retrieval.Passage{
		{Question: "What is a headache?", Content: "A headache is pain in the head.", Focus: "Headache"},
	}}
	memory := NewMemory()
	qa := newTestSymptomQA(model, retriever, memory)
	emitter := &recordingEmitter{}

	require.NoError(t, qa.HandleTurn(context.Background(), emitter, "I have a headache", ""))

	require.Len(t, model.calls, 1, "no condense call on the first question")
	require.Len(t, retriever.queries, 1)
	assert.Equal(t, "I have a headache", retriever.queries[0])

	assert.Empty(t, emitter.ofType(EventInfo))
	types := emitter.types()
	assert.Equal(t, EventStream, types[0])
	assert.Equal(t, EventStart, types[1])
	assert.Equal(t, EventEnd, types[len(types)-1])

	var answer strings.Builder
	for _, ev := range emitter.ofType(EventStream)[1:] {
		answer.WriteString(ev.Message)
	}
	assert.Equal(t, "Headaches can have many causes.", answer.String())

	require.Equal(t, 1, memory.Len())
	assert.Equal(t, "Headaches can have many causes.", memory.Exchanges()[0].Output)
}

func TestSymptomQACondensesFollowUps(t *testing.T) {
	model := &fakeLLM{replies: []string{
		"What are the treatments for migraines?",
		"Rest and hydration help.",
	}}
	retriever := &fakeRetriever{}
	memory := NewMemory()
	memory.Append("I get migraines", "Migraines are severe headaches.")
	qa := newTestSymptomQA(model, retriever, memory)
	emitter := &recordingEmitter{}

	require.NoError(t, qa.HandleTurn(context.Background(), emitter, "how do I treat them?", ""))

	require.Len(t, model.calls, 2)
	infos := emitter.ofType(EventInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "Synthesizing question...", infos[0].Message)

	require.Len(t, retriever.queries, 1)
	assert.Equal(t, "What are the treatments for migraines?", retriever.queries[0])
}

func TestSymptomQARetrievalFailureIsNotFatal(t *testing.T) {
	model := &fakeLLM{replies: []string{"I'm not sure about that."}}
	retriever := &fakeRetriever{err: errors.New("search unavailable")}
	qa := newTestSymptomQA(model, retriever, NewMemory())
	emitter := &recordingEmitter{}

	require.NoError(t, qa.HandleTurn(context.Background(), emitter, "what causes vertigo?", ""))

	types := emitter.types()
	assert.Equal(t, EventEnd, types[len(types)-1])
}

func TestSymptomQAModelFailureEndsTurnGenerically(t *testing.T) {
	model := &fakeLLM{err: errors.New("model unavailable")}
	memory := NewMemory()
	qa := newTestSymptomQA(model, &fakeRetriever{}, memory)
	emitter := &recordingEmitter{}

	err := qa.HandleTurn(context.Background(), emitter, "what causes vertigo?", "")
	require.Error(t, err)

	streams := emitter.ofType(EventStream)
	assert.Equal(t, genericFailureMessage, streams[len(streams)-1].Message)
	assert.Equal(t, EventEnd, emitter.types()[len(emitter.events)-1])
	assert.Zero(t, memory.Len(), "failed turns leave no trace in memory")
}

func TestSymptomQAIncludesHealthContextInPrompt(t *testing.T) {
	model := &fakeLLM{replies: []string{"Given your profile, see a doctor."}}
	qa := newTestSymptomQA(model, &fakeRetriever{}, NewMemory())

	require.NoError(t, qa.HandleTurn(context.Background(), &recordingEmitter{}, "chest pain", "User health data:\nGender: M\nAge: 44\n"))

	require.Len(t, model.calls, 1)
	assert.Contains(t, model.calls[0][0].Content, "Gender: M")
}
