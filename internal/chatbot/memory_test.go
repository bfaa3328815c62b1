package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRender(t *testing.T) {
	m := NewMemory()
	assert.Empty(t, m.Render())

	m.Append("hello", "hi there")
	m.Append("how are you?", "doing well")

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "Human: hello\nAI: hi there\nHuman: how are you?\nAI: doing well\n", m.Render())
}

func TestMemoryExchangesReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Append("a", "b")

	got := m.Exchanges()
	got[0].Input = "mutated"

	assert.Equal(t, "a", m.Exchanges()[0].Input)
}
