package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/careloop/care-assistant/internal/llm"
)

type Intent int

const (
	IntentNone Intent = iota
	IntentSymptom
	IntentAppointment
)

func (i Intent) String() string {
	switch i {
	case IntentSymptom:
		return "symptom"
	case IntentAppointment:
		return "appointment"
	default:
		return "none"
	}
}

// IntentClassifier maps a single free-text message to an intent through a
// few-shot model call. Messages are classified independently; conversation
// history is deliberately not used.
type IntentClassifier struct {
	llm     llm.Client
	timeout time.Duration
}

func NewIntentClassifier(client llm.Client, timeout time.Duration) *IntentClassifier {
	return &IntentClassifier{llm: client, timeout: timeout}
}

// Classify returns the intent of the message. An unrecognized label from the
// model degrades to IntentNone rather than failing the turn.
func (c *IntentClassifier) Classify(ctx context.Context, message string) (Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.llm.Complete(callCtx, []llm.Message{
		llm.System(intentSystemPrompt()),
		llm.User(intentUserPrompt(message)),
	})
	if err != nil {
		return IntentNone, err
	}

	return parseIntentLabel(out), nil
}

func parseIntentLabel(out string) Intent {
	label := strings.ToLower(strings.TrimSpace(out))
	label = strings.TrimSuffix(label, ".")
	label = strings.TrimPrefix(label, "intent:")
	label = strings.TrimSpace(label)

	switch label {
	case "symptom", "symptoms":
		return IntentSymptom
	case "appointment", "appointments":
		return IntentAppointment
	default:
		return IntentNone
	}
}
