package chatbot

import "context"

const (
	SenderBot = "bot"
	SenderYou = "you"
)

type EventType string

const (
	EventStart         EventType = "start"
	EventStream        EventType = "stream"
	EventEnd           EventType = "end"
	EventError         EventType = "error"
	EventInfo          EventType = "info"
	EventClarification EventType = "clarification"
)

// Event is one frame of the chat streaming protocol. Within a turn, events
// are emitted strictly in the order echo, start, stream chunks, then either
// a clarification or content followed by an end marker.
type Event struct {
	Username string    `json:"username"`
	Message  string    `json:"message"`
	Type     EventType `json:"type"`
}

// Emitter delivers events to every observer of the session's room.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

func botEvent(message string, typ EventType) Event {
	return Event{Username: SenderBot, Message: message, Type: typ}
}

func echoEvent(message string) Event {
	return Event{Username: SenderYou, Message: message, Type: EventStream}
}

// ReadyEvent announces a freshly opened session to the room.
func ReadyEvent() Event {
	return botEvent("Ready to accept questions", EventInfo)
}
