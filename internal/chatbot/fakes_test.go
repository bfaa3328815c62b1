package chatbot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/care-assistant/internal/appointment"
	"github.com/careloop/care-assistant/internal/llm"
	"github.com/careloop/care-assistant/internal/retrieval"
)

// fakeLLM replays scripted completions in order. Stream delivers the scripted
// text as two chunks to exercise chunked emission.
type fakeLLM struct {
	replies []string
	err     error
	calls   [][]llm.Message
}

func (f *fakeLLM) next() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("fakeLLM: no scripted reply left")
	}
	out := f.replies[0]
	f.replies = f.replies[1:]
	return out, nil
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	return f.next()
}

func (f *fakeLLM) Stream(_ context.Context, messages []llm.Message, onChunk func(string) error) (string, error) {
	f.calls = append(f.calls, messages)
	out, err := f.next()
	if err != nil {
		return "", err
	}
	half := len(out) / 2
	for _, chunk := range []string{out[:half], out[half:]} {
		if chunk == "" {
			continue
		}
		if err := onChunk(chunk); err != nil {
			return "", err
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	created   []appointment.CreateParams
	createErr error
}

func (f *fakeAppointmentRepo) Create(_ context.Context, p appointment.CreateParams) (*appointment.Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	now := time.Now().UTC()
	return &appointment.Appointment{
		ID:          uuid.New(),
		Name:        p.Name,
		Date:        p.Date,
		Time:        p.Time,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, _ uuid.UUID) (*appointment.Appointment, error) {
	return nil, appointment.ErrAppointmentNotFound
}

func (f *fakeAppointmentRepo) List(_ context.Context, _, _ int) ([]appointment.Appointment, error) {
	return nil, nil
}

// recordingEmitter captures the event sequence of a turn.
type recordingEmitter struct {
	events []Event
	err    error
}

func (r *recordingEmitter) Emit(_ context.Context, ev Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEmitter) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recordingEmitter) ofType(typ EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type fakeRetriever struct {
	passages []retrieval.Passage
	err      error
	queries  []string
}

func (f *fakeRetriever) Query(_ context.Context, query string) ([]retrieval.Passage, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}
