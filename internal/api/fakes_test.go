package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/care-assistant/internal/appointment"
	"github.com/careloop/care-assistant/internal/llm"
	"github.com/careloop/care-assistant/internal/profile"
	"github.com/careloop/care-assistant/internal/retrieval"
)

type scriptedLLM struct {
	replies []string
}

func (s *scriptedLLM) next() (string, error) {
	if len(s.replies) == 0 {
		return "", errors.New("scriptedLLM: no reply left")
	}
	out := s.replies[0]
	s.replies = s.replies[1:]
	return out, nil
}

func (s *scriptedLLM) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return s.next()
}

func (s *scriptedLLM) Stream(_ context.Context, _ []llm.Message, onChunk func(string) error) (string, error) {
	out, err := s.next()
	if err != nil {
		return "", err
	}
	if err := onChunk(out); err != nil {
		return "", err
	}
	return out, nil
}

type memAppointmentRepo struct {
	appts []appointment.Appointment
}

func (m *memAppointmentRepo) Create(_ context.Context, p appointment.CreateParams) (*appointment.Appointment, error) {
	now := time.Now().UTC()
	appt := appointment.Appointment{
		ID:          uuid.New(),
		Name:        p.Name,
		Date:        p.Date,
		Time:        p.Time,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.appts = append(m.appts, appt)
	return &appt, nil
}

func (m *memAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	for i := range m.appts {
		if m.appts[i].ID == id {
			return &m.appts[i], nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (m *memAppointmentRepo) List(_ context.Context, limit, offset int) ([]appointment.Appointment, error) {
	if offset >= len(m.appts) {
		return nil, nil
	}
	out := m.appts[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type noProfileRepo struct{}

func (noProfileRepo) GetByUserID(_ context.Context, _ uuid.UUID) (*profile.HealthProfile, error) {
	return nil, profile.ErrProfileNotFound
}

type emptyRetriever struct{}

func (emptyRetriever) Query(_ context.Context, _ string) ([]retrieval.Passage, error) {
	return nil, nil
}
