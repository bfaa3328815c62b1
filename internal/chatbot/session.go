package chatbot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/appointment"
)

const genericFailureMessage = "Sorry, something went wrong. Please try again."

type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingSlots
	StateCompleted
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingSlots:
		return "awaiting_slots"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// AppointmentSession drives the slot-filling dialogue for one chat session:
// extract candidate fields from the conversation, validate them, ask for
// whatever is missing, and persist the appointment once everything is there.
//
// State transitions per turn:
//
//	Idle/Completed/Failed -> AwaitingSlots   (fresh attempt, candidate reset)
//	AwaitingSlots         -> AwaitingSlots   (field errors, clarification)
//	AwaitingSlots         -> Completed       (validated and persisted)
//	AwaitingSlots         -> Failed          (malformed model output or
//	                                          persistence error, no retry)
type AppointmentSession struct {
	extractor    *SlotExtractor
	appointments appointment.Repository
	memory       *Memory
	log          *zap.Logger

	llmTimeout   time.Duration
	storeTimeout time.Duration

	state     SessionState
	candidate Candidate // partial slots carried across clarification turns
}

type SessionConfig struct {
	Extractor    *SlotExtractor
	Appointments appointment.Repository
	Memory       *Memory
	Logger       *zap.Logger
	LLMTimeout   time.Duration
	StoreTimeout time.Duration
}

func NewAppointmentSession(cfg SessionConfig) *AppointmentSession {
	return &AppointmentSession{
		extractor:    cfg.Extractor,
		appointments: cfg.Appointments,
		memory:       cfg.Memory,
		log:          cfg.Logger,
		llmTimeout:   cfg.LLMTimeout,
		storeTimeout: cfg.StoreTimeout,
		state:        StateIdle,
	}
}

func (s *AppointmentSession) State() SessionState {
	return s.state
}

// Awaiting reports whether the session has an open clarification loop.
func (s *AppointmentSession) Awaiting() bool {
	return s.state == StateAwaitingSlots
}

// HandleTurn processes one inbound message routed to the booking flow.
// Events are emitted in the order echo, start, then exactly one terminal
// event: a clarification (turn stays open) or content plus an end marker.
func (s *AppointmentSession) HandleTurn(ctx context.Context, emit Emitter, message string) error {
	s.emit(ctx, emit, echoEvent(message))
	s.emit(ctx, emit, botEvent("", EventStart))

	if s.state != StateAwaitingSlots {
		// Fresh attempt: earlier completed or failed sessions do not leak
		// slots into this one.
		s.candidate = Candidate{}
		s.state = StateAwaitingSlots
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	raw, err := s.extractor.Extract(extractCtx, s.memory, message)
	cancel()
	if err != nil {
		s.fail(ctx, emit)
		return fmt.Errorf("slot extraction: %w", err)
	}

	parsed, err := ParseCandidate(raw)
	if err != nil {
		s.fail(ctx, emit)
		return fmt.Errorf("slot extraction output: %w", err)
	}

	s.candidate = parsed.Merge(s.candidate)

	validated, fieldErrs := s.candidate.Check()
	if fieldErrs != nil {
		return s.clarify(ctx, emit, message, fieldErrs)
	}

	return s.complete(ctx, emit, message, validated)
}

// clarify keeps the turn open: all field errors are reported in one message
// and the attempted fields are written back into memory so the next
// extraction sees them.
func (s *AppointmentSession) clarify(ctx context.Context, emit Emitter, message string, fieldErrs ValidationErrors) error {
	clarification := fieldErrs.Error()

	input := fmt.Sprintf("%s\n%s", message, s.candidate.Serialize())
	s.memory.Append(input, clarification)

	s.emit(ctx, emit, botEvent(clarification, EventClarification))

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	s.log.Info("appointment clarification requested", zap.Strings("fields", fields))

	return nil
}

func (s *AppointmentSession) complete(ctx context.Context, emit Emitter, message string, v *Validated) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	appt, err := s.appointments.Create(storeCtx, appointment.CreateParams{
		Name:        v.Name,
		Date:        v.Date,
		Time:        v.Time,
		Description: v.Description,
	})
	cancel()
	if err != nil {
		s.fail(ctx, emit)
		return fmt.Errorf("persist appointment: %w", err)
	}

	confirmation := fmt.Sprintf("Created an appointment with title %q on %s at %s.",
		appt.Name, appt.Date.Format("2006-01-02"), appt.Time)
	s.memory.Append(message, confirmation)

	s.emit(ctx, emit, botEvent(confirmation, EventStream))
	s.emit(ctx, emit, botEvent("", EventEnd))
	s.state = StateCompleted

	s.log.Info("appointment created",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("date", appt.Date.Format("2006-01-02")),
		zap.String("time", appt.Time))

	return nil
}

// fail ends the turn with a single generic message. Internal detail is
// never shown to the user, and failed turns are not retried automatically.
func (s *AppointmentSession) fail(ctx context.Context, emit Emitter) {
	s.emit(ctx, emit, botEvent(genericFailureMessage, EventStream))
	s.emit(ctx, emit, botEvent("", EventEnd))
	s.state = StateFailed
}

func (s *AppointmentSession) emit(ctx context.Context, emit Emitter, ev Event) {
	if err := emit.Emit(ctx, ev); err != nil {
		s.log.Warn("emit chat event", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
