package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/appointment"
	"github.com/careloop/care-assistant/internal/chatbot"
	"github.com/careloop/care-assistant/internal/llm"
	"github.com/careloop/care-assistant/internal/profile"
	redisclient "github.com/careloop/care-assistant/internal/redis"
	"github.com/careloop/care-assistant/internal/retrieval"
)

type ChatConfig struct {
	// LLM streams user-facing answers; CompletionLLM serves classification
	// and extraction, which can run on a cheaper model. When CompletionLLM
	// is nil, LLM serves both.
	LLM           llm.Client
	CompletionLLM llm.Client

	Retriever    retrieval.Retriever
	Appointments appointment.Repository
	Profiles     profile.Repository
	Channels     redisclient.ChannelLayer
	Logger       *zap.Logger

	// ReadLimit caps inbound frame size; zero leaves the transport default.
	ReadLimit int64

	LLMTimeout       time.Duration
	RetrievalTimeout time.Duration
	DatastoreTimeout time.Duration
}

// ChatHandler upgrades websocket connections and runs one chat session per
// connection. Events flow out through the Redis channel layer so every
// connection subscribed to the same room sees the same conversation.
type ChatHandler struct {
	cfg      ChatConfig
	upgrader websocket.Upgrader
}

func NewChatHandler(cfg ChatConfig) *ChatHandler {
	return &ChatHandler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The frontend is served from a different origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// inboundMessage is a frame sent by the client. Type is "clarification" when
// the message answers a pending slot question, empty otherwise.
type inboundMessage struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	log := h.cfg.Logger.With(zap.String("room", room))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.cfg.ReadLimit > 0 {
		conn.SetReadLimit(h.cfg.ReadLimit)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.cfg.Channels.Subscribe(ctx, room)
	if err != nil {
		log.Error("subscribe to chat room", zap.Error(err))
		return
	}
	defer sub.Close()

	// Single writer goroutine: every frame the room produces, whether from
	// this connection's turns or another's, reaches the socket through here.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for payload := range sub.Messages() {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug("websocket write", zap.Error(err))
				cancel()
				return
			}
		}
	}()

	emitter := &channelEmitter{layer: h.cfg.Channels, group: room}
	session := h.newSession(ctx, r, log, emitter)

	h.readLoop(ctx, conn, log, session)

	cancel()
	sub.Close()
	<-writeDone
}

func (h *ChatHandler) readLoop(ctx context.Context, conn *websocket.Conn, log *zap.Logger, session *chatSession) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("malformed inbound frame", zap.Error(err))
			continue
		}
		if msg.Message == "" {
			continue
		}

		// Turns are handled sequentially on purpose: a turn's events must
		// finish before the next inbound message is read.
		if err := session.handleTurn(ctx, msg); err != nil {
			log.Error("chat turn failed", zap.Error(err))
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// chatSession holds the per-connection conversation state and routes each
// inbound message to the booking, symptom or general flow.
type chatSession struct {
	classifier    *chatbot.IntentClassifier
	booking       *chatbot.AppointmentSession
	symptoms      *chatbot.SymptomQA
	general       *chatbot.GeneralChat
	emitter       chatbot.Emitter
	healthContext string
	log           *zap.Logger
}

func (h *ChatHandler) newSession(ctx context.Context, r *http.Request, log *zap.Logger, emitter chatbot.Emitter) *chatSession {
	memory := chatbot.NewMemory()

	completion := h.cfg.CompletionLLM
	if completion == nil {
		completion = h.cfg.LLM
	}

	s := &chatSession{
		classifier: chatbot.NewIntentClassifier(completion, h.cfg.LLMTimeout),
		booking: chatbot.NewAppointmentSession(chatbot.SessionConfig{
			Extractor:    chatbot.NewSlotExtractor(completion),
			Appointments: h.cfg.Appointments,
			Memory:       memory,
			Logger:       log,
			LLMTimeout:   h.cfg.LLMTimeout,
			StoreTimeout: h.cfg.DatastoreTimeout,
		}),
		symptoms: chatbot.NewSymptomQA(chatbot.SymptomQAConfig{
			LLM:              h.cfg.LLM,
			Retriever:        h.cfg.Retriever,
			Memory:           memory,
			Logger:           log,
			LLMTimeout:       h.cfg.LLMTimeout,
			RetrievalTimeout: h.cfg.RetrievalTimeout,
		}),
		general:       chatbot.NewGeneralChat(h.cfg.LLM, memory, log, h.cfg.LLMTimeout),
		emitter:       emitter,
		healthContext: h.loadHealthContext(ctx, r, log),
		log:           log,
	}

	if err := emitter.Emit(ctx, chatbot.ReadyEvent()); err != nil {
		log.Warn("emit ready event", zap.Error(err))
	}

	return s
}

// loadHealthContext resolves the connecting user's health profile into prompt
// context. A missing or unidentified profile is fine, symptom answers are
// just less tailored.
func (h *ChatHandler) loadHealthContext(ctx context.Context, r *http.Request, log *zap.Logger) string {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		return ""
	}

	loadCtx, cancel := context.WithTimeout(ctx, h.cfg.DatastoreTimeout)
	defer cancel()

	p, err := h.cfg.Profiles.GetByUserID(loadCtx, userID)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("load health profile", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return ""
	}
	return p.PromptContext()
}

func (s *chatSession) handleTurn(ctx context.Context, msg inboundMessage) error {
	// A clarification answer goes straight back into the booking flow without
	// re-classifying, otherwise "May 5th works" would read as general chat.
	if msg.Type == string(chatbot.EventClarification) || s.booking.Awaiting() {
		return s.booking.HandleTurn(ctx, s.emitter, msg.Message)
	}

	intent, err := s.classifier.Classify(ctx, msg.Message)
	if err != nil {
		s.log.Warn("intent classification failed", zap.Error(err))
		intent = chatbot.IntentNone
	}
	s.log.Debug("message classified", zap.String("intent", intent.String()))

	switch intent {
	case chatbot.IntentAppointment:
		return s.booking.HandleTurn(ctx, s.emitter, msg.Message)
	case chatbot.IntentSymptom:
		return s.symptoms.HandleTurn(ctx, s.emitter, msg.Message, s.healthContext)
	default:
		return s.general.HandleTurn(ctx, s.emitter, msg.Message)
	}
}

// channelEmitter publishes chat events to the room's channel layer group.
type channelEmitter struct {
	layer redisclient.ChannelLayer
	group string
}

func (e *channelEmitter) Emit(ctx context.Context, ev chatbot.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return e.layer.Publish(ctx, e.group, payload)
}
