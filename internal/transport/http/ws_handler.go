package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/logger"
)

type WSHandler struct {
	engine   *app.Engine
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, log *logger.Logger, allowedOrigins ...string) *WSHandler {
	return &WSHandler{
		engine: engine,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades to a websocket bound to one (user, quiz) pair. Every
// inbound message runs the matching engine operation and gets a direct
// reply; engine events for the pair are forwarded as "event" messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)
	quizID := r.URL.Query().Get("quizId")
	userID := userFromContext(r.Context())
	if quizID == "" {
		writeError(w, r, h.log, domain.Errorf(domain.KindInvalidRequest, "missing quizId"))
		return
	}

	updates, cancel, err := h.engine.Subscribe(r.Context(), userID, quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// the request context ends with the handler; keep the logger for engine calls
	ctx := logger.NewContext(context.WithoutCancel(r.Context()), log.With("quiz_id", quizID))

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				// drain so the reader never blocks on a dead connection
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(ctx, userID, quizID, inbound)
		if err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: toPayload(err)}
			continue
		}
		send <- reply
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, userID, quizID string, msg inboundMessage) (outboundMessage[any], error) {
	switch msg.Type {
	case "start":
		sub, err := h.engine.StartOrResume(ctx, userID, quizID)
		return outboundMessage[any]{Type: "started", Payload: sub}, err
	case "answer":
		var in domain.AnswerSubmission
		if err := unmarshalPayload(msg.Payload, &in); err != nil {
			return outboundMessage[any]{}, err
		}
		result, err := h.engine.AnswerQuestion(ctx, userID, quizID, in)
		return outboundMessage[any]{Type: "answerResult", Payload: result}, err
	case "finish":
		result, err := h.engine.FinishAttempt(ctx, userID, quizID)
		return outboundMessage[any]{Type: "finished", Payload: result}, err
	case "powerCard":
		var in powerCardRequest
		if err := unmarshalPayload(msg.Payload, &in); err != nil {
			return outboundMessage[any]{}, err
		}
		use, err := h.engine.UsePowerCard(ctx, userID, quizID, in.QuestionID, in.Type)
		return outboundMessage[any]{Type: "powerCardResult", Payload: use}, err
	case "unlock":
		var in unlockRequest
		if err := unmarshalPayload(msg.Payload, &in); err != nil {
			return outboundMessage[any]{}, err
		}
		result, err := h.engine.PurchaseQuestionUnlock(ctx, userID, quizID, in.QuestionID)
		return outboundMessage[any]{Type: "unlocked", Payload: result}, err
	default:
		return outboundMessage[any]{}, domain.Errorf(domain.KindInvalidRequest, "unsupported message type %q", msg.Type)
	}
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.Wrap(domain.KindInvalidRequest, err, "invalid payload")
	}
	return nil
}
