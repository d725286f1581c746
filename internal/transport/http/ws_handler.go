package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"examifyr-gateway/internal/app"
	"examifyr-gateway/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WSHandler runs play sessions over websocket connections, one session per connection.
type WSHandler struct {
	service  *app.PlayService
	upgrader websocket.Upgrader
}

// NewWSHandler creates a handler that starts sessions through service.
func NewWSHandler(service *app.PlayService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID  domain.QuestionID `json:"questionId"`
	ChoiceIndex *int              `json:"choiceIndex"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	SessionID string     `json:"sessionId"`
	Quiz      publicQuiz `json:"quiz"`
}

type resultPayload struct {
	app.Result
	ElapsedMs int64 `json:"elapsedMs"`
}

// publicQuiz is the quiz as shown to a player: no answers, no explanations.
type publicQuiz struct {
	QuizID     string            `json:"quiz_id"`
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Questions  []publicQuestion  `json:"questions"`
}

type publicQuestion struct {
	ID       domain.QuestionID `json:"id"`
	Question string            `json:"question"`
	Choices  []string          `json:"choices"`
}

func newPublicQuiz(quiz domain.Quiz) publicQuiz {
	questions := make([]publicQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, publicQuestion{ID: q.ID, Question: q.Question, Choices: q.Choices})
	}
	return publicQuiz{
		QuizID:     quiz.QuizID,
		Topic:      quiz.Topic,
		Difficulty: quiz.Difficulty,
		Questions:  questions,
	}
}

// ServeWS upgrades HTTP requests to websockets and runs one play session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeJSON(w, http.StatusBadRequest, `{"message":"missing quizId"}`)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx, quizID)
	if err != nil {
		slog.Info("play session not started", "quizId", quizID, "error", err)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer h.service.End(ctx, session.ID())
	log := slog.With("sessionId", session.ID(), "quizId", quizID)
	log.Debug("play session started")

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("ws write error", "error", err)
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	send <- outboundMessage{Type: "started", Payload: startedPayload{
		SessionID: session.ID(),
		Quiz:      newPublicQuiz(session.Quiz()),
	}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("ws read error", "error", err)
			}
			break
		}
		msg := h.handle(r, session, inbound)
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, session *app.Session, inbound inboundMessage) outboundMessage {
	ctx := r.Context()
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.ChoiceIndex == nil {
			return outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
		}
		progress, err := h.service.Answer(ctx, session.ID(), payload.QuestionID.String(), *payload.ChoiceIndex)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: "progress", Payload: progress}
	case "reset":
		progress, err := h.service.Reset(ctx, session.ID())
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: "progress", Payload: progress}
	case "submit":
		result, err := h.service.Submit(ctx, session.ID())
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: "result", Payload: resultPayload{
			Result:    result,
			ElapsedMs: session.Elapsed().Milliseconds(),
		}}
	default:
		return outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

func errorMessage(err error) outboundMessage {
	message := err.Error()
	if errors.Is(err, domain.ErrQuizNotFound) {
		message = domain.NotFoundHint
	}
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}
