package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
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

type selectPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request, starts a quiz session for the caller and
// drives it from inbound messages until the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.QuestionQuery{
		ExamType:   q.Get("examType"),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
		Category:   q.Get("category"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		query.Limit = limit
	}
	query, err := h.service.NormalizeQuery(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	view, err := h.service.Start(ctx, LearnerFrom(ctx), query)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	if view.Phase == domain.PhaseNoQuestions {
		_ = conn.WriteJSON(outboundMessage{Type: "noQuestions", Payload: view})
		return
	}
	sessionID := view.ID
	caller := LearnerFrom(ctx)
	if caller.IsGuest() {
		caller.GuestID = view.GuestID
	}

	updates, cancel, err := h.service.Subscribe(ctx, caller, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer func() {
		_ = h.service.Abandon(ctx, caller, sessionID)
	}()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
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
				case send <- outboundMessage{Type: "state", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	emit := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	emitErr := func(err error) {
		emit(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}
	emitOutcome := func(outcome domain.SubmitOutcome) {
		if outcome.AuthRequired {
			emit(outboundMessage{Type: "authRequired", Payload: outcome})
			return
		}
		emit(outboundMessage{Type: "result", Payload: newSubmitResponse(outcome)})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Answer == "" {
				emitErr(errors.New("invalid select payload"))
				continue
			}
			if _, err := h.service.SelectAnswer(ctx, caller, sessionID, payload.Answer); err != nil {
				emitErr(err)
			}
		case "next":
			_, outcome, err := h.service.Next(ctx, caller, sessionID)
			if err != nil {
				emitErr(err)
				continue
			}
			if outcome != nil {
				emitOutcome(*outcome)
			}
		case "previous":
			if _, err := h.service.Previous(ctx, caller, sessionID); err != nil {
				emitErr(err)
			}
		case "bookmark":
			if _, err := h.service.ToggleBookmark(ctx, caller, sessionID); err != nil {
				emitErr(err)
			}
		case "submit":
			outcome, err := h.service.Submit(ctx, caller, sessionID)
			if err != nil {
				emitErr(err)
				continue
			}
			emitOutcome(outcome)
		default:
			emitErr(errors.New("unsupported message type"))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
