package http

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"
	"nursing-quiz-service/internal/infra/memory"

	"github.com/gorilla/websocket"
)

func TestWebSocketAnswerAndSubmitFlow(t *testing.T) {
	service, _ := newTestQuizService(sampleQuestions())
	auth := NewAuthService("test-secret")
	server := httptest.NewServer(NewRouter(service, auth, RouterOptions{}))
	defer server.Close()

	token, err := auth.IssueJWT("learner-1", "learner")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	conn := dialQuiz(t, server.URL, "examType=nclex-rn&token="+token)
	defer conn.Close()

	_, state := readNext(conn, t, "state")
	if state["phase"] != string(domain.PhaseActive) || state["total"] != float64(2) {
		t.Fatalf("unexpected initial state %v", state)
	}

	writeMsg(t, conn, "select", map[string]any{"answer": "Hyperkalemia"})
	_, state = readNext(conn, t, "state")
	if state["explanationShowing"] != true {
		t.Fatalf("expected explanation after answering, got %v", state)
	}

	writeMsg(t, conn, "select", map[string]any{"answer": "Hypokalemia"})
	_, payload := readUntil(conn, t, "error")
	if !strings.Contains(payload["message"].(string), "already answered") {
		t.Fatalf("expected lock error, got %v", payload)
	}

	writeMsg(t, conn, "submit", nil)
	_, payload = readUntil(conn, t, "result")
	result, ok := payload["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result payload, got %v", payload)
	}
	if result["score"] != float64(50) || result["learnerId"] != "learner-1" {
		t.Fatalf("unexpected result %v", result)
	}
	if !strings.Contains(payload["resultQuery"].(string), "score=50") {
		t.Fatalf("expected result query, got %v", payload["resultQuery"])
	}
}

func TestWebSocketGuestLimitRequiresAuth(t *testing.T) {
	service, deps := newTestQuizService(sampleQuestions())
	deps.quota.Set("guest-9", app.DefaultGuestLimit)
	server := httptest.NewServer(NewRouter(service, NewAuthService("test-secret"), RouterOptions{}))
	defer server.Close()

	conn := dialQuiz(t, server.URL, "examType=nclex-rn&guest_id=guest-9")
	defer conn.Close()
	readNext(conn, t, "state")

	writeMsg(t, conn, "submit", nil)
	var payload map[string]any
	for i := 0; i < 10 && payload == nil; i++ {
		typ, msg := readNext(conn, t, "")
		switch typ {
		case "authRequired":
			payload = msg
		case "state":
			if msg["phase"] != string(domain.PhaseActive) {
				t.Fatalf("refused submission broadcast phase %v", msg["phase"])
			}
		}
	}
	if payload["authRequired"] != true {
		t.Fatalf("expected authRequired payload, got %v", payload)
	}

	// The session stays usable after the refusal.
	writeMsg(t, conn, "next", nil)
	_, state := readUntil(conn, t, "state")
	if state["phase"] != string(domain.PhaseActive) {
		t.Fatalf("expected active session, got %v", state)
	}
}

func TestWebSocketNoQuestions(t *testing.T) {
	service, _ := newTestQuizService(nil)
	server := httptest.NewServer(NewRouter(service, NewAuthService("test-secret"), RouterOptions{}))
	defer server.Close()

	conn := dialQuiz(t, server.URL, "examType=nclex-pn")
	defer conn.Close()
	_, payload := readNext(conn, t, "noQuestions")
	if payload["phase"] != string(domain.PhaseNoQuestions) {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestWebSocketCloseAbandonsSession(t *testing.T) {
	service, deps := newTestQuizService(sampleQuestions())
	server := httptest.NewServer(NewRouter(service, NewAuthService("test-secret"), RouterOptions{}))
	defer server.Close()

	conn := dialQuiz(t, server.URL, "examType=nclex-rn")
	readNext(conn, t, "state")
	if deps.sessions.Len() != 1 {
		t.Fatalf("expected one live session, got %d", deps.sessions.Len())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for deps.sessions.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not abandoned after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func dialQuiz(t *testing.T, serverURL, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + serverURL[len("http"):] + "/ws/quiz?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func writeMsg(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// readUntil skips state broadcasts until a message of the wanted type arrives.
func readUntil(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == expect {
			return typ, payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return "", nil
}

type testDeps struct {
	sessions *memory.SessionStore
	quota    *memory.GuestQuota
	results  *memory.ResultStore
}

func newTestQuizService(questions []domain.Question) (*app.QuizService, testDeps) {
	deps := testDeps{
		sessions: memory.NewSessionStore(),
		quota:    memory.NewGuestQuota(),
		results:  memory.NewResultStore(time.Hour),
	}
	source := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute)
	gate := app.NewGuestGate(deps.quota, app.DefaultGuestLimit, true)
	service := app.NewQuizService(deps.sessions, source, deps.results, gate, nil, app.Options{}).
		WithShuffle(func([]domain.Question) {})
	return service, deps
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			ExamType:      "nclex-rn",
			Question:      "Peaked T waves on an ECG most likely indicate which imbalance?",
			Options:       []string{"Hypokalemia", "Hyperkalemia", "Hyponatremia", "Hypercalcemia"},
			CorrectAnswer: "Hyperkalemia",
			Explanation:   "Elevated potassium produces tall, peaked T waves.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Physiological Adaptation",
		},
		{
			ID:            "q2",
			ExamType:      "nclex-rn",
			Question:      "Which position is best for a client in respiratory distress?",
			Options:       []string{"Supine", "Prone", "High Fowler's", "Trendelenburg"},
			CorrectAnswer: "High Fowler's",
			Explanation:   "Sitting upright allows maximal lung expansion.",
			Difficulty:    domain.DifficultyIntermediate,
			Category:      "Basic Care and Comfort",
		},
	}
}
