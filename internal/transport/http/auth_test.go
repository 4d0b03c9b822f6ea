package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIdentifyResolvesLearner(t *testing.T) {
	auth := NewAuthService("test-secret")
	token, err := auth.IssueJWT("learner-7", "learner")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen []string
	h := auth.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := LearnerFrom(r.Context())
		seen = append(seen, l.UserID+"|"+l.GuestID)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(GuestHeader, "g-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/?guest_id=g-2", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"learner-7|g-1", "|g-2", "learner-7|"}
	if len(seen) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestIdentifyRejectsBadTokens(t *testing.T) {
	auth := NewAuthService("test-secret")
	other := NewAuthService("other-secret")
	foreign, _ := other.IssueJWT("learner-7", "learner")

	expired := NewAuthService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	stale, _ := expired.IssueJWT("learner-7", "learner")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "learner-7"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	h := auth.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run for a rejected token")
	}))
	for name, tok := range map[string]string{"foreign": foreign, "expired": stale, "none": unsigned, "garbage": "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestTokenHandlerAndClaim(t *testing.T) {
	service, deps := newTestQuizService(sampleQuestions())
	auth := NewAuthService("test-secret")
	router := NewRouter(service, auth, RouterOptions{EnableLocalLogin: true})

	rec := doJSON(t, router, http.MethodPost, "/auth/token", map[string]string{"username": "nurse", "password": "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/auth/token", map[string]string{"username": "nurse", "password": "nurse"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)

	deps.quota.Set("guest-1", 5)

	rec = doJSON(t, router, http.MethodPost, "/api/guest/claim", nil, map[string]string{GuestHeader: "guest-1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("guest claim: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/guest/claim", nil, map[string]string{
		GuestHeader:     "guest-1",
		"Authorization": "Bearer " + body["access_token"],
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("claim: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/guest/quota", nil, map[string]string{GuestHeader: "guest-1"})
	var allowance struct {
		Allowed   bool `json:"allowed"`
		Remaining int  `json:"remaining"`
	}
	decodeBody(t, rec, &allowance)
	if !allowance.Allowed || allowance.Remaining != 5 {
		t.Fatalf("expected reset allowance, got %+v", allowance)
	}
}

func TestLocalLoginDisabledByDefault(t *testing.T) {
	service, _ := newTestQuizService(nil)
	router := NewRouter(service, NewAuthService("test-secret"), RouterOptions{})
	rec := doJSON(t, router, http.MethodPost, "/auth/token", map[string]string{"username": "a", "password": "a"}, nil)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected local login to be unavailable")
	}
}
