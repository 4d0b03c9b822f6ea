package memory

import (
	"testing"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Put(app.NewSession("s1", "nclex-rn", domain.Learner{GuestID: "g1"}))
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
