package redis

import (
	"testing"
	"time"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	store.Put(app.NewSession("s1", "nclex-rn", domain.Learner{GuestID: "g1"}))
	if !mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if v, _ := mr.Get("quiz:session:s1"); v != "nclex-rn" {
		t.Fatalf("expected exam id marker, got %q", v)
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected local session")
	}

	store.Delete("s1")
	if mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
}
