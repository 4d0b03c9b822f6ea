package app_test

import (
	"context"
	"testing"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/infra/memory"
)

func TestGuestGateBlocksSixthAttempt(t *testing.T) {
	ctx := context.Background()
	gate := app.NewGuestGate(memory.NewGuestQuota(), 5, true)

	for i := 1; i <= 5; i++ {
		allowance := gate.CheckAndIncrement(ctx, "g1")
		if !allowance.Allowed || allowance.Remaining != 5-i {
			t.Fatalf("attempt %d: unexpected %+v", i, allowance)
		}
	}
	if allowance := gate.CheckAndIncrement(ctx, "g1"); allowance.Allowed {
		t.Fatalf("expected sixth attempt blocked")
	}
	if peek := gate.Peek(ctx, "g1"); peek.Allowed || peek.Remaining != 0 {
		t.Fatalf("expected exhausted quota, got %+v", peek)
	}
}

func TestGuestGateFromStoredCounter(t *testing.T) {
	ctx := context.Background()
	quota := memory.NewGuestQuota()
	quota.Set("g1", 4)
	gate := app.NewGuestGate(quota, 5, true)

	if allowance := gate.CheckAndIncrement(ctx, "g1"); !allowance.Allowed {
		t.Fatalf("expected fifth attempt allowed")
	}
	if n, _ := quota.Count(ctx, "g1"); n != 5 {
		t.Fatalf("expected counter 5, got %d", n)
	}
	if allowance := gate.Peek(ctx, "g1"); allowance.Allowed {
		t.Fatalf("expected next check to be blocked")
	}

	_ = gate.Reset(ctx, "g1")
	if allowance := gate.Peek(ctx, "g1"); !allowance.Allowed || allowance.Remaining != 5 {
		t.Fatalf("expected fresh quota after reset, got %+v", allowance)
	}
}
