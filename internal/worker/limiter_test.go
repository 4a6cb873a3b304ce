package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Other providers have their own bucket
	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_AllowPerKey(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	if !limiter.Allow("openai") {
		t.Error("first call should be allowed")
	}
	if limiter.Allow("openai") {
		t.Error("second call should be limited")
	}
	if !limiter.Allow("ollama") {
		t.Error("separate key should have its own burst")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("call %d limited with rate 0 (unlimited)", i)
		}
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.SetRate("ollama", 1000, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow("ollama") {
			t.Fatalf("call %d limited despite burst 10", i)
		}
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	_ = limiter.Allow("openai")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected error when the wait outlives the context")
	}
}

func TestLimiter_SetRateZeroIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.SetRate("ollama", 0, 0)

	for i := 0; i < 100; i++ {
		if !limiter.Allow("ollama") {
			t.Fatalf("call %d limited on an unlimited key", i)
		}
	}
	if !limiter.Allow("openai") || limiter.Allow("openai") {
		t.Error("other keys should keep the default pace")
	}
}
