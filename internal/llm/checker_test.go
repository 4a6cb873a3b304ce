package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/contradicta/internal/cache"
	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/worker"
)

// mockVerifier returns a fixed opinion or error
type mockVerifier struct {
	opinion model.Opinion
	err     error
	calls   atomic.Int32
}

func (m *mockVerifier) Name() string { return "mock" }

func (m *mockVerifier) Verify(ctx context.Context, req VerifyRequest) (*model.Opinion, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	op := m.opinion
	return &op, nil
}

func contradiction(id string, status model.Status) model.DetectedContradiction {
	return model.DetectedContradiction{
		ID:       id,
		Type:     model.ConflictTemporal,
		Severity: model.SeverityHigh,
		Status:   status,
		Quote1:   "I signed the lease on " + id + " in March.",
		Quote2:   "I signed the lease on " + id + " in May.",
		Metadata: map[string]any{"raw_a": "March"},
	}
}

func testConfig() model.LLMConfig {
	return model.LLMConfig{Model: "test-model", MaxCalls: 10, MinConfidence: 0.7, Timeout: time.Second}
}

func TestChecker_VerifiedUnchanged(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: false, Confidence: 1}}
	checker := NewChecker(v, testConfig())

	in := contradiction("x", model.StatusVerified)
	out := checker.Check(context.Background(), in)

	if out.Status != model.StatusVerified {
		t.Errorf("status = %s, want VERIFIED", out.Status)
	}
	if v.calls.Load() != 0 {
		t.Errorf("expected no provider call, got %d", v.calls.Load())
	}
	if len(out.History) != 0 {
		t.Errorf("expected no history, got %+v", out.History)
	}
}

func TestChecker_PromotesSuspicious(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.9, Reason: "same lease"}}
	checker := NewChecker(v, testConfig())

	in := contradiction("x", model.StatusSuspicious)
	out := checker.Check(context.Background(), in)

	if out.Status != model.StatusLikely {
		t.Errorf("status = %s, want LIKELY", out.Status)
	}
	if in.Status != model.StatusSuspicious || len(in.History) != 0 {
		t.Error("input contradiction was modified")
	}
	if len(out.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(out.History))
	}
	h := out.History[0]
	if h.Stage != "secondary_opinion" || h.Field != "status" || h.From != "SUSPICIOUS" || h.To != "LIKELY" {
		t.Errorf("unexpected history entry: %+v", h)
	}
	if !strings.Contains(h.Reason, "same lease") {
		t.Errorf("reason should carry the opinion reason: %q", h.Reason)
	}

	info := checker.Info()
	if info.Promoted != 1 || info.Demoted != 0 || info.Calls != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Provider != "mock" || info.Model != "test-model" || !info.Enabled {
		t.Errorf("unexpected info identity: %+v", info)
	}
}

func TestChecker_DemotesLikely(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: false, Contradiction: false, Confidence: 0.8}}
	checker := NewChecker(v, testConfig())

	out := checker.Check(context.Background(), contradiction("x", model.StatusLikely))
	if out.Status != model.StatusSuspicious {
		t.Errorf("status = %s, want SUSPICIOUS", out.Status)
	}
	if checker.Info().Demoted != 1 {
		t.Errorf("expected 1 demotion, got %+v", checker.Info())
	}
}

func TestChecker_ConfidenceGate(t *testing.T) {
	tests := []struct {
		name   string
		status model.Status
		op     model.Opinion
		want   model.Status
	}{
		{"weak confirmation", model.StatusSuspicious, model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.69}, model.StatusSuspicious},
		{"weak rejection", model.StatusLikely, model.Opinion{Confidence: 0.5}, model.StatusLikely},
		{"confirmation of likely", model.StatusLikely, model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.95}, model.StatusLikely},
		{"rejection of suspicious", model.StatusSuspicious, model.Opinion{Confidence: 0.95}, model.StatusSuspicious},
		{"same fact without conflict", model.StatusLikely, model.Opinion{SameFact: true, Confidence: 0.9}, model.StatusSuspicious},
		{"gate boundary", model.StatusSuspicious, model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.7}, model.StatusLikely},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(&mockVerifier{opinion: tt.op}, testConfig())
			out := checker.Check(context.Background(), contradiction("x", tt.status))
			if out.Status != tt.want {
				t.Errorf("status = %s, want %s", out.Status, tt.want)
			}
			if len(out.History) != 1 {
				t.Errorf("every decision is recorded, got %d entries", len(out.History))
			}
		})
	}
}

func TestChecker_ErrorIsNoOpinion(t *testing.T) {
	v := &mockVerifier{err: errors.New("connection refused")}
	checker := NewChecker(v, testConfig())

	out := checker.Check(context.Background(), contradiction("x", model.StatusLikely))
	if out.Status != model.StatusLikely {
		t.Errorf("status = %s, want LIKELY", out.Status)
	}
	if len(out.History) != 1 || !strings.HasPrefix(out.History[0].Reason, "no opinion") {
		t.Errorf("unexpected history: %+v", out.History)
	}
	if w := checker.Info().Warnings; len(w) != 1 || !strings.Contains(w[0], "connection refused") {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestChecker_Budget(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.9}}
	cfg := testConfig()
	cfg.MaxCalls = 2
	checker := NewChecker(v, cfg)

	in := []model.DetectedContradiction{
		contradiction("a", model.StatusSuspicious),
		contradiction("b", model.StatusSuspicious),
		contradiction("c", model.StatusSuspicious),
	}
	out := checker.CheckAll(context.Background(), in)

	if v.calls.Load() != 2 {
		t.Errorf("expected 2 provider calls, got %d", v.calls.Load())
	}
	if out[0].Status != model.StatusLikely || out[1].Status != model.StatusLikely {
		t.Error("first two contradictions should be promoted")
	}
	if out[2].Status != model.StatusSuspicious {
		t.Errorf("third contradiction should be unchanged, got %s", out[2].Status)
	}
	if !strings.Contains(out[2].History[0].Reason, "budget exhausted") {
		t.Errorf("unexpected reason: %q", out[2].History[0].Reason)
	}
}

func TestChecker_CacheSkipsProvider(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.9}}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	checker := NewChecker(v, testConfig(), WithCache(store, time.Minute))

	first := checker.Check(context.Background(), contradiction("x", model.StatusSuspicious))
	second := checker.Check(context.Background(), contradiction("x", model.StatusSuspicious))

	if v.calls.Load() != 1 {
		t.Errorf("expected 1 provider call, got %d", v.calls.Load())
	}
	if first.Status != second.Status {
		t.Errorf("cached opinion should give the same status: %s vs %s", first.Status, second.Status)
	}
	if info := checker.Info(); info.CacheHits != 1 || info.Calls != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestChecker_LimiterCancelled(t *testing.T) {
	v := &mockVerifier{opinion: model.Opinion{SameFact: true, Contradiction: true, Confidence: 0.9}}
	limiter := worker.NewLimiter(0.001, 1)
	_ = limiter.Allow("mock")
	checker := NewChecker(v, testConfig(), WithLimiter(limiter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := checker.Check(ctx, contradiction("x", model.StatusSuspicious))

	if out.Status != model.StatusSuspicious {
		t.Errorf("status = %s, want SUSPICIOUS", out.Status)
	}
	if v.calls.Load() != 0 {
		t.Errorf("expected no provider call, got %d", v.calls.Load())
	}
}
