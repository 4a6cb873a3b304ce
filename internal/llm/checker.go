package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ppiankov/contradicta/internal/cache"
	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/worker"
)

const opinionStage = "secondary_opinion"

// Checker applies bounded secondary opinions to detected contradictions.
// It is safe for concurrent use; the call budget is shared by all callers.
type Checker struct {
	verifier      Verifier
	modelName     string
	minConfidence float64
	timeout       time.Duration

	limiter  *worker.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger

	budget    atomic.Int64
	calls     atomic.Int64
	cacheHits atomic.Int64
	promoted  atomic.Int64
	demoted   atomic.Int64

	mu       sync.Mutex
	warnings []string
}

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithLimiter paces provider calls
func WithLimiter(l *worker.Limiter) CheckerOption {
	return func(c *Checker) { c.limiter = l }
}

// WithCache stores opinions for ttl so reruns skip the provider
func WithCache(store cache.Cache, ttl time.Duration) CheckerOption {
	return func(c *Checker) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker wraps verifier with the budget, timeout and confidence gate from cfg
func NewChecker(verifier Verifier, cfg model.LLMConfig, opts ...CheckerOption) *Checker {
	c := &Checker{
		verifier:      verifier,
		modelName:     cfg.Model,
		minConfidence: cfg.MinConfidence,
		timeout:       cfg.Timeout,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if c.minConfidence <= 0 {
		c.minConfidence = 0.7
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	maxCalls := cfg.MaxCalls
	if maxCalls <= 0 {
		maxCalls = 20
	}
	c.budget.Store(int64(maxCalls))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAll returns the contradictions with opinion-adjusted status tiers, in input order
func (c *Checker) CheckAll(ctx context.Context, cs []model.DetectedContradiction) []model.DetectedContradiction {
	out := make([]model.DetectedContradiction, len(cs))
	for i, d := range cs {
		out[i] = c.Check(ctx, d)
	}
	return out
}

// Check returns a copy of d whose status may move one tier.
// VERIFIED detections are returned unchanged without a call.
func (c *Checker) Check(ctx context.Context, d model.DetectedContradiction) model.DetectedContradiction {
	if d.Status == model.StatusVerified {
		return d
	}
	out := d.Clone()

	op, source, err := c.opinion(ctx, d)
	if err != nil {
		c.logger.Warn("secondary opinion unavailable",
			"contradiction", d.ID, "provider", c.verifier.Name(), "temporary", IsTemporary(err), "error", err)
		c.warn(fmt.Sprintf("%s: %v", d.ID, err))
		record(&out, string(d.Status), string(d.Status), "no opinion: "+err.Error())
		return out
	}

	next, reason := c.apply(d.Status, op)
	c.logger.Debug("secondary opinion",
		"contradiction", d.ID, "source", source,
		"same_fact", op.SameFact, "contradiction_confirmed", op.Contradiction,
		"confidence", op.Confidence, "from", d.Status, "to", next)

	switch {
	case next == d.Status:
	case next == d.Status.Promote():
		c.promoted.Add(1)
	default:
		c.demoted.Add(1)
	}
	record(&out, string(d.Status), string(next), reason)
	out.Status = next
	return out
}

// apply maps an opinion onto a status tier
func (c *Checker) apply(status model.Status, op *model.Opinion) (model.Status, string) {
	summary := fmt.Sprintf("same_fact=%t contradiction=%t confidence=%.2f", op.SameFact, op.Contradiction, op.Confidence)
	if op.Reason != "" {
		summary += ": " + op.Reason
	}
	if op.Confidence < c.minConfidence {
		return status, "opinion below confidence gate (" + summary + ")"
	}

	confirmed := op.SameFact && op.Contradiction
	switch {
	case confirmed && status == model.StatusSuspicious:
		return status.Promote(), "opinion confirms (" + summary + ")"
	case !confirmed && status == model.StatusLikely:
		return status.Demote(), "opinion rejects (" + summary + ")"
	}
	return status, "opinion agrees with current tier (" + summary + ")"
}

// opinion returns a cached opinion or spends one call of the budget
func (c *Checker) opinion(ctx context.Context, d model.DetectedContradiction) (*model.Opinion, string, error) {
	req := VerifyRequest{
		ClaimA:        quoteOrClaim(d.Quote1, d.Claim1),
		ClaimB:        quoteOrClaim(d.Quote2, d.Claim2),
		SuggestedType: d.Type,
	}
	key := cache.VerdictKey(c.verifier.Name(), c.modelName, req.SuggestedType, req.ClaimA, req.ClaimB)

	if c.cache != nil {
		var cached model.Opinion
		if cache.GetJSON(c.cache, key, &cached) {
			c.cacheHits.Add(1)
			return &cached, "cache", nil
		}
	}

	if c.budget.Add(-1) < 0 {
		return nil, "", fmt.Errorf("call budget exhausted")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.verifier.Name()); err != nil {
			return nil, "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.calls.Add(1)
	op, err := c.verifier.Verify(callCtx, req)
	if err != nil {
		return nil, "", err
	}

	if c.cache != nil {
		if err := cache.SetJSON(c.cache, key, op, c.cacheTTL); err != nil {
			c.logger.Debug("verdict cache write failed", "error", err)
		}
	}
	return op, "provider", nil
}

// Info summarizes the checker's activity for the report
func (c *Checker) Info() *model.SecondaryOpinionInfo {
	c.mu.Lock()
	warnings := append([]string(nil), c.warnings...)
	c.mu.Unlock()

	return &model.SecondaryOpinionInfo{
		Enabled:   true,
		Provider:  c.verifier.Name(),
		Model:     c.modelName,
		Calls:     int(c.calls.Load()),
		CacheHits: int(c.cacheHits.Load()),
		Promoted:  int(c.promoted.Load()),
		Demoted:   int(c.demoted.Load()),
		Warnings:  warnings,
	}
}

func (c *Checker) warn(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, msg)
}

func record(d *model.DetectedContradiction, from, to, reason string) {
	d.History = append(d.History, model.FieldChange{
		Stage:  opinionStage,
		Field:  "status",
		From:   from,
		To:     to,
		Reason: reason,
	})
}

func quoteOrClaim(quote string, claim model.Claim) string {
	if quote != "" {
		return quote
	}
	return claim.Text
}
