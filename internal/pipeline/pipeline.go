// Package pipeline orchestrates one analysis run: sanitize, segment, retrieve,
// detect, categorize, deduplicate, optional secondary opinion, score and plan.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/ppiankov/contradicta/internal/cache"
	"github.com/ppiankov/contradicta/internal/categorize"
	"github.com/ppiankov/contradicta/internal/dedupe"
	"github.com/ppiankov/contradicta/internal/detect"
	"github.com/ppiankov/contradicta/internal/ingest"
	"github.com/ppiankov/contradicta/internal/llm"
	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/plan"
	"github.com/ppiankov/contradicta/internal/playbook"
	"github.com/ppiankov/contradicta/internal/retrieve"
	"github.com/ppiankov/contradicta/internal/sanitize"
	"github.com/ppiankov/contradicta/internal/score"
	"github.com/ppiankov/contradicta/internal/segment"
	"github.com/ppiankov/contradicta/internal/worker"
)

// Analyzer runs the analysis. It is safe for concurrent use across cases:
// components are stateless and the playbook library is read-only.
type Analyzer struct {
	cfg       *model.Config
	engine    *ingest.Engine
	segmenter *segment.Segmenter
	detector  *detect.Detector
	scorer    *score.Scorer
	planner   *plan.Planner
	logger    *slog.Logger
	now       func() time.Time

	verifier    llm.Verifier // nil when secondary opinions are disabled
	checkerOpts []llm.CheckerOption
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithVerifier enables secondary opinions through v instead of the configured provider
func WithVerifier(v llm.Verifier) Option {
	return func(a *Analyzer) { a.verifier = v }
}

// WithClock sets the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an analyzer. A configured secondary-opinion provider that
// fails to initialize is logged and left disabled.
func NewAnalyzer(cfg *model.Config, lib *playbook.Library, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if lib == nil {
		return nil, fmt.Errorf("analyzer: %w", playbook.ErrNoLibrary)
	}

	a := &Analyzer{
		cfg:       cfg,
		engine:    ingest.NewEngine(),
		segmenter: segment.NewSegmenter(cfg.Segment),
		detector:  detect.NewDetector(cfg.Detect),
		scorer:    score.NewScorer(),
		planner:   plan.NewPlanner(lib, cfg.Plan),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.verifier == nil && cfg.LLM.Provider != "" {
		v, err := llm.NewVerifier(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			a.logger.Warn("secondary opinion disabled", "provider", cfg.LLM.Provider, "error", err)
		} else {
			a.verifier = v
		}
	}
	if a.verifier != nil {
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		if a.verifier.Name() == "ollama" {
			// A local server has no request quota
			limiter.SetRate(a.verifier.Name(), 0, 0)
		}
		a.checkerOpts = append(a.checkerOpts, llm.WithLimiter(limiter), llm.WithLogger(a.logger))
		if store := cache.New(cfg.Cache); store != nil {
			a.checkerOpts = append(a.checkerOpts, llm.WithCache(store, cfg.Cache.DiskTTL))
		}
	}
	return a, nil
}

// AnalyzeCase imports a case file or directory and analyzes it
func (a *Analyzer) AnalyzeCase(ctx context.Context, path string) (*model.Report, error) {
	sources, err := a.engine.ImportCase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return a.Analyze(ctx, filepath.Base(filepath.Clean(path)), sources)
}

// Analyze runs the full analysis over already imported sources. The report is
// complete or absent: a cancelled context discards all intermediate results.
func (a *Analyzer) Analyze(ctx context.Context, subject string, sources []ingest.Source) (*model.Report, error) {
	start := time.Now()
	report := &model.Report{
		Subject:        subject,
		GeneratedAt:    a.now(),
		Documents:      make([]model.DocumentInfo, 0, len(sources)),
		Claims:         []model.Claim{},
		Contradictions: []model.DetectedContradiction{},
		Insights:       []model.ContradictionInsight{},
		Principles:     model.DefaultPrinciples(),
	}

	// 1. Sanitize and segment each document
	var claims []model.Claim
	for _, src := range sources {
		info, docClaims := a.claimsOf(src)
		report.Documents = append(report.Documents, info)
		claims = append(claims, docClaims...)
	}

	// 2. Candidate pairs: exhaustive for small inputs, BM25 above the limit
	pairs, usedIndex := retrieve.Pairs(claims, a.cfg.Retrieval)
	a.logger.Debug("candidate pairs", "claims", len(claims), "pairs", len(pairs), "bm25", usedIndex)

	// 3. Detect and categorize
	detections := a.detector.Detect(claims, pairs)
	detected := len(detections)
	contradictions := categorize.CategorizeAll(detections)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. Order by claim production order, then deduplicate keeping the first seen
	sortByClaims(contradictions, claims)
	contradictions = dedupe.Contradictions(contradictions, a.cfg.Dedupe.ContradictionThreshold)

	// 5. Optional secondary opinion, bounded per run
	if a.verifier != nil {
		checker := llm.NewChecker(a.verifier, a.cfg.LLM, a.checkerOpts...)
		contradictions = recategorize(contradictions, checker.CheckAll(ctx, contradictions))
		report.SecondaryOpinion = checker.Info()
	}

	// 6. Score and plan
	insights := a.scorer.ScoreAll(contradictions)
	examPlan := a.planner.Plan(contradictions, insights)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := dedupe.Claims(claims, a.cfg.Dedupe.ClaimThreshold)
	report.Claims = append(report.Claims, kept...)
	report.Contradictions = append(report.Contradictions, contradictions...)
	report.Insights = append(report.Insights, insights...)
	report.Plan = examPlan
	report.Stats = buildStats(claims, kept, pairs, usedIndex, detected, contradictions, examPlan)

	a.logger.Info("analysis complete",
		"subject", subject,
		"documents", len(report.Documents),
		"claims", len(claims),
		"contradictions", len(contradictions),
		"plan_steps", report.Stats.PlanSteps,
		"duration", time.Since(start).Round(time.Millisecond))
	return report, nil
}

// claimsOf turns one source into claims: records directly, narrative text through
// the sanitizer and segmenter
func (a *Analyzer) claimsOf(src ingest.Source) (model.DocumentInfo, []model.Claim) {
	doc := src.Document
	info := model.DocumentInfo{ID: doc.ID, Title: doc.Title}

	if src.IsRecords() {
		claims := segment.FromRecords(doc.ID, src.Records)
		info.Strategy = "records"
		info.Claims = len(claims)
		for _, c := range claims {
			info.Chars += len(c.Text)
		}
		return info, claims
	}

	clean := sanitize.Inspect(doc.Text)
	for _, block := range clean.Removed {
		a.logger.Debug("sanitizer removed block", "document", doc.ID, "reason", block.Reason, "preview", block.Preview)
	}

	// Anchors index into the normalized text, with removed blocks skipped in place
	doc.Text = clean.Normalized
	res := a.segmenter.SegmentExcluding(doc, clean.RemovedSpans())

	info.Strategy = string(res.Strategy)
	info.Chars = len(clean.Text)
	info.Claims = len(res.Claims)
	info.Removed = clean.RemovedBytes()
	return info, res.Claims
}

// recategorize re-runs the categorizer on contradictions whose status the
// secondary opinion moved, since hard and rhetorical categories depend on it
func recategorize(before, after []model.DetectedContradiction) []model.DetectedContradiction {
	for i := range after {
		if i < len(before) && after[i].Status != before[i].Status {
			after[i] = categorize.Categorize(after[i])
		}
	}
	return after
}

// sortByClaims orders contradictions by the production position of their first,
// then second claim, then conflict type
func sortByClaims(cs []model.DetectedContradiction, claims []model.Claim) {
	pos := make(map[string]int, len(claims))
	for i, c := range claims {
		if _, ok := pos[c.ID]; !ok {
			pos[c.ID] = i
		}
	}
	position := func(id string) int {
		if p, ok := pos[id]; ok {
			return p
		}
		return len(claims)
	}

	sort.SliceStable(cs, func(i, j int) bool {
		a1, b1 := position(cs[i].Claim1.ID), position(cs[j].Claim1.ID)
		if a1 != b1 {
			return a1 < b1
		}
		a2, b2 := position(cs[i].Claim2.ID), position(cs[j].Claim2.ID)
		if a2 != b2 {
			return a2 < b2
		}
		return cs[i].Type.Order() < cs[j].Type.Order()
	})
}

func buildStats(claims, kept []model.Claim, pairs []retrieve.Pair, usedIndex bool, detected int,
	cs []model.DetectedContradiction, examPlan model.CrossExamPlan) model.Stats {
	stats := model.Stats{
		Claims:        len(claims),
		ClaimsMerged:  len(claims) - len(kept),
		PairsCompared: len(pairs),
		UsedRetrieval: usedIndex,
		Detections:    len(cs),
		Merged:        detected - len(cs),
		PlanSteps:     examPlan.StepCount(),
	}
	if len(cs) == 0 {
		return stats
	}

	stats.ByType = make(map[string]int)
	stats.ByStatus = make(map[string]int)
	stats.ByCategory = make(map[string]int)
	for _, c := range cs {
		stats.ByType[string(c.Type)]++
		stats.ByStatus[string(c.Status)]++
		stats.ByCategory[string(c.Category)]++
		if len(c.Anchors()) == 0 {
			stats.ExcludedNoAnchor++
		}
	}
	return stats
}
