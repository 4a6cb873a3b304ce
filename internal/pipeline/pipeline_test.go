package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/contradicta/internal/ingest"
	"github.com/ppiankov/contradicta/internal/llm"
	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/playbook"
	"github.com/ppiankov/contradicta/internal/textutil"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	lib, err := playbook.Embedded()
	if err != nil {
		t.Fatalf("embedded playbook: %v", err)
	}
	cfg := model.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	a, err := NewAnalyzer(cfg, lib, append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)...)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func textSource(id, text string) ingest.Source {
	return ingest.Source{
		Format:   "text",
		Document: model.Document{ID: id, Title: id + ".txt", Text: text},
	}
}

func signingSources() []ingest.Source {
	return []ingest.Source{
		textSource("affidavit", "The agreement was signed on 15.3.2020."),
		textSource("testimony", "The agreement was signed on 20.5.2021."),
	}
}

func TestAnalyze_DetectsScoresAndPlans(t *testing.T) {
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "case-1", signingSources())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.Subject != "case-1" || !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("unexpected header: %s %v", report.Subject, report.GeneratedAt)
	}
	if len(report.Documents) != 2 || report.Documents[0].Claims != 1 {
		t.Errorf("unexpected documents: %+v", report.Documents)
	}
	if report.Stats.Claims != 2 || report.Stats.PairsCompared != 1 || report.Stats.UsedRetrieval {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}

	if len(report.Contradictions) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(report.Contradictions))
	}
	c := report.Contradictions[0]
	if c.Type != model.ConflictTemporal || c.Status != model.StatusVerified {
		t.Errorf("unexpected contradiction: %s %s", c.Type, c.Status)
	}
	if c.Category != model.CategoryHard {
		t.Errorf("category = %s, want hard", c.Category)
	}
	if c.Claim1.Locator.DocID != "affidavit" || c.Claim2.Locator.DocID != "testimony" {
		t.Errorf("claims out of production order: %s, %s", c.Claim1.Locator.DocID, c.Claim2.Locator.DocID)
	}

	if len(report.Insights) != 1 || report.Insights[0].ContradictionID != c.ID {
		t.Fatalf("expected one insight for %s, got %+v", c.ID, report.Insights)
	}
	if len(report.Plan.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(report.Plan.Stages))
	}
	early := report.Plan.Stages[0]
	if early.Stage != model.StageEarly || len(early.Steps) != 5 {
		t.Errorf("expected 5 early steps, got %s with %d", early.Stage, len(early.Steps))
	}
	for _, step := range early.Steps {
		if len(step.Anchors) == 0 {
			t.Errorf("step %s has no anchors", step.ID)
		}
	}
	if report.Stats.PlanSteps != 5 || report.Stats.ByType["temporal_date"] != 1 {
		t.Errorf("unexpected stats: %+v", report.Stats)
	}
	if report.SecondaryOpinion != nil {
		t.Error("secondary opinion should be absent when disabled")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	r := NewRenderer(true)

	var first, second bytes.Buffer
	for _, buf := range []*bytes.Buffer{&first, &second} {
		report, err := a.Analyze(context.Background(), "case", signingSources())
		if err != nil {
			t.Fatal(err)
		}
		if err := r.RenderJSON(buf, report); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two runs over identical input produced different JSON")
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "empty", []ingest.Source{textSource("blank", "   ")})
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if report.Claims == nil || report.Contradictions == nil || report.Insights == nil {
		t.Error("slices must be empty, not nil")
	}
	if len(report.Plan.Stages) != 3 || report.Plan.StepCount() != 0 {
		t.Errorf("expected an empty three-stage plan, got %+v", report.Plan)
	}

	var buf bytes.Buffer
	if err := NewRenderer(false).RenderJSON(&buf, report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"contradictions": []`) {
		t.Errorf("expected empty contradictions array in JSON:\n%s", buf.String())
	}
}

func TestAnalyze_SanitizesGeneratedSections(t *testing.T) {
	text := "The agreement was signed on 15.3.2020 at the bank.\n\n" +
		"## Analysis Report\n\n" +
		"Contradictions detected: the agreement was signed on 1.1.2019.\n"
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "case", []ingest.Source{textSource("mixed", text)})
	if err != nil {
		t.Fatal(err)
	}
	if report.Documents[0].Removed == 0 {
		t.Error("expected the report section to be removed")
	}
	for _, c := range report.Claims {
		if strings.Contains(c.Text, "2019") {
			t.Errorf("claim from a generated section survived: %q", c.Text)
		}
	}
	if len(report.Contradictions) != 0 {
		t.Errorf("generated text must not produce contradictions: %+v", report.Contradictions)
	}
}

func TestAnalyze_AnchorsIndexNormalizedText(t *testing.T) {
	text := "The tenant paid the rent for March in cash.\n\n" +
		"claim_id: c1\nstatus: VERIFIED\n\n" +
		"The agreement was signed on 15.3.2020 at the notary office."
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "case", []ingest.Source{textSource("aff", text)})
	if err != nil {
		t.Fatal(err)
	}

	normalized := textutil.Normalize(text)
	if len(report.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %+v", report.Claims)
	}
	for _, c := range report.Claims {
		loc := c.Locator
		if !loc.HasSpan() {
			t.Fatalf("claim %s has no span", c.ID)
		}
		if got := normalized[*loc.CharStart:*loc.CharEnd]; got != c.Text {
			t.Errorf("span [%d,%d) = %q, claim text %q", *loc.CharStart, *loc.CharEnd, got, c.Text)
		}
	}
	if report.Documents[0].Removed != len("claim_id: c1\nstatus: VERIFIED") {
		t.Errorf("Removed = %d", report.Documents[0].Removed)
	}
}

func TestAnalyze_PageNumbers(t *testing.T) {
	text := "The tenant paid the rent to the landlord.\n\f\nThe agreement was signed on 15.3.2020."
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "case", []ingest.Source{textSource("aff", text)})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %+v", report.Claims)
	}
	for i, c := range report.Claims {
		if c.Locator.PageNo == nil || *c.Locator.PageNo != i+1 {
			t.Errorf("claim %d page = %v, want %d", i, c.Locator.PageNo, i+1)
		}
	}
}

func TestAnalyze_ClaimRecords(t *testing.T) {
	src := ingest.Source{
		Format:   "json",
		Document: model.Document{ID: "police"},
		Records: []model.ClaimRecord{
			{ID: "r1", Text: "The agreement was signed on 15.3.2020.", Page: model.IntPtr(2)},
			{ID: "r2", Text: "The agreement was signed on 20.5.2021.", Page: model.IntPtr(7)},
		},
	}
	report, err := newTestAnalyzer(t).Analyze(context.Background(), "records", []ingest.Source{src})
	if err != nil {
		t.Fatal(err)
	}
	if report.Documents[0].Strategy != "records" || report.Documents[0].Claims != 2 {
		t.Errorf("unexpected document info: %+v", report.Documents[0])
	}
	if len(report.Contradictions) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(report.Contradictions))
	}
	if report.Contradictions[0].Claim1.ID != "r1" {
		t.Errorf("record ids should be kept, got %s", report.Contradictions[0].Claim1.ID)
	}
	if report.Plan.StepCount() == 0 {
		t.Error("records anchored to a document should be planned")
	}
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestAnalyzer(t).Analyze(ctx, "case", signingSources())
	if !errors.Is(err, context.Canceled) || report != nil {
		t.Errorf("expected no report and context.Canceled, got %v, %v", report, err)
	}
}

// stubVerifier rejects every pair
type stubVerifier struct{ calls int }

func (s *stubVerifier) Name() string { return "stub" }

func (s *stubVerifier) Verify(ctx context.Context, req llm.VerifyRequest) (*model.Opinion, error) {
	s.calls++
	return &model.Opinion{Confidence: 0.99}, nil
}

func TestAnalyze_SecondaryOpinionNeverTouchesVerified(t *testing.T) {
	v := &stubVerifier{}
	report, err := newTestAnalyzer(t, WithVerifier(v)).Analyze(context.Background(), "case", signingSources())
	if err != nil {
		t.Fatal(err)
	}
	if report.SecondaryOpinion == nil || !report.SecondaryOpinion.Enabled || report.SecondaryOpinion.Provider != "stub" {
		t.Fatalf("expected secondary opinion info, got %+v", report.SecondaryOpinion)
	}
	if v.calls != 0 {
		t.Errorf("VERIFIED contradictions need no opinion, got %d calls", v.calls)
	}
	if report.Contradictions[0].Status != model.StatusVerified {
		t.Errorf("status changed to %s", report.Contradictions[0].Status)
	}
}

func TestAnalyzeCase_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "smith-v-jones")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"1-affidavit.txt": "The agreement was signed on 15.3.2020.",
		"2-hearing.md":    "---\nspeaker: Witness A\n---\nThe agreement was signed on 20.5.2021.",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := newTestAnalyzer(t).AnalyzeCase(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if report.Subject != "smith-v-jones" {
		t.Errorf("subject = %s", report.Subject)
	}
	if len(report.Contradictions) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(report.Contradictions))
	}
	if report.Contradictions[0].Claim2.Speaker != "Witness A" {
		t.Errorf("speaker not carried: %+v", report.Contradictions[0].Claim2)
	}

	if _, err := newTestAnalyzer(t).AnalyzeCase(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing case")
	}
}

func TestNewAnalyzer_RequiresLibrary(t *testing.T) {
	if _, err := NewAnalyzer(model.DefaultConfig(), nil); !errors.Is(err, playbook.ErrNoLibrary) {
		t.Errorf("expected ErrNoLibrary, got %v", err)
	}
}

func TestNewAnalyzer_BadProviderDisablesOpinion(t *testing.T) {
	lib, _ := playbook.Embedded()
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "nonexistent"
	a, err := NewAnalyzer(cfg, lib)
	if err != nil {
		t.Fatalf("a bad provider must not be fatal: %v", err)
	}
	if a.verifier != nil {
		t.Error("verifier should be disabled")
	}
}

func TestRecategorize_AfterStatusChange(t *testing.T) {
	before := model.DetectedContradiction{
		ID:       "c1",
		Type:     model.ConflictPresence,
		Severity: model.SeverityMedium,
		Status:   model.StatusSuspicious,
		Category: model.CategoryRhetorical,
		Quote1:   "I think he was probably at the meeting.",
		Quote2:   "He was absent from the meeting.",
	}
	promoted := before.Clone()
	promoted.Status = model.StatusLikely
	unchanged := before.Clone()

	got := recategorize([]model.DetectedContradiction{before, before}, []model.DetectedContradiction{promoted, unchanged})

	if got[0].Category == model.CategoryRhetorical {
		t.Errorf("promoted contradiction kept category %s", got[0].Category)
	}
	if n := len(got[0].History); n == 0 || got[0].History[n-1].Field != "category" {
		t.Errorf("category change not recorded: %+v", got[0].History)
	}
	if got[1].Category != model.CategoryRhetorical || len(got[1].History) != 0 {
		t.Errorf("unchanged status was recategorized: %+v", got[1])
	}
}
