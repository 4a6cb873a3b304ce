package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
)

// Renderer writes reports as JSON, Markdown or a console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes v as indented JSON followed by a newline
func (r *Renderer) RenderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RenderMarkdown writes the Markdown report
func (r *Renderer) RenderMarkdown(w io.Writer, report *model.Report) error {
	_, err := io.WriteString(w, r.Markdown(report))
	return err
}

// Markdown renders a report for reading. Its section headings are recognized by
// the sanitizer, so a report pasted back into a case file is not re-analyzed.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Contradiction Analysis: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Summary\n\n")
	st := report.Stats
	fmt.Fprintf(&b, "- **Documents:** %d\n", len(report.Documents))
	fmt.Fprintf(&b, "- **Claims:** %d (%d near-duplicates merged)\n", st.Claims, st.ClaimsMerged)
	mode := "exhaustive"
	if st.UsedRetrieval {
		mode = "BM25 candidates"
	}
	fmt.Fprintf(&b, "- **Pairs compared:** %d (%s)\n", st.PairsCompared, mode)
	fmt.Fprintf(&b, "- **Contradictions:** %d (%d duplicates merged)\n", st.Detections, st.Merged)
	if len(st.ByType) > 0 {
		fmt.Fprintf(&b, "- **By type:** %s\n", counts(st.ByType))
		fmt.Fprintf(&b, "- **By category:** %s\n", counts(st.ByCategory))
	}
	fmt.Fprintf(&b, "- **Plan steps:** %d\n", st.PlanSteps)
	if st.ExcludedNoAnchor > 0 {
		fmt.Fprintf(&b, "- **Excluded (no anchor):** %d\n", st.ExcludedNoAnchor)
	}
	b.WriteString("\n")

	insights := make(map[string]model.ContradictionInsight, len(report.Insights))
	for _, in := range report.Insights {
		insights[in.ContradictionID] = in
	}

	b.WriteString("## Detected Contradictions\n\n")
	if len(report.Contradictions) == 0 {
		b.WriteString("No contradictions found.\n\n")
	}
	for i, c := range report.Contradictions {
		renderContradiction(&b, i+1, c, insights[c.ID])
	}

	b.WriteString("## Cross-Examination Plan\n\n")
	for _, stage := range report.Plan.Stages {
		fmt.Fprintf(&b, "### %s\n\n", stageTitle(stage.Stage))
		if len(stage.Steps) == 0 {
			b.WriteString("No steps.\n\n")
			continue
		}
		for i, step := range stage.Steps {
			renderStep(&b, i+1, step)
		}
	}

	if so := report.SecondaryOpinion; so != nil && so.Enabled {
		b.WriteString("## Secondary Opinion\n\n")
		fmt.Fprintf(&b, "Provider %s %s: %d calls, %d cached, %d promoted, %d demoted.\n\n",
			so.Provider, so.Model, so.Calls, so.CacheHits, so.Promoted, so.Demoted)
		for _, w := range so.Warnings {
			fmt.Fprintf(&b, "- ⚠ %s\n", w)
		}
		if len(so.Warnings) > 0 {
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*Flags conflicts between statements; it does not decide which statement is true. ")
		b.WriteString("Every score carries its formula. Same input, same output.*\n")
	}

	return b.String()
}

func renderContradiction(b *strings.Builder, n int, c model.DetectedContradiction, in model.ContradictionInsight) {
	fmt.Fprintf(b, "### %d. %s [%s / %s / %s]", n, c.Type.Label(), c.Severity, c.Status, c.Category)
	if c.Badge != "" {
		fmt.Fprintf(b, " `%s`", c.Badge)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(b, "> **A** (%s): %s\n>\n", locatorLabel(c.Claim1.Locator), c.Quote1)
	fmt.Fprintf(b, "> **B** (%s): %s\n\n", locatorLabel(c.Claim2.Locator), c.Quote2)
	fmt.Fprintf(b, "%s\n\n", c.Explanation)
	if c.AmbiguityExplanation != "" {
		fmt.Fprintf(b, "**Reconciling reading:** %s\n\n", c.AmbiguityExplanation)
	}

	if in.ContradictionID == "" {
		return
	}
	fmt.Fprintf(b, "**Impact:** %.2f · **Risk:** %.2f · **Verifiability:** %.2f · **Stage:** %s\n\n",
		in.Impact, in.Risk, in.Verifiability, in.StageRecommendation)
	if in.DoNotAsk {
		fmt.Fprintf(b, "**Do not ask:** %s\n\n", in.DoNotAskReason)
	}
	if len(in.Prerequisites) > 0 {
		b.WriteString("**Before asking:**\n")
		for _, p := range in.Prerequisites {
			fmt.Fprintf(b, "- %s\n", p)
		}
		b.WriteString("\n")
	}
}

func renderStep(b *strings.Builder, n int, step model.Step) {
	if step.DoNotAskFlag {
		fmt.Fprintf(b, "%d. **%s**: %s\n", n, step.Title, step.DoNotAskReason)
		return
	}
	fmt.Fprintf(b, "%d. **%s** (%s): %s\n", n, step.Title, step.StepType, step.Question)
	if len(step.MissingVars) > 0 {
		fmt.Fprintf(b, "   - missing: %s\n", strings.Join(step.MissingVars, ", "))
	}
	for _, br := range step.Branches {
		fmt.Fprintf(b, "   - If \"%s\": %s\n", br.Trigger, strings.Join(br.FollowUpQuestions, " / "))
	}
}

// RenderSummary prints a short summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	st := report.Stats
	fmt.Fprintf(w, "\n%s\n", report.Subject)
	fmt.Fprintf(w, "  Claims:          %d\n", st.Claims)
	fmt.Fprintf(w, "  Contradictions:  %d\n", st.Detections)
	for _, t := range model.AllConflictTypes() {
		if n := st.ByType[string(t)]; n > 0 {
			fmt.Fprintf(w, "    %-28s %d\n", t.Label(), n)
		}
	}
	fmt.Fprintf(w, "  Plan steps:      %d\n", st.PlanSteps)
	if so := report.SecondaryOpinion; so != nil {
		fmt.Fprintf(w, "  Second opinion:  %d calls, %d promoted, %d demoted\n", so.Calls, so.Promoted, so.Demoted)
	}
}

// SimulationMarkdown renders a rehearsal transcript
func (r *Renderer) SimulationMarkdown(sim model.Simulation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Rehearsal (%s witness)\n\n", sim.Persona)
	b.WriteString("*Simulated replies for preparation only. Not evidence.*\n\n")
	for i, t := range sim.Turns {
		fmt.Fprintf(&b, "%d. **Q:** %s\n", i+1, t.Question)
		fmt.Fprintf(&b, "   **A:** %s\n", t.Reply)
		for _, f := range t.FollowUpQuestions {
			fmt.Fprintf(&b, "   - follow up: %s\n", f)
		}
		for _, w := range t.Warnings {
			fmt.Fprintf(&b, "   - ⚠ %s\n", w)
		}
	}
	return b.String()
}

func locatorLabel(l model.Locator) string {
	if !l.Resolvable() {
		return "unanchored"
	}
	parts := []string{l.DocID}
	if l.PageNo != nil {
		parts = append(parts, fmt.Sprintf("p. %d", *l.PageNo))
	}
	if l.ParagraphIndex != nil {
		parts = append(parts, fmt.Sprintf("¶ %d", *l.ParagraphIndex+1))
	}
	return strings.Join(parts, ", ")
}

func stageTitle(s model.Stage) string {
	switch s {
	case model.StageEarly:
		return "Early"
	case model.StageMid:
		return "Mid"
	case model.StageLate:
		return "Late"
	}
	return string(s)
}

func counts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, m[k])
	}
	return strings.Join(parts, ", ")
}
