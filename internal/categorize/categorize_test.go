package categorize

import (
	"strings"
	"testing"

	"github.com/ppiankov/contradicta/internal/model"
)

func contradiction(t model.ConflictType, status model.Status, sev model.Severity, a, b string) model.DetectedContradiction {
	return model.DetectedContradiction{
		ID:       "c1",
		Type:     t,
		Status:   status,
		Severity: sev,
		Category: model.CategoryLogical,
		Quote1:   a,
		Quote2:   b,
		Metadata: map[string]any{"unit": "will"},
	}
}

func TestCategorize_HardSameVerbSameObject(t *testing.T) {
	c := contradiction(model.ConflictTemporal, model.StatusVerified, model.SeverityCritical,
		"the agreement was signed on 15.3.2020", "the agreement was signed on 20.5.2021")

	got := Categorize(c)
	if got.Category != model.CategoryHard {
		t.Fatalf("category = %s, want %s", got.Category, model.CategoryHard)
	}
	if got.Severity != model.SeverityCritical {
		t.Errorf("severity = %s, want unchanged critical", got.Severity)
	}
	if got.Badge != "" || got.AmbiguityExplanation != "" {
		t.Errorf("hard contradiction should carry no badge or explanation: %+v", got)
	}
}

func TestCategorize_CreationVersusPersistence(t *testing.T) {
	c := contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityCritical,
		"5 wills were drafted during his lifetime", "he left behind 6 wills")

	got := Categorize(c)
	if got.Category != model.CategoryAmbiguity {
		t.Fatalf("category = %s, want %s", got.Category, model.CategoryAmbiguity)
	}
	if got.Severity != model.SeverityMedium {
		t.Errorf("severity = %s, want medium", got.Severity)
	}
	if got.Badge != model.BadgeExplainable {
		t.Errorf("badge = %q, want %q", got.Badge, model.BadgeExplainable)
	}
	if !strings.Contains(got.AmbiguityExplanation, "drafted") || !strings.Contains(got.AmbiguityExplanation, "left behind") {
		t.Errorf("explanation = %q", got.AmbiguityExplanation)
	}
	if got.MetaString("ambiguity") != "creation_vs_persistence" {
		t.Errorf("ambiguity meta = %q", got.MetaString("ambiguity"))
	}

	fields := map[string]bool{}
	for _, h := range got.History {
		if h.Stage != "categorizer" {
			t.Errorf("unexpected stage %q", h.Stage)
		}
		fields[h.Field] = true
	}
	for _, f := range []string{"category", "severity", "badge"} {
		if !fields[f] {
			t.Errorf("history missing %s change: %+v", f, got.History)
		}
	}
}

func TestCategorize_DoesNotMutateInput(t *testing.T) {
	c := contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityHigh,
		"5 wills were drafted during his lifetime", "he left behind 6 wills")

	_ = Categorize(c)
	if c.Category != model.CategoryLogical || c.Severity != model.SeverityHigh || c.Badge != "" {
		t.Errorf("input changed: %+v", c)
	}
	if len(c.History) != 0 {
		t.Errorf("input history changed: %+v", c.History)
	}
	if _, ok := c.Metadata["ambiguity"]; ok {
		t.Error("input metadata map was shared")
	}
}

func TestCategorize_Qualifiers(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		kind string
	}{
		{"originally/finally", "Originally the price was 5000 shekels", "Finally the price was 6000 shekels", "temporal_qualifier"},
		{"before/after", "Before the sale he held 40 shares", "After the sale he held 10 shares", "temporal_qualifier"},
		{"at first/in the end", "At first we agreed on 3 payments", "In the end we agreed on 4 payments", "temporal_qualifier"},
		{"total/itemized", "The total cost was 9000 shekels", "The itemized cost was 7000 shekels", "scope"},
		{"entire/portion", "The entire debt was 20000 shekels", "Only a portion, 5000 shekels, was the debt", "scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityHigh, tt.a, tt.b))
			if got.Category != model.CategoryAmbiguity {
				t.Fatalf("category = %s, want ambiguity", got.Category)
			}
			if got.MetaString("ambiguity") != tt.kind {
				t.Errorf("kind = %q, want %q", got.MetaString("ambiguity"), tt.kind)
			}
			if got.Severity != model.SeverityMedium {
				t.Errorf("severity = %s, want medium", got.Severity)
			}
		})
	}
}

func TestCategorize_SameQualifierBothSidesIsNotAmbiguous(t *testing.T) {
	got := Categorize(contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityHigh,
		"Originally the price was 5000 shekels", "Originally the price was 6000 shekels"))
	if got.Category != model.CategoryHard {
		t.Errorf("category = %s, want hard", got.Category)
	}
}

func TestCategorize_ExplicitTotals(t *testing.T) {
	got := Categorize(contradiction(model.ConflictQuantity, model.StatusLikely, model.SeverityHigh,
		"He paid 9000 in total", "Altogether he paid 7000"))
	if got.Category != model.CategoryHard {
		t.Errorf("category = %s, want hard", got.Category)
	}
}

func TestCategorize_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		typ    model.ConflictType
		status model.Status
		a, b   string
		want   model.Category
	}{
		{"verified identity", model.ConflictIdentity, model.StatusVerified,
			"His ID number is 034512345", "His ID number is 034599999", model.CategoryHard},
		{"hedged suspicious", model.ConflictPresence, model.StatusSuspicious,
			"I think he was at the meeting", "He was not at the meeting", model.CategoryRhetorical},
		{"hedged both sides", model.ConflictPresence, model.StatusSuspicious,
			"Maybe he was there", "Perhaps he was not there", model.CategoryLogical},
		{"likely presence", model.ConflictPresence, model.StatusLikely,
			"I was present at the meeting", "I was not at the meeting", model.CategoryLogical},
		{"likely attribution same act", model.ConflictAttribution, model.StatusLikely,
			"David Cohen signed the lease", "Moshe Levi signed the lease", model.CategoryHard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(contradiction(tt.typ, tt.status, model.SeverityMedium, tt.a, tt.b))
			if got.Category != tt.want {
				t.Errorf("category = %s, want %s", got.Category, tt.want)
			}
		})
	}
}

func TestCategorize_SuspiciousNeverHard(t *testing.T) {
	got := Categorize(contradiction(model.ConflictAttribution, model.StatusSuspicious, model.SeverityMedium,
		"He signed the lease", "David Cohen signed the lease"))
	if got.Category == model.CategoryHard {
		t.Error("pattern-only match classified as hard")
	}
}

func TestCategorize_FallsBackToClaimText(t *testing.T) {
	c := contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityHigh, "", "")
	c.Claim1.Text = "5 wills were drafted during his lifetime"
	c.Claim2.Text = "he left behind 6 wills"
	if got := Categorize(c); got.Category != model.CategoryAmbiguity {
		t.Errorf("category = %s, want ambiguity", got.Category)
	}
}

func TestCategorizeAll_KeepsOrder(t *testing.T) {
	in := []model.DetectedContradiction{
		contradiction(model.ConflictQuantity, model.StatusVerified, model.SeverityHigh,
			"5 wills were drafted during his lifetime", "he left behind 6 wills"),
		contradiction(model.ConflictTemporal, model.StatusVerified, model.SeverityCritical,
			"the agreement was signed on 15.3.2020", "the agreement was signed on 20.5.2021"),
	}
	in[1].ID = "c2"
	out := CategorizeAll(in)
	if len(out) != 2 || out[0].ID != "c1" || out[1].ID != "c2" {
		t.Fatalf("order not kept: %+v", out)
	}
	if out[0].Category != model.CategoryAmbiguity || out[1].Category != model.CategoryHard {
		t.Errorf("categories = %s, %s", out[0].Category, out[1].Category)
	}
}
