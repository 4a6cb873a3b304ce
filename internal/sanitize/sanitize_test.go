package sanitize

import (
	"strings"
	"testing"
)

const narrative = `On 15.3.2020 I met the defendant at his office in Haifa.

He handed me the signed agreement and told me the payment would follow within a week.`

func TestSanitize_RemovesReportSection(t *testing.T) {
	input := narrative + `

# Analysis Results

Found 3 contradictions between the statements.

The date of signing differs across documents.

## Witness background

The witness has worked at the company since 2015.`

	got := Sanitize(input)

	if strings.Contains(got, "Analysis Results") || strings.Contains(got, "Found 3 contradictions") {
		t.Errorf("report section not removed:\n%s", got)
	}
	if strings.Contains(got, "date of signing differs") {
		t.Errorf("report section body not removed:\n%s", got)
	}
	if !strings.Contains(got, "handed me the signed agreement") {
		t.Errorf("narrative content lost:\n%s", got)
	}
	if !strings.Contains(got, "worked at the company since 2015") {
		t.Errorf("section after a non-marker header was removed:\n%s", got)
	}
}

func TestSanitize_RemovesTables(t *testing.T) {
	input := narrative + `

| Claim | Contradiction | Severity |
|---|---|---|
| signed 2020 | signed 2021 | high |`

	got := Sanitize(input)
	if strings.Contains(got, "| Claim |") {
		t.Errorf("report table not removed:\n%s", got)
	}
	if !strings.Contains(got, "met the defendant") {
		t.Errorf("narrative content lost:\n%s", got)
	}
}

func TestSanitize_KeepsOrdinaryTables(t *testing.T) {
	input := narrative + `

| Month | Rent |
|---|---|
| March | 4,000 |`

	got := Sanitize(input)
	if !strings.Contains(got, "| March | 4,000 |") {
		t.Errorf("ordinary table removed:\n%s", got)
	}
}

func TestSanitize_RemovesMetadataAndProvenance(t *testing.T) {
	input := narrative + `

contradiction_id: 7f3a
status: VERIFIED
severity: high

This summary was generated by an LLM and should be reviewed.

See claim_12 for details.`

	res := Inspect(input)
	if strings.Contains(res.Text, "contradiction_id") {
		t.Errorf("metadata block not removed:\n%s", res.Text)
	}
	if strings.Contains(res.Text, "generated by an LLM") {
		t.Errorf("provenance block not removed:\n%s", res.Text)
	}
	if strings.Contains(res.Text, "claim_12") {
		t.Errorf("internal identifier block not removed:\n%s", res.Text)
	}
	if len(res.Removed) != 3 {
		t.Errorf("expected 3 removed blocks, got %d: %+v", len(res.Removed), res.Removed)
	}
}

func TestSanitize_LeadingReportThenNarrative(t *testing.T) {
	input := "# Analysis results\n\n" +
		"| claim | severity | status |\n|---|---|---|\n| signed 2020 | high | VERIFIED |\n\n" +
		"The agreement between the parties was signed on 15.3.2020 at the notary office."

	got := Sanitize(input)
	if strings.Contains(got, "| claim |") || strings.Contains(got, "Analysis results") {
		t.Errorf("report header or table survived:\n%s", got)
	}
	if !strings.Contains(got, "signed on 15.3.2020") {
		t.Errorf("narrative after the report was lost:\n%s", got)
	}
}

func TestInspect_RemovedSpansIndexNormalizedText(t *testing.T) {
	input := "The tenant paid the rent for March in cash.\n\n" +
		"claim_id: c1\nstatus: VERIFIED\n\n" +
		"The agreement was signed on 15.3.2020 at the office."

	res := Inspect(input)
	if len(res.Removed) != 1 {
		t.Fatalf("expected 1 removed block, got %+v", res.Removed)
	}
	sp := res.Removed[0].Span
	if got := res.Normalized[sp.Start:sp.End]; got != "claim_id: c1\nstatus: VERIFIED" {
		t.Errorf("removed span = %q", got)
	}
	if res.RemovedBytes() != sp.End-sp.Start {
		t.Errorf("RemovedBytes() = %d", res.RemovedBytes())
	}
}

func TestSanitize_KeepsPageBreaks(t *testing.T) {
	input := "The tenant paid the rent to the landlord.\n\f\nThe agreement was signed on 15.3.2020."

	got := Sanitize(input)
	if !strings.Contains(got, "\f") {
		t.Errorf("page break dropped: %q", got)
	}
	if Sanitize(got) != got {
		t.Errorf("not idempotent with page break: %q", got)
	}
}

func TestSanitize_NeverRemovesWholeDocument(t *testing.T) {
	input := "# Analysis Results\n\nstatus: VERIFIED\nseverity: high"
	got := Sanitize(input)
	if got == "" {
		t.Fatal("expected document to be kept when everything matches")
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   \n\n  ",
		narrative,
		narrative + "\n\n# Analysis Results\n\nsomething\n\n# Next\n\nmore text here",
		"# Analysis Results\n\nstatus: VERIFIED\nseverity: high",
		"Line with trailing spaces   \r\n\r\n\r\n\r\nAnother line\t\twith tabs",
		narrative + "\n\n| Claim | Status |\n|---|---|\n| a | b |\n\nCLOSING REMARKS\n\nThe end.",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestContainsMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Cross-Examination Plan for witness", true},
		{"see contradiction_id=44", true},
		{"this was verified by GPT-4o", true},
		{"The agreement was signed on 15.3.2020", false},
		{"I drafted the plan with my accountant", false},
	}
	for _, tt := range tests {
		if got := ContainsMarker(tt.text); got != tt.want {
			t.Errorf("ContainsMarker(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
