// Package sanitize strips previously generated report and meta artifacts from
// narrative text before analysis, so a report pasted back into a case file is
// never mistaken for testimony.
package sanitize

import (
	"regexp"
	"slices"
	"strings"

	"github.com/ppiankov/contradicta/internal/textutil"
)

// markerPhrases identify sections produced by analysis tooling (folded text)
var markerPhrases = []string{
	"analysis results",
	"analysis report",
	"contradiction analysis",
	"contradictions detected",
	"detected contradictions",
	"cross-examination plan",
	"cross examination plan",
	"insight scores",
	"generated report",
	"llm verification",
	"llm opinion",
	"secondary opinion",
	"do-not-ask",
	"תוצאות ניתוח",
	"סתירות שזוהו",
	"תוכנית חקירה נגדית",
}

// tableTokens are header cells of claim/contradiction dumps
var tableTokens = map[string]bool{
	"claim": true, "claims": true, "contradiction": true, "contradictions": true,
	"severity": true, "status": true, "confidence": true, "type": true,
	"category": true, "id": true, "quote": true, "score": true, "impact": true,
	"risk": true, "verifiability": true, "stage": true,
}

// metaKeys are keys of key:value metadata blocks
var metaKeys = map[string]bool{
	"id": true, "claim_id": true, "contradiction_id": true, "insight_id": true,
	"plan_id": true, "step_id": true, "status": true, "severity": true,
	"confidence": true, "category": true, "type": true, "model": true,
	"provider": true, "generated_at": true, "generated": true, "run_id": true,
	"analysis_id": true, "impact": true, "risk": true, "verifiability": true,
	"stage": true, "score": true, "tokens": true,
}

var (
	kvLine       = regexp.MustCompile(`^\s*[-*]?\s*([\p{L}_ ]{2,30}?)\s*[:=]\s*\S`)
	internalID   = regexp.MustCompile(`(?i)\b(claim|contradiction|insight|step|plan)[_-](id\b|\d+\b)`)
	provenance   = regexp.MustCompile(`(?i)\b(generated|produced|verified|checked)\s+by\s+(an?\s+)?(ai|llm|gpt[\w.-]*|claude[\w.-]*|language model|model)\b|\[llm\]|\bmodel\s*:\s*(gpt|claude|llama|mistral)`)
	ruleLine     = regexp.MustCompile(`^[=\-*_#~]{3,}$`)
	wrappedTitle = regexp.MustCompile(`^(=|\*\*|__){1,3}.+(=|\*\*|__){1,3}$`)
)

// Span is a byte range [Start, End) of the normalized text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// RemovedBlock describes a block dropped by the sanitizer
type RemovedBlock struct {
	Span
	Reason  string `json:"reason"`
	Preview string `json:"preview"`
}

// Result is the outcome of Inspect. Removed spans index into Normalized.
type Result struct {
	Normalized string         `json:"-"`
	Text       string         `json:"text"`
	Removed    []RemovedBlock `json:"removed,omitempty"`
}

// RemovedSpans returns the byte ranges of Normalized that were dropped
func (r Result) RemovedSpans() []Span {
	spans := make([]Span, len(r.Removed))
	for i, b := range r.Removed {
		spans[i] = b.Span
	}
	return spans
}

// RemovedBytes is the total length of the dropped blocks
func (r Result) RemovedBytes() int {
	n := 0
	for _, b := range r.Removed {
		n += b.End - b.Start
	}
	return n
}

// Sanitize returns text with generated report sections removed.
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	return Inspect(text).Text
}

// block is a blank-line separated run of lines of the normalized text
type block struct {
	Span
	text string
}

// Inspect sanitizes text and reports what was removed and why
func Inspect(text string) Result {
	normalized := textutil.Normalize(text)
	if normalized == "" {
		return Result{}
	}

	blocks := splitBlocks(normalized)
	kept := make([]bool, len(blocks))
	reasons := make([]string, len(blocks))
	inSection := false

	for i, b := range blocks {
		first := firstLine(b.text)

		if isHeader(first) {
			if hasMarker(first) {
				inSection = true
				reasons[i] = "report_header"
				continue
			}
			inSection = false
		}

		if reason := classifyBlock(b.text); reason != "" {
			reasons[i] = reason
			continue
		}
		if inSection {
			reasons[i] = "report_section"
			continue
		}
		kept[i] = true
	}

	// A report section with no closing header swallowed everything left; the
	// unflagged prose in it is narrative
	if !slices.Contains(kept, true) {
		for i, reason := range reasons {
			if reason == "report_section" {
				kept[i] = true
			}
		}
	}

	// Never remove the whole document
	if !slices.Contains(kept, true) {
		return Result{Normalized: normalized, Text: normalized}
	}

	res := Result{Normalized: normalized}
	var out strings.Builder
	prevEnd := -1
	for i, b := range blocks {
		if !kept[i] {
			res.Removed = append(res.Removed, RemovedBlock{Span: b.Span, Reason: reasons[i], Preview: preview(b.text)})
			continue
		}
		if prevEnd >= 0 {
			if strings.ContainsRune(normalized[prevEnd:b.Start], '\f') {
				out.WriteString("\n\f\n")
			} else {
				out.WriteString("\n\n")
			}
		}
		out.WriteString(b.text)
		prevEnd = b.End
	}
	res.Text = out.String()
	return res
}

// ContainsMarker reports whether text carries any report/meta marker
func ContainsMarker(text string) bool {
	return hasMarker(text) || internalID.MatchString(text) || provenance.MatchString(text)
}

// classifyBlock returns a removal reason, or "" for narrative content
func classifyBlock(block string) string {
	switch {
	case isReportTable(block):
		return "report_table"
	case isMetadataBlock(block):
		return "metadata_block"
	case internalID.MatchString(block):
		return "internal_identifier"
	case provenance.MatchString(block):
		return "llm_provenance"
	}
	return ""
}

// splitBlocks splits text at blank lines. Lines holding only a form feed are
// page separators and belong to no block.
func splitBlocks(text string) []block {
	var blocks []block
	start, end := -1, 0
	pos := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineStart := pos
		pos += len(line)
		if strings.TrimSpace(line) == "" {
			if start >= 0 {
				blocks = append(blocks, block{Span: Span{start, end}, text: text[start:end]})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = lineStart
		}
		end = lineStart + len(strings.TrimRight(line, "\n"))
	}
	if start >= 0 {
		blocks = append(blocks, block{Span: Span{start, end}, text: text[start:end]})
	}
	return blocks
}

func firstLine(block string) string {
	if idx := strings.IndexByte(block, '\n'); idx >= 0 {
		return block[:idx]
	}
	return block
}

func hasMarker(text string) bool {
	folded := textutil.Fold(text)
	for _, phrase := range markerPhrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}

// isHeader recognizes markdown headings, rule-wrapped titles, short colon titles and all-caps titles
func isHeader(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len([]rune(line)) > 80 {
		return false
	}
	if strings.HasPrefix(line, "#") || ruleLine.MatchString(line) || wrappedTitle.MatchString(line) {
		return true
	}
	if strings.HasSuffix(line, ":") && len(strings.Fields(line)) <= 6 {
		return true
	}
	return isAllCaps(line)
}

func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return letters >= 3 && len(strings.Fields(line)) <= 8
}

// isReportTable detects pipe tables whose header row names claim/contradiction columns
func isReportTable(block string) bool {
	lines := strings.Split(block, "\n")
	pipeLines := 0
	for _, l := range lines {
		if strings.Count(l, "|") >= 2 {
			pipeLines++
		}
	}
	if pipeLines < 2 {
		return false
	}

	hits := 0
	for _, cell := range strings.Split(lines[0], "|") {
		for _, tok := range textutil.Tokens(cell) {
			if tableTokens[tok] {
				hits++
				break
			}
		}
	}
	return hits >= 2
}

// isMetadataBlock detects key:value dumps dominated by analysis keys
func isMetadataBlock(block string) bool {
	lines := strings.Split(block, "\n")
	known := 0
	for _, l := range lines {
		m := kvLine.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		key := strings.ReplaceAll(strings.TrimSpace(textutil.Fold(m[1])), " ", "_")
		if metaKeys[key] {
			known++
		}
	}
	return known >= 2 && float64(known) >= 0.6*float64(len(lines))
}

func preview(block string) string {
	return textutil.Truncate(strings.ReplaceAll(block, "\n", " "), 60)
}
