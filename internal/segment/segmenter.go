// Package segment splits normalized document text into atomic claims with
// character anchors into that text.
package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/sanitize"
	"github.com/ppiankov/contradicta/internal/textutil"
)

// Strategy names how a document was split
type Strategy string

const (
	StrategyClause    Strategy = "clause"
	StrategyParagraph Strategy = "paragraph"
	StrategySentence  Strategy = "sentence"
)

var clauseStart = regexp.MustCompile(`(?m)^[ \t\f]*(?:\d{1,3}(?:\.\d{1,3})*[.)]|\(\d{1,3}\)|[a-z]\))[ \t]+`)

// abbreviations never end a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "adv": true,
	"no": true, "nos": true, "st": true, "inc": true, "ltd": true, "co": true,
	"corp": true, "vs": true, "v": true, "e.g": true, "i.e": true, "cf": true,
	"p": true, "pp": true, "para": true, "sec": true, "art": true, "ch": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
}

type span struct {
	start, end int
	block      int
}

// Segmenter splits normalized text into claims
type Segmenter struct {
	cfg model.SegmentConfig
}

// NewSegmenter creates a new segmenter
func NewSegmenter(cfg model.SegmentConfig) *Segmenter {
	if cfg.MinStructureSignal <= 0 {
		cfg.MinStructureSignal = 3
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 400
	}
	return &Segmenter{cfg: cfg}
}

// Result is the segmentation of one document
type Result struct {
	Strategy  Strategy
	Claims    []model.Claim
	Discarded int
}

// Segment splits doc.Text, which must already be normalized (textutil.Normalize),
// into claims whose anchors index into doc.Text. Empty text yields no claims.
func (s *Segmenter) Segment(doc model.Document) Result {
	return s.SegmentExcluding(doc, nil)
}

// SegmentExcluding segments doc.Text as if the excluded byte ranges were blank.
// No claim overlaps an excluded range, and anchors still index into doc.Text.
func (s *Segmenter) SegmentExcluding(doc model.Document, excluded []sanitize.Span) Result {
	text := doc.Text
	masked := blank(text, excluded)
	if strings.TrimSpace(masked) == "" {
		return Result{Strategy: StrategySentence, Claims: []model.Claim{}}
	}

	strategy := s.chooseStrategy(masked)

	var units []span
	switch strategy {
	case StrategyClause:
		units = clauseUnits(masked)
	case StrategyParagraph:
		units = paragraphUnits(masked)
	default:
		units = sentenceSpans(masked, 0, len(masked))
		for i := range units {
			units[i].block = i
		}
	}
	units = splitAround(units, excluded)

	paragraphStarts := paragraphOffsets(text)
	paged := strings.ContainsRune(text, '\f')

	claims := make([]model.Claim, 0, len(units))
	discarded := 0
	for _, unit := range units {
		for _, piece := range s.fit(masked, unit) {
			segment := text[piece.start:piece.end]
			if !s.keep(segment) {
				discarded++
				continue
			}

			loc := model.Locator{
				DocID:          doc.ID,
				BlockIndex:     model.IntPtr(piece.block),
				ParagraphIndex: model.IntPtr(paragraphIndex(paragraphStarts, piece.start)),
				CharStart:      model.IntPtr(piece.start),
				CharEnd:        model.IntPtr(piece.end),
				Snippet:        textutil.Truncate(segment, 80),
			}
			if paged {
				loc.PageNo = model.IntPtr(strings.Count(text[:piece.start], "\f") + 1)
			}

			claims = append(claims, model.Claim{
				ID:       fmt.Sprintf("%s-c%04d", doc.ID, len(claims)+1),
				Text:     segment,
				Speaker:  doc.Speaker,
				Source:   doc.Title,
				Strategy: string(strategy),
				Locator:  loc,
			})
		}
	}

	return Result{Strategy: strategy, Claims: claims, Discarded: discarded}
}

// chooseStrategy picks clause, paragraph or sentence splitting from structural signals
func (s *Segmenter) chooseStrategy(text string) Strategy {
	if len(clauseStart.FindAllStringIndex(text, -1)) >= s.cfg.MinStructureSignal {
		return StrategyClause
	}

	paragraphs := paragraphUnits(text)
	if len(paragraphs) >= s.cfg.MinStructureSignal {
		total := 0
		for _, p := range paragraphs {
			total += p.end - p.start
		}
		if total/len(paragraphs) < s.cfg.ParagraphAvgMax {
			return StrategyParagraph
		}
	}

	return StrategySentence
}

// keep applies the discard rules
func (s *Segmenter) keep(segment string) bool {
	if len([]rune(segment)) < s.cfg.MinChars {
		return false
	}
	if sanitize.ContainsMarker(segment) {
		return false
	}
	if isSignatureBlock(segment) {
		return false
	}
	return len(textutil.ContentTokens(segment)) >= s.cfg.MinContentTokens
}

// fit splits an over-long unit at sentence boundaries, re-joining short fragments
// so every piece stays within MaxChars. Pieces are contiguous, trimmed substrings.
func (s *Segmenter) fit(text string, unit span) []span {
	unit = trimSpan(text, unit)
	if unit.end <= unit.start {
		return nil
	}
	if unit.end-unit.start <= s.cfg.MaxChars {
		return []span{unit}
	}

	var pieces []span
	var current *span
	for _, sent := range sentenceSpans(text, unit.start, unit.end) {
		for _, part := range s.hardSplit(text, sent) {
			part.block = unit.block
			if current != nil && part.end-current.start <= s.cfg.MaxChars {
				current.end = part.end
				continue
			}
			if current != nil {
				pieces = append(pieces, *current)
			}
			p := part
			current = &p
		}
	}
	if current != nil {
		pieces = append(pieces, *current)
	}
	return pieces
}

// hardSplit cuts a single over-long sentence at word boundaries
func (s *Segmenter) hardSplit(text string, sent span) []span {
	var parts []span
	for sent.end-sent.start > s.cfg.MaxChars {
		limit := sent.start + s.cfg.MaxChars
		cut := strings.LastIndexByte(text[sent.start:limit], ' ')
		if cut <= 0 {
			cut = s.cfg.MaxChars
			for cut > 0 && !isRuneStart(text[sent.start+cut]) {
				cut--
			}
		}
		parts = append(parts, trimSpan(text, span{start: sent.start, end: sent.start + cut}))
		sent = trimSpan(text, span{start: sent.start + cut, end: sent.end})
	}
	if sent.end > sent.start {
		parts = append(parts, sent)
	}
	return parts
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// clauseUnits splits at numbered clause markers; the marker itself is not part of the claim
func clauseUnits(text string) []span {
	matches := clauseStart.FindAllStringIndex(text, -1)
	var units []span
	if len(matches) > 0 && matches[0][0] > 0 {
		units = append(units, span{start: 0, end: matches[0][0]})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		units = append(units, span{start: m[1], end: end})
	}
	for i := range units {
		units[i].block = i
	}
	return units
}

// paragraphUnits splits on blank lines
func paragraphUnits(text string) []span {
	var units []span
	start := 0
	for {
		idx := strings.Index(text[start:], "\n\n")
		end := len(text)
		if idx >= 0 {
			end = start + idx
		}
		if u := trimSpan(text, span{start: start, end: end}); u.end > u.start {
			u.block = len(units)
			units = append(units, u)
		}
		if idx < 0 {
			break
		}
		start = end + 2
	}
	return units
}

// sentenceSpans splits text[lo:hi] at sentence terminators and line breaks
func sentenceSpans(text string, lo, hi int) []span {
	var spans []span
	start := lo
	emit := func(end int) {
		if sp := trimSpan(text, span{start: start, end: end}); sp.end > sp.start {
			spans = append(spans, sp)
		}
	}

	for i := lo; i < hi; i++ {
		c := text[i]
		if c == '\n' {
			emit(i)
			start = i + 1
			continue
		}
		if c != '.' && c != '!' && c != '?' {
			continue
		}

		end := i + 1
		for end < hi && (text[end] == '"' || text[end] == '\'' || text[end] == ')') {
			end++
		}
		if end < hi && text[end] != ' ' && text[end] != '\n' {
			continue // "15.3.2020", "3.5%", "e.g."
		}
		if c == '.' && isAbbreviation(text[start:i]) {
			continue
		}
		emit(end)
		start = end
		i = end - 1
	}
	emit(hi)

	return spans
}

// isAbbreviation checks the word right before a period
func isAbbreviation(before string) bool {
	idx := strings.LastIndexAny(before, " \n(")
	word := before[idx+1:]
	if word == "" {
		return false
	}
	if len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z' {
		return true // initial
	}
	return abbreviations[strings.ToLower(word)]
}

func trimSpan(text string, sp span) span {
	for sp.start < sp.end && isSpace(text[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && isSpace(text[sp.end-1]) {
		sp.end--
	}
	return sp
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\f' || b == '\r' || b == '\v'
}

// paragraphOffsets returns the start offset of every blank-line separated paragraph
func paragraphOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			offsets = append(offsets, i+2)
			i++
		}
	}
	return offsets
}

func paragraphIndex(offsets []int, pos int) int {
	return sort.Search(len(offsets), func(i int) bool { return offsets[i] > pos }) - 1
}

// blank replaces the excluded ranges with spaces, keeping line breaks and page
// separators so offsets and page numbers do not move
func blank(text string, excluded []sanitize.Span) string {
	if len(excluded) == 0 {
		return text
	}
	b := []byte(text)
	for _, ex := range excluded {
		for i := max(ex.Start, 0); i < min(ex.End, len(b)); i++ {
			if b[i] != '\n' && b[i] != '\f' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// splitAround cuts units so that none of them crosses an excluded range
func splitAround(units []span, excluded []sanitize.Span) []span {
	if len(excluded) == 0 {
		return units
	}
	var out []span
	for _, u := range units {
		start := u.start
		for _, ex := range excluded {
			if ex.End <= start || ex.Start >= u.end {
				continue
			}
			if ex.Start > start {
				out = append(out, span{start: start, end: ex.Start, block: u.block})
			}
			start = ex.End
		}
		if start < u.end {
			out = append(out, span{start: start, end: u.end, block: u.block})
		}
	}
	return out
}

// FromRecords converts pre-segmented claim records into claims without char anchors
func FromRecords(docID string, records []model.ClaimRecord) []model.Claim {
	claims := make([]model.Claim, 0, len(records))
	for i, r := range records {
		text := strings.TrimSpace(textutil.Normalize(r.Text))
		if text == "" {
			continue
		}

		id := r.ID
		if id == "" {
			id = fmt.Sprintf("%s-c%04d", docID, i+1)
		}
		source := r.Source
		if source == "" {
			source = docID
		}

		claims = append(claims, model.Claim{
			ID:      id,
			Text:    text,
			Speaker: r.Speaker,
			Source:  r.Source,
			Locator: model.Locator{
				DocID:   source,
				PageNo:  r.Page,
				Snippet: textutil.Truncate(text, 80),
			},
		})
	}
	return claims
}
