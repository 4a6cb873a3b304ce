// Package textutil holds the text primitives shared by the analysis stages:
// normalization, tokenization, stopwords and sequence similarity.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\v\x{00A0}]+`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
)

// invisible are formatting characters that survive NFKC but carry no content
// (zero-width joiners and bidi marks are common in Hebrew word-processor exports).
var invisible = strings.NewReplacer(
	"\u200b", "", "\u200c", "", "\u200d", "", "\u200e", "", "\u200f", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\ufeff", "",
)

// Normalize returns the canonical form of document text that all anchors point into.
// NFKC, unified line endings, single spaces, no trailing blanks, at most one empty line.
// Form feeds are kept as page separators. Normalize is idempotent.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = invisible.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = horizontalSpace.ReplaceAllString(line, " ")
		lines[i] = strings.TrimRight(line, " ")
	}
	text = strings.Join(lines, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Fold lower-cases text for comparisons
func Fold(text string) string {
	// Casers are stateful; one per call keeps Fold safe for concurrent use
	return cases.Lower(language.Und).String(text)
}

// CompareForm prepares text for similarity comparison: folded, single-spaced, trimmed
func CompareForm(text string) string {
	return strings.Join(strings.Fields(Fold(norm.NFKC.String(text))), " ")
}

// Truncate shortens text to at most max runes, cutting at a word boundary and adding an ellipsis
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if idx := strings.LastIndexAny(cut, " \n"); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}
