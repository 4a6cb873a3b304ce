package textutil

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords covers English and common Hebrew function words
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "if": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "from": true, "as": true, "into": true, "about": true, "than": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"am": true, "has": true, "have": true, "had": true, "do": true, "does": true, "did": true,
	"i": true, "me": true, "my": true, "we": true, "our": true, "us": true, "you": true, "your": true,
	"he": true, "him": true, "his": true, "she": true, "her": true, "it": true, "its": true,
	"they": true, "them": true, "their": true, "this": true, "that": true, "these": true,
	"those": true, "there": true, "here": true, "which": true, "who": true, "whom": true,
	"what": true, "when": true, "where": true, "while": true, "during": true, "also": true,
	"so": true, "then": true, "such": true, "any": true, "some": true, "very": true,
	// "will" is deliberately absent: in this domain it is usually a testament
	"would": true, "should": true, "could": true, "can": true, "may": true, "might": true,
	"shall": true, "must": true, "not": true, "no": true, "yes": true, "all": true,
	"של": true, "את": true, "על": true, "עם": true, "אני": true, "הוא": true, "היא": true,
	"זה": true, "זו": true, "זאת": true, "גם": true, "כי": true, "אשר": true, "או": true,
	"אם": true, "היה": true, "הייתה": true, "היו": true, "אנחנו": true, "הם": true, "הן": true,
	"אל": true, "כל": true, "מה": true, "לי": true, "לו": true, "לה": true, "כך": true,
}

// IsStopword reports whether the (folded) token is a function word
func IsStopword(tok string) bool {
	return stopwords[tok]
}

// Tokens splits text into folded word tokens (letters and digits)
func Tokens(text string) []string {
	fields := strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 && !IsNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ContentTokens returns stemmed, non-stopword tokens
func ContentTokens(text string) []string {
	var out []string
	for _, tok := range Tokens(text) {
		if IsStopword(tok) {
			continue
		}
		out = append(out, Stem(tok))
	}
	return out
}

// ContentSet returns the set of content tokens, optionally without numbers
func ContentSet(text string, withNumbers bool) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range ContentTokens(text) {
		if !withNumbers && IsNumeric(tok) {
			continue
		}
		set[tok] = true
	}
	return set
}

// Stem applies light English suffix stripping (plurals only).
// Verb forms are left alone; the detector carries its own verb lexicon.
func Stem(tok string) string {
	n := len(tok)
	switch {
	case n > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:n-3] + "y"
	case n > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") &&
		!strings.HasSuffix(tok, "us") && !strings.HasSuffix(tok, "is"):
		return tok[:n-1]
	}
	return tok
}

// IsNumeric reports whether the token consists of digits only
func IsNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Overlap returns the number of shared keys and the overlap coefficient |A∩B| / min(|A|,|B|)
func Overlap(a, b map[string]bool) (int, float64) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0
	}
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return shared, float64(shared) / float64(smaller)
}

// Shared returns keys present in both sets, sorted
func Shared(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
