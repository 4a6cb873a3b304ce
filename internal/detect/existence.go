package detect

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

var (
	// a negation followed (within a few words) by a document noun
	denialBefore = regexp.MustCompile(`(?i)\bthere\s+(?:is|was|were|are)\s+no\b` +
		`|\bnever\s+(?:received|got|saw|seen|had|existed)\b` +
		`|\b(?:did\s+not|didn't|didn’t|do\s+not|don't|don’t)\s+(?:receive|get|see|have)\b` +
		`|\bnot\s+received\b`)
	// "no contract", "no signed receipt"
	noDocument = regexp.MustCompile(`(?i)\bno\s+(?:(?:written|signed|such|formal|valid|original|other)\s+)?(\p{L}+)`)
	// a document noun followed by a denial of its existence or receipt
	denialAfter = regexp.MustCompile(`(?i)^\s*(?:(?:does|did)\s+not|doesn't|didn't|never)\s+exist(?:s|ed)?\b` +
		`|^\s*(?:was|were)\s+(?:never|not)\s+(?:received|drafted|written|prepared|issued|delivered|found|produced)\b` +
		`|^\s*never\s+existed\b`)
)

// existenceVerbs assert a document exists when they accompany its noun
var existenceVerbs = map[string]bool{
	"signed": true, "received": true, "sent": true, "wrote": true, "written": true,
	"drafted": true, "prepared": true, "issued": true, "executed": true, "exists": true,
	"existed": true, "attached": true, "showed": true, "shown": true, "gave": true,
	"handed": true, "got": true, "have": true, "has": true, "had": true, "kept": true,
	"read": true, "delivered": true, "left": true, "produced": true, "filed": true,
}

const denialWindow = 4

// documentStances returns, per document noun, whether the text denies (false) or asserts (true) it
func documentStances(text string) map[string]bool {
	ws := words(text)
	denied := make(map[string]bool)

	for _, loc := range denialBefore.FindAllStringIndex(text, -1) {
		n := 0
		for _, w := range ws {
			if w.start < loc[1] {
				continue
			}
			if n >= denialWindow {
				break
			}
			n++
			if doc := textutil.Stem(w.lower); documentNouns[doc] {
				denied[doc] = true
				break
			}
		}
	}
	for _, m := range noDocument.FindAllStringSubmatch(text, -1) {
		if doc := textutil.Stem(textutil.Fold(m[1])); documentNouns[doc] {
			denied[doc] = true
		}
	}
	for _, w := range ws {
		doc := textutil.Stem(w.lower)
		if documentNouns[doc] && denialAfter.MatchString(text[w.start+len(w.text):]) {
			denied[doc] = true
		}
	}

	asserting := false
	for _, w := range ws {
		if existenceVerbs[w.lower] {
			asserting = true
			break
		}
	}

	stances := make(map[string]bool)
	for doc := range denied {
		stances[doc] = false
	}
	if asserting {
		for _, w := range ws {
			doc := textutil.Stem(w.lower)
			if documentNouns[doc] && !denied[doc] {
				stances[doc] = true
			}
		}
	}
	return stances
}

// detectExistence fires when one claim denies a document the other asserts
func detectExistence(a, b string) *finding {
	sa, sb := documentStances(a), documentStances(b)

	docs := make([]string, 0, len(sa))
	for doc := range sa {
		if _, ok := sb[doc]; ok {
			docs = append(docs, doc)
		}
	}
	sort.Strings(docs)

	for _, doc := range docs {
		if sa[doc] == sb[doc] {
			continue
		}
		denier := "A"
		if sa[doc] {
			denier = "B"
		}
		return &finding{
			status:      model.StatusLikely,
			explanation: fmt.Sprintf("Claim %s denies the %s exists or was received; the other claim relies on it.", denier, doc),
			metadata: map[string]any{
				"document":  doc,
				"exists_a":  sa[doc],
				"exists_b":  sb[doc],
				"denied_by": denier,
			},
		}
	}
	return nil
}
