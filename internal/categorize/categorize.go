// Package categorize classifies detected contradictions as hard contradictions,
// logical inconsistencies, narrative ambiguities or rhetorical shifts.
//
// The rules are a heuristic over a fixed English lexicon. They match specific
// verb and qualifier patterns and will misread phrasing outside that lexicon.
package categorize

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

const stage = "categorizer"

// ambiguity is a reconciling reading under which both claims can be true
type ambiguity struct {
	kind        string
	explanation string
}

// Categorize returns a copy of c with category, severity and badge decided.
// c itself is not modified; every changed field is recorded in History.
func Categorize(c model.DetectedContradiction) model.DetectedContradiction {
	out := c.Clone()
	a, b := quoteText(c.Quote1, c.Claim1), quoteText(c.Quote2, c.Claim2)

	amb := findAmbiguity(a, b)
	category, reason := decide(c, a, b, amb)

	setCategory(&out, category, reason)
	if category == model.CategoryAmbiguity && amb != nil {
		capped := out.Severity.CapAt(model.SeverityMedium)
		if capped != out.Severity {
			record(&out, "severity", string(out.Severity), string(capped), "reconcilable reading exists")
			out.Severity = capped
		}
		if out.Badge != model.BadgeExplainable {
			record(&out, "badge", out.Badge, model.BadgeExplainable, amb.kind)
			out.Badge = model.BadgeExplainable
		}
		out.AmbiguityExplanation = amb.explanation
		out.Metadata["ambiguity"] = amb.kind
	}
	return out
}

// CategorizeAll categorizes every contradiction, preserving order
func CategorizeAll(cs []model.DetectedContradiction) []model.DetectedContradiction {
	out := make([]model.DetectedContradiction, len(cs))
	for i, c := range cs {
		out[i] = Categorize(c)
	}
	return out
}

func decide(c model.DetectedContradiction, a, b string, amb *ambiguity) (model.Category, string) {
	if amb == nil && c.Status != model.StatusSuspicious {
		if verb, object, ok := sameAspect(a, b); ok {
			return model.CategoryHard, fmt.Sprintf("same action %q on the same %s", verb, object)
		}
	}
	if amb != nil {
		return model.CategoryAmbiguity, amb.kind
	}

	switch c.Type {
	case model.ConflictTemporal, model.ConflictQuantity, model.ConflictIdentity:
		if c.Status == model.StatusVerified {
			return model.CategoryHard, "normalized values differ"
		}
	case model.ConflictAttribution, model.ConflictPresence, model.ConflictExistence:
	}

	if c.Status == model.StatusSuspicious && hedged(a) != hedged(b) {
		return model.CategoryRhetorical, "one claim is hedged, the other asserted"
	}
	return model.CategoryLogical, "no reconciling reading found"
}

func setCategory(c *model.DetectedContradiction, category model.Category, reason string) {
	if c.Category != category {
		record(c, "category", string(c.Category), string(category), reason)
	}
	c.Category = category
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
}

func record(c *model.DetectedContradiction, field, from, to, reason string) {
	c.History = append(c.History, model.FieldChange{
		Stage:  stage,
		Field:  field,
		From:   from,
		To:     to,
		Reason: reason,
	})
}

func quoteText(quote string, claim model.Claim) string {
	if quote != "" {
		return quote
	}
	return claim.Text
}

// sameAspect reports a verb lemma and an object stem shared by both claims,
// or a shared verb with explicit totals on both sides
func sameAspect(a, b string) (string, string, bool) {
	va, vb := verbLemmas(a), verbLemmas(b)
	var verbs []string
	for v := range va {
		if vb[v] {
			verbs = append(verbs, v)
		}
	}
	if len(verbs) == 0 {
		return "", "", false
	}
	sort.Strings(verbs)

	objects := textutil.Shared(objectStems(a), objectStems(b))
	if len(objects) > 0 {
		return verbs[0], objects[0], true
	}
	if totalPattern.MatchString(textutil.Fold(a)) && totalPattern.MatchString(textutil.Fold(b)) {
		return verbs[0], "total", true
	}
	return "", "", false
}

// verbLemmas returns the aspect verbs of a claim
func verbLemmas(text string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range textutil.Tokens(text) {
		if lemma, ok := aspectVerbs[tok]; ok {
			out[lemma] = true
		}
	}
	return out
}

// objectStems are content stems that are neither verbs nor numbers
func objectStems(text string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range textutil.Tokens(text) {
		if textutil.IsStopword(tok) || textutil.IsNumeric(tok) {
			continue
		}
		if _, verb := aspectVerbs[tok]; verb || modifiers[tok] {
			continue
		}
		out[textutil.Stem(tok)] = true
	}
	return out
}

func findAmbiguity(a, b string) *ambiguity {
	fa, fb := textutil.Fold(a), textutil.Fold(b)

	createA, persistA := firstMatch(creationPattern, fa), firstMatch(persistencePattern, fa)
	createB, persistB := firstMatch(creationPattern, fb), firstMatch(persistencePattern, fb)
	switch {
	case createA != "" && persistB != "" && persistA == "":
		return creationAmbiguity("A", createA, "B", persistB)
	case createB != "" && persistA != "" && persistB == "":
		return creationAmbiguity("B", createB, "A", persistA)
	}

	for _, p := range qualifierPairs {
		if qa, qb := p.match(fa, fb); qa != "" {
			return &ambiguity{
				kind: "temporal_qualifier",
				explanation: fmt.Sprintf("Claim A speaks of %q and claim B of %q; they may describe different points in time, so both values can hold.",
					qa, qb),
			}
		}
	}

	for _, p := range scopePairs {
		if sa, sb := p.match(fa, fb); sa != "" {
			return &ambiguity{
				kind: "scope",
				explanation: fmt.Sprintf("Claim A refers to %q and claim B to %q; a whole and a part can carry different figures.",
					sa, sb),
			}
		}
	}
	return nil
}

func creationAmbiguity(createSide, createWord, persistSide, persistWord string) *ambiguity {
	return &ambiguity{
		kind: "creation_vs_persistence",
		explanation: fmt.Sprintf("Claim %s counts what was created (%q) while claim %s counts what remained (%q); items can be created and later revoked or lost, so both figures can be true.",
			createSide, createWord, persistSide, persistWord),
	}
}

// termPair is two sets of alternative phrases that reconcile each other when
// one appears in each claim
type termPair struct {
	left, right *regexp.Regexp
}

// match returns the matched phrase from each side, in claim order
func (p termPair) match(fa, fb string) (string, string) {
	la, ra := firstMatch(p.left, fa), firstMatch(p.right, fa)
	lb, rb := firstMatch(p.left, fb), firstMatch(p.right, fb)
	switch {
	case la != "" && rb != "" && ra == "" && lb == "":
		return la, rb
	case ra != "" && lb != "" && la == "" && rb == "":
		return ra, lb
	}
	return "", ""
}

func firstMatch(re *regexp.Regexp, text string) string {
	return re.FindString(text)
}

func hedged(text string) bool {
	return hedgePattern.MatchString(textutil.Fold(text))
}
