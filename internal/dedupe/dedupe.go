// Package dedupe collapses near-identical claims and contradictions.
// The first-seen item survives; anchors of discarded duplicates are merged into it.
package dedupe

import (
	"fmt"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

const (
	DefaultClaimThreshold         = 0.85
	DefaultContradictionThreshold = 0.80
)

// Claims merges claims whose compare-form texts reach threshold similarity.
// A threshold <= 0 selects DefaultClaimThreshold.
func Claims(claims []model.Claim, threshold float64) []model.Claim {
	if threshold <= 0 {
		threshold = DefaultClaimThreshold
	}

	kept := make([]model.Claim, 0, len(claims))
	forms := make([]string, 0, len(claims))
	for _, c := range claims {
		form := textutil.CompareForm(c.Text)
		dup := -1
		for k, f := range forms {
			if textutil.SimilarAtLeast(f, form, threshold) {
				dup = k
				break
			}
		}
		if dup < 0 {
			c.Merged = append([]model.Locator(nil), c.Merged...)
			kept = append(kept, c)
			forms = append(forms, form)
			continue
		}
		k := &kept[dup]
		k.Merged = mergeLocators(k.Merged, append([]model.Locator{c.Locator}, c.Merged...), k.Locator)
	}
	return kept
}

// Contradictions merges contradictions of the same type whose quote pairs are
// similar in either order. A threshold <= 0 selects DefaultContradictionThreshold.
func Contradictions(cs []model.DetectedContradiction, threshold float64) []model.DetectedContradiction {
	if threshold <= 0 {
		threshold = DefaultContradictionThreshold
	}

	type entry struct {
		typ  model.ConflictType
		a, b string
	}
	kept := make([]model.DetectedContradiction, 0, len(cs))
	entries := make([]entry, 0, len(cs))

	for _, c := range cs {
		e := entry{typ: c.Type, a: textutil.CompareForm(c.Quote1), b: textutil.CompareForm(c.Quote2)}
		dup := -1
		for k, prev := range entries {
			if prev.typ != e.typ {
				continue
			}
			straight := textutil.SimilarAtLeast(prev.a, e.a, threshold) && textutil.SimilarAtLeast(prev.b, e.b, threshold)
			if straight || (textutil.SimilarAtLeast(prev.a, e.b, threshold) && textutil.SimilarAtLeast(prev.b, e.a, threshold)) {
				dup = k
				break
			}
		}
		if dup < 0 {
			kept = append(kept, c.Clone())
			entries = append(entries, e)
			continue
		}

		k := &kept[dup]
		incoming := append([]model.Locator{c.Claim1.Locator, c.Claim2.Locator}, c.Locations...)
		k.Locations = mergeLocators(k.Locations, incoming, k.Claim1.Locator, k.Claim2.Locator)
		k.History = append(k.History, model.FieldChange{
			Stage:  "deduplicator",
			Field:  "locations",
			Reason: fmt.Sprintf("merged duplicate %s", c.ID),
		})
	}
	return kept
}

// mergeLocators appends resolvable locators from incoming that are not already
// present in list or among primary
func mergeLocators(list, incoming []model.Locator, primary ...model.Locator) []model.Locator {
	seen := make(map[string]bool, len(list)+len(primary))
	for _, l := range primary {
		seen[locatorKey(l)] = true
	}
	for _, l := range list {
		seen[locatorKey(l)] = true
	}
	for _, l := range incoming {
		if !l.Resolvable() {
			continue
		}
		key := locatorKey(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, l)
	}
	return list
}

func locatorKey(l model.Locator) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s", l.DocID, intKey(l.PageNo), intKey(l.BlockIndex),
		intKey(l.ParagraphIndex), intKey(l.CharStart), intKey(l.CharEnd))
}

func intKey(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
