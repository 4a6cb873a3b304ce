package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
)

var (
	labelledID = regexp.MustCompile(`\b(?i:(i\.d\.|identity\s+card|identity|id|passport|licen[cs]e|bank\s+account|account|phone|tel|mobile|policy|registration|plate|company))` +
		`\s*(?i:no\.?|number|#)?(?:\s+(?i:is|was))?\s*[:.]?\s*([A-Z]{0,3}\d[\d-]{2,}\d)`)
	roleName = regexp.MustCompile(`\b(?i:(my|his|her|their|our|the))\s+` +
		`(?i:(brother|sister|father|mother|son|daughter|husband|wife|uncle|aunt|cousin|lawyer|attorney|accountant|partner|neighbou?r|friend|boss|manager|employer|landlord|tenant|driver|secretary))` +
		`\s*,?\s+(\p{Lu}\p{L}+)`)
	nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// identifier is one labelled number or role name
type identifier struct {
	key   string // id label or "possessor role"
	value string // canonical value
	raw   string
	exact bool // a number, compared exactly
}

func canonicalLabel(label string) string {
	label = strings.Join(strings.Fields(strings.ToLower(label)), " ")
	switch label {
	case "i.d.", "id", "identity", "identity card":
		return "id"
	case "license", "licence":
		return "license"
	case "account", "bank account":
		return "account"
	case "phone", "tel", "mobile":
		return "phone"
	}
	return label
}

// maskIdentifiers blanks labelled identifying numbers so they are not read as amounts
func maskIdentifiers(text string) string {
	return labelledID.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

func extractIdentifiers(text string) []identifier {
	masked := maskCaseNumbers(text)
	var out []identifier
	for _, m := range labelledID.FindAllStringSubmatch(masked, -1) {
		out = append(out, identifier{
			key:   canonicalLabel(m[1]),
			value: strings.ToUpper(nonAlnum.ReplaceAllString(m[2], "")),
			raw:   strings.TrimSpace(m[0]),
			exact: true,
		})
	}
	for _, m := range roleName.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[3])
		if sentenceWords[name] {
			continue
		}
		out = append(out, identifier{
			key:   strings.ToLower(m[1]) + " " + strings.ToLower(m[2]),
			value: name,
			raw:   strings.TrimSpace(m[0]),
		})
	}
	return out
}

// detectIdentity fires on different numbers under the same label, or different
// names for the same role
func detectIdentity(a, b string) *finding {
	ia, ib := extractIdentifiers(a), extractIdentifiers(b)
	if len(ia) == 0 || len(ib) == 0 {
		return nil
	}

	valuesA, valuesB := identifierValues(ia), identifierValues(ib)
	keys := make([]string, 0, len(valuesA))
	for k := range valuesA {
		if _, ok := valuesB[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if overlaps(valuesA[k], valuesB[k]) {
			continue
		}
		xa, xb := firstWithKey(ia, k), firstWithKey(ib, k)

		status := model.StatusLikely
		if xa.exact && xb.exact {
			status = model.StatusVerified
		}
		meta := map[string]any{
			"referent": k,
			"value_a":  xa.value,
			"value_b":  xb.value,
			"raw_a":    xa.raw,
			"raw_b":    xb.raw,
		}
		if !xa.exact {
			meta["person_a"] = xa.value
			meta["person_b"] = xb.value
		}
		return &finding{
			status:      status,
			explanation: fmt.Sprintf("Claim A gives %s, claim B gives %s for the same %s.", xa.raw, xb.raw, k),
			metadata:    meta,
		}
	}
	return nil
}

func identifierValues(ids []identifier) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, id := range ids {
		if out[id.key] == nil {
			out[id.key] = make(map[string]bool)
		}
		out[id.key][id.value] = true
	}
	return out
}

func firstWithKey(ids []identifier, key string) identifier {
	for _, id := range ids {
		if id.key == key {
			return id
		}
	}
	return identifier{}
}
