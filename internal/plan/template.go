package plan

import (
	"cmp"
	"regexp"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

// Missing replaces placeholders with no value
const Missing = "[not available]"

var placeholder = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// Template is a question template with its placeholders enumerated up front
type Template struct {
	text string
	vars []string
}

// ParseTemplate scans text for {name} placeholders
func ParseTemplate(text string) Template {
	t := Template{text: text}
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			t.vars = append(t.vars, m[1])
		}
	}
	return t
}

// Vars returns the placeholder names in order of first appearance
func (t Template) Vars() []string {
	return append([]string(nil), t.vars...)
}

// Render substitutes vars and returns the text plus the names that had no value
func (t Template) Render(vars map[string]string) (string, []string) {
	var missing []string
	for _, name := range t.vars {
		if vars[name] == "" {
			missing = append(missing, name)
		}
	}
	out := placeholder.ReplaceAllStringFunc(t.text, func(m string) string {
		if v := vars[m[1:len(m)-1]]; v != "" {
			return v
		}
		return Missing
	})
	return out, missing
}

// Variables extracts template values from a contradiction. Quotes are cut to quoteMax runes.
func Variables(c model.DetectedContradiction, quoteMax int) map[string]string {
	vars := map[string]string{
		"quote_a":  textutil.Truncate(strings.TrimSpace(quoteOf(c.Quote1, c.Claim1)), quoteMax),
		"quote_b":  textutil.Truncate(strings.TrimSpace(quoteOf(c.Quote2, c.Claim2)), quoteMax),
		"doc_a":    docName(c.Claim1),
		"doc_b":    docName(c.Claim2),
		"type":     c.Type.Label(),
		"actor_a":  c.MetaString("person_a"),
		"actor_b":  c.MetaString("person_b"),
		"person_a": c.MetaString("person_a"),
		"person_b": c.MetaString("person_b"),
		"date_a":   c.MetaString("date_a"),
		"date_b":   c.MetaString("date_b"),
		"amount_a": c.MetaString("amount_a"),
		"amount_b": c.MetaString("amount_b"),
		"unit":     unitName(c.MetaString("unit")),
		"action":   cmp.Or(c.MetaString("action_past"), c.MetaString("action")),
		"event":    c.MetaString("event"),
		"document": c.MetaString("document"),
		"referent": c.MetaString("referent"),
		"value_a":  c.MetaString("value_a"),
		"value_b":  c.MetaString("value_b"),
	}
	for k, v := range vars {
		if v == "" {
			delete(vars, k)
		}
	}
	return vars
}

func quoteOf(quote string, claim model.Claim) string {
	if quote != "" {
		return quote
	}
	return claim.Text
}

func docName(c model.Claim) string {
	if c.Source != "" {
		return c.Source
	}
	return c.Locator.DocID
}

// unitName turns a quantity unit key ("currency:ILS", "will") into words
func unitName(unit string) string {
	if i := strings.IndexByte(unit, ':'); i >= 0 {
		kind, rest := unit[:i], unit[i+1:]
		if kind == "currency" {
			return "payment"
		}
		return rest
	}
	return unit
}
