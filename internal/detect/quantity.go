package detect

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

const numberPattern = `\d{1,3}(?:[,.']\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?`

var (
	currencyPrefix = regexp.MustCompile(`(?i)(₪|\$|€|£|\b(?:nis|ils|usd|eur|gbp)\b)\s?(` + numberPattern + `)(?:\s?(thousand|million|billion|k|m|bn)\b)?`)
	currencySuffix = regexp.MustCompile(`(?i)\b(` + numberPattern + `)\s?(?:(thousand|million|billion|k|m|bn)\s?)?(₪|\$|€|£|(?:new\s+)?shekels?\b|nis\b|ils\b|dollars?\b|usd\b|euros?\b|eur\b|pounds?\b|gbp\b|ש"ח|שקלים|שקל)`)
	percentAmount  = regexp.MustCompile(`(?i)\b(` + numberPattern + `)\s?(%|percent\b|per cent\b)`)
	countedAmount  = regexp.MustCompile(`(?i)\b(` + numberPattern + `|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+(\p{L}+)(?:\s+(\p{L}+))?`)
	vagueAmount    = regexp.MustCompile(`(?i)\b(several|many|a few|numerous|multiple|a couple of|dozens of|hundreds of|thousands of)\s+(\p{L}+)`)
)

var multipliers = map[string]float64{
	"thousand": 1e3, "k": 1e3, "million": 1e6, "m": 1e6, "billion": 1e9, "bn": 1e9,
}

// notUnits are words after a number that do not name what is counted
var notUnits = map[string]bool{
	"am": true, "pm": true, "o'clock": true, "percent": true, "per": true,
	"thousand": true, "million": true, "billion": true,
}

// quantity is one amount; ok is false for vague amounts that name a unit but no value
type quantity struct {
	raw   string
	unit  string
	value float64
	ok    bool
}

// currencyCode maps a currency symbol, code or word to ISO 4217
func currencyCode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "₪" || s == "nis" || s == "ils" || strings.Contains(s, "shekel") || s == `ש"ח` || strings.HasPrefix(s, "שקל"):
		return "ILS"
	case s == "$" || s == "usd" || strings.HasPrefix(s, "dollar"):
		return "USD"
	case s == "€" || s == "eur" || strings.HasPrefix(s, "euro"):
		return "EUR"
	case s == "£" || s == "gbp" || strings.HasPrefix(s, "pound"):
		return "GBP"
	}
	return ""
}

// parseNumber reads thousands/decimal conventions: "1,500.50", "1.500,50", "1'500", "3.5"
func parseNumber(s string) (float64, bool) {
	if v, ok := numberWords[strings.ToLower(s)]; ok {
		return v, true
	}
	s = strings.ReplaceAll(s, "'", "")

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = resolveSeparator(s, ",")
	case lastDot >= 0:
		s = resolveSeparator(s, ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// resolveSeparator treats a lone separator followed by exactly three digits,
// or a repeated separator, as a thousands separator and anything else as a decimal point
func resolveSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 || len(s)-strings.LastIndex(s, sep)-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// maskDates blanks every date-like span so its digits are not read as amounts
func maskDates(text string) string {
	for _, re := range dateFragments {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}

// countedUnit picks the counted noun after a number ("6 wills", "3 signed copies")
func countedUnit(first, second string) string {
	for _, w := range []string{first, second} {
		if w == "" {
			return ""
		}
		lower := strings.ToLower(w)
		if textutil.IsStopword(lower) || notUnits[lower] || months[lower] != 0 || currencyCode(lower) != "" {
			return ""
		}
		if strings.HasSuffix(lower, "ed") && w == first {
			continue // adjective or verb, look one word further
		}
		return textutil.Stem(lower)
	}
	return ""
}

// extractQuantities finds amounts with their units, dates and case numbers excluded
func extractQuantities(text string) []quantity {
	masked := maskDates(maskIdentifiers(maskCaseNumbers(text)))
	taken := make([]bool, len(masked))
	free := func(loc []int) bool {
		for i := loc[0]; i < loc[1]; i++ {
			if taken[i] {
				return false
			}
		}
		for i := loc[0]; i < loc[1]; i++ {
			taken[i] = true
		}
		return true
	}
	group := func(s string, loc []int, n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return s[loc[2*n]:loc[2*n+1]]
	}

	var out []quantity
	add := func(raw, unit, num, mult string) {
		v, ok := parseNumber(num)
		if !ok {
			return
		}
		if m, has := multipliers[strings.ToLower(mult)]; has {
			v *= m
		}
		out = append(out, quantity{raw: strings.TrimSpace(raw), unit: unit, value: v, ok: true})
	}

	for _, loc := range currencyPrefix.FindAllStringSubmatchIndex(masked, -1) {
		if free(loc[:2]) {
			add(masked[loc[0]:loc[1]], "currency:"+currencyCode(group(masked, loc, 1)), group(masked, loc, 2), group(masked, loc, 3))
		}
	}
	for _, loc := range currencySuffix.FindAllStringSubmatchIndex(masked, -1) {
		if free(loc[:2]) {
			add(masked[loc[0]:loc[1]], "currency:"+currencyCode(group(masked, loc, 3)), group(masked, loc, 1), group(masked, loc, 2))
		}
	}
	for _, loc := range percentAmount.FindAllStringSubmatchIndex(masked, -1) {
		if free(loc[:2]) {
			add(masked[loc[0]:loc[1]], "percent", group(masked, loc, 1), "")
		}
	}
	for _, loc := range countedAmount.FindAllStringSubmatchIndex(masked, -1) {
		unit := countedUnit(group(masked, loc, 2), group(masked, loc, 3))
		if unit == "" {
			continue
		}
		if free(loc[:2]) {
			add(masked[loc[0]:loc[1]], unit, group(masked, loc, 1), "")
		}
	}
	for _, loc := range vagueAmount.FindAllStringSubmatchIndex(masked, -1) {
		unit := countedUnit(group(masked, loc, 2), "")
		if unit != "" && free(loc[:2]) {
			out = append(out, quantity{raw: masked[loc[0]:loc[1]], unit: unit})
		}
	}

	return out
}

// detectQuantity fires when both claims give different amounts of the same unit
func detectQuantity(a, b string) *finding {
	qa, qb := extractQuantities(a), extractQuantities(b)
	if len(qa) == 0 || len(qb) == 0 {
		return nil
	}

	byUnitA, byUnitB := groupByUnit(qa), groupByUnit(qb)
	units := make([]string, 0, len(byUnitA))
	for u := range byUnitA {
		if _, ok := byUnitB[u]; ok {
			units = append(units, u)
		}
	}
	sort.Strings(units)

	for _, u := range units {
		xa, xb := byUnitA[u], byUnitB[u]
		exactA, exactB := exactValues(xa), exactValues(xb)

		if len(exactA) > 0 && len(exactB) > 0 {
			if sharesValue(exactA, exactB) {
				continue
			}
			status := model.StatusVerified
			if len(exactA) != len(xa) || len(exactB) != len(xb) {
				status = model.StatusLikely
			}
			return quantityFinding(status, u, xa, xb, exactA, exactB)
		}

		// A vague amount against an exact one
		if len(exactA)+len(exactB) > 0 {
			return quantityFinding(model.StatusLikely, u, xa, xb, exactA, exactB)
		}
	}
	return nil
}

func quantityFinding(status model.Status, unit string, xa, xb []quantity, va, vb []float64) *finding {
	explanation := fmt.Sprintf("Claim A gives %s, claim B gives %s (%s).", xa[0].raw, xb[0].raw, unitLabel(unit))
	if status != model.StatusVerified {
		explanation += " At least one amount could not be normalized."
	}
	return &finding{
		status:      status,
		explanation: explanation,
		metadata: map[string]any{
			"unit":     unit,
			"amount_a": xa[0].raw,
			"amount_b": xb[0].raw,
			"values_a": va,
			"values_b": vb,
		},
	}
}

func unitLabel(unit string) string {
	return strings.TrimPrefix(unit, "currency:")
}

func groupByUnit(qs []quantity) map[string][]quantity {
	out := make(map[string][]quantity)
	for _, q := range qs {
		if q.unit == "" || q.unit == "currency:" {
			continue
		}
		out[q.unit] = append(out[q.unit], q)
	}
	return out
}

func exactValues(qs []quantity) []float64 {
	var out []float64
	for _, q := range qs {
		if q.ok {
			out = append(out, q.value)
		}
	}
	return out
}

func sharesValue(a, b []float64) bool {
	for _, x := range a {
		for _, y := range b {
			if math.Abs(x-y) < 1e-9 {
				return true
			}
		}
	}
	return false
}
