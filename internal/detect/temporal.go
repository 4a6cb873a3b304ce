package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/contradicta/internal/model"
)

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var (
	isoDate       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericDate   = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{4}|\d{2})\b`)
	hyphenDate    = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	dayMonthYear  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\.?,?\s+(\d{4})\b`)
	monthDayYear  = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	monthYear     = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?,?\s+(\d{4})\b`)
	dayMonthNoYr  = regexp.MustCompile(`(?i)\b(?:on|the)\s+(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\b`)
	monthDayNoYr  = regexp.MustCompile(`(?i)\b(?:on|in)\s+(` + monthNames + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	prepYear      = regexp.MustCompile(`(?i)\b(?:in|since|until|during|from|by|of)\s+((?:19|20)\d{2})\b`)
	dateFragments = []*regexp.Regexp{isoDate, numericDate, hyphenDate, dayMonthYear, monthDayYear, monthYear, dayMonthNoYr, monthDayNoYr, prepYear}
)

// date is a canonical calendar date; zero month or day means unknown precision
type date struct {
	Y, M, D int
}

func (d date) String() string {
	switch {
	case d.M == 0:
		return fmt.Sprintf("%04d", d.Y)
	case d.D == 0:
		return fmt.Sprintf("%04d-%02d", d.Y, d.M)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Y, d.M, d.D)
}

// compatible reports whether two dates can refer to the same day at their shared precision
func (d date) compatible(o date) bool {
	if d.Y != o.Y {
		return false
	}
	if d.M == 0 || o.M == 0 {
		return true
	}
	if d.M != o.M {
		return false
	}
	return d.D == 0 || o.D == 0 || d.D == o.D
}

// dateMatch is one date-like substring; ok is false when it could not be normalized.
// An unnormalized match may still carry a partial value (month and day without a year).
type dateMatch struct {
	raw string
	pos int
	val date
	ok  bool
}

// agrees reports whether two matches may name the same date
func (m dateMatch) agrees(o dateMatch) bool {
	switch {
	case m.ok && o.ok:
		return m.val.compatible(o.val)
	case !m.ok && !o.ok:
		return strings.EqualFold(m.raw, o.raw) || (m.val.M != 0 && m.val.M == o.val.M && m.val.D == o.val.D)
	case !o.ok:
		return o.val.M != 0 && o.val.M == m.val.M && (m.val.D == 0 || m.val.D == o.val.D)
	default:
		return o.agrees(m)
	}
}

// extractDates finds date-like substrings, case numbers excluded
func extractDates(text string) []dateMatch {
	masked := maskCaseNumbers(text)
	taken := make([]bool, len(masked))
	var matches []dateMatch

	claim := func(loc []int) bool {
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

	for _, re := range dateFragments {
		for _, loc := range re.FindAllStringSubmatchIndex(masked, -1) {
			if !claim(loc[:2]) {
				continue
			}
			group := func(n int) string {
				return masked[loc[2*n]:loc[2*n+1]]
			}
			raw := masked[loc[0]:loc[1]]
			m := dateMatch{raw: strings.TrimSpace(raw), pos: loc[0]}

			switch re {
			case isoDate:
				m.val, m.ok = validDate(atoi(group(1)), atoi(group(2)), atoi(group(3)))
			case numericDate, hyphenDate:
				m.val, m.ok = dayFirst(atoi(group(1)), atoi(group(2)), expandYear(group(3)))
			case dayMonthYear:
				m.val, m.ok = validDate(atoi(group(3)), months[strings.ToLower(group(2))], atoi(group(1)))
			case monthDayYear:
				m.val, m.ok = validDate(atoi(group(3)), months[strings.ToLower(group(1))], atoi(group(2)))
			case monthYear:
				m.val, m.ok = date{Y: atoi(group(2)), M: months[strings.ToLower(group(1))]}, true
			case prepYear:
				m.raw = group(1)
				m.val, m.ok = date{Y: atoi(group(1))}, true
			case dayMonthNoYr:
				// day and month without a year cannot be placed on a calendar
				m.val = date{M: months[strings.ToLower(group(2))], D: atoi(group(1))}
			case monthDayNoYr:
				m.val = date{M: months[strings.ToLower(group(1))], D: atoi(group(2))}
			}
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].pos < matches[j].pos
	})
	return matches
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// expandYear maps two-digit years: 00-49 to 20xx, 50-99 to 19xx
func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

// dayFirst reads a.b.y as day.month unless only month.day is valid
func dayFirst(a, b, y int) (date, bool) {
	if d, ok := validDate(y, b, a); ok {
		return d, true
	}
	return validDate(y, a, b)
}

func validDate(y, m, d int) (date, bool) {
	if y < 1000 || m < 1 || m > 12 || d < 1 || d > 31 {
		return date{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return date{}, false
	}
	return date{Y: y, M: m, D: d}, true
}

// detectTemporal fires when the two claims place the event on incompatible dates
func detectTemporal(a, b string) *finding {
	da, db := extractDates(a), extractDates(b)
	if len(da) == 0 || len(db) == 0 {
		return nil
	}

	allOK := true
	for _, m := range append(append([]dateMatch(nil), da...), db...) {
		if !m.ok {
			allOK = false
		}
	}

	// Any agreement between the sides means no conflict
	for _, x := range da {
		for _, y := range db {
			if x.agrees(y) {
				return nil
			}
		}
	}

	meta := map[string]any{
		"raw_a":  raws(da),
		"raw_b":  raws(db),
		"date_a": da[0].raw,
		"date_b": db[0].raw,
	}

	if allOK {
		meta["dates_a"] = canon(da)
		meta["dates_b"] = canon(db)
		return &finding{
			status:      model.StatusVerified,
			explanation: fmt.Sprintf("Claim A dates it to %s, claim B to %s.", strings.Join(canon(da), ", "), strings.Join(canon(db), ", ")),
			metadata:    meta,
		}
	}

	return &finding{
		status:      model.StatusLikely,
		explanation: fmt.Sprintf("Claim A mentions %q, claim B mentions %q; at least one date could not be normalized.", da[0].raw, db[0].raw),
		metadata:    meta,
	}
}

func raws(ms []dateMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.raw
	}
	return out
}

func canon(ms []dateMatch) []string {
	var out []string
	for _, m := range ms {
		if m.ok {
			out = append(out, m.val.String())
		}
	}
	return out
}
