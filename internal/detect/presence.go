package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

var (
	absencePattern = regexp.MustCompile(`(?i)\b(?:was|were|am|is)\s+(?:not|never)\s+(?:present|there|at|in\s+attendance)\b` +
		`|\b(?:wasn't|weren't|wasn’t|weren’t)\s+(?:present|there|at)\b` +
		`|\b(?:did\s+not|didn't|didn’t|never)\s+(?:attend|participate|take\s+part|show\s+up|come)\b` +
		`|\bnever\s+(?:attended|participated|took\s+part|showed\s+up|came)\b` +
		`|\b(?:was|were)\s+absent\b|\babsent\s+from\b`)
	presencePattern = regexp.MustCompile(`(?i)\b(?:was|were|am)\s+(?:present|there|in\s+attendance)\b` +
		`|\b(?:was|were)\s+at\b` +
		`|\b(?:attended|participated|took\s+part|showed\s+up|came\s+to|joined)\b`)
)

// presenceAssertion states that a subject was (or was not) at an event
type presenceAssertion struct {
	present bool
	subject string // "" when unknown or a pronoun
	event   string // "" when no event noun is named
	phrase  string
}

func extractPresence(text string) []presenceAssertion {
	event := eventOf(text)
	var out []presenceAssertion

	masked := text
	for _, loc := range absencePattern.FindAllStringIndex(text, -1) {
		out = append(out, presenceAssertion{
			present: false,
			subject: subjectBefore(text, loc[0]),
			event:   event,
			phrase:  text[loc[0]:loc[1]],
		})
		masked = masked[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + masked[loc[1]:]
	}
	for _, loc := range presencePattern.FindAllStringIndex(masked, -1) {
		out = append(out, presenceAssertion{
			present: true,
			subject: subjectBefore(text, loc[0]),
			event:   event,
			phrase:  text[loc[0]:loc[1]],
		})
	}
	return out
}

// eventOf returns the first event noun named in the text
func eventOf(text string) string {
	for _, tok := range textutil.ContentTokens(text) {
		if eventNouns[tok] {
			return tok
		}
	}
	return ""
}

// subjectBefore names the subject right before pos; pronouns count as unknown
func subjectBefore(text string, pos int) string {
	ws := words(text[:pos])
	j := len(ws) - 1
	for j >= 0 && skipBeforeVerb[ws[j].lower] {
		j--
	}
	if j < 0 {
		return ""
	}
	actor, pronoun := actorBefore(ws, j)
	if pronoun {
		return ""
	}
	return actor
}

// detectPresence fires on presence vs absence about the same (or an unnamed) event
func detectPresence(a, b string) *finding {
	xa, xb := extractPresence(a), extractPresence(b)

	var best *finding
	for _, x := range xa {
		for _, y := range xb {
			if x.present == y.present {
				continue
			}
			if x.subject != "" && y.subject != "" && x.subject != y.subject {
				continue
			}

			var status model.Status
			switch {
			case x.event != "" && y.event != "":
				if x.event != y.event {
					continue
				}
				status = model.StatusLikely
			default:
				status = model.StatusSuspicious
			}

			if best != nil && (best.status == model.StatusLikely || status == model.StatusSuspicious) {
				continue
			}

			event := x.event
			if event == "" {
				event = y.event
			}
			label := event
			if label == "" {
				label = "an unnamed event"
			}
			best = &finding{
				status:      status,
				explanation: fmt.Sprintf("Claim A says %q and claim B says %q about %s.", x.phrase, y.phrase, label),
				metadata: map[string]any{
					"event":     event,
					"present_a": x.present,
					"present_b": y.present,
					"phrase_a":  x.phrase,
					"phrase_b":  y.phrase,
					"person_a":  x.subject,
					"person_b":  y.subject,
				},
			}
		}
	}
	return best
}
