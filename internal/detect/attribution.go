package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/textutil"
)

// attribution is one "actor did action" assertion
type attribution struct {
	action  string
	actor   string
	pronoun bool
}

// extractAttributions finds active ("David signed") and passive ("signed by David") actions
func extractAttributions(text string) []attribution {
	ws := words(text)
	var out []attribution
	for i, w := range ws {
		action, ok := actionForms[w.lower]
		if !ok {
			continue
		}

		if i+1 < len(ws) && ws[i+1].lower == "by" {
			if actor, pronoun := actorAt(ws, i+2); actor != "" {
				out = append(out, attribution{action: action, actor: actor, pronoun: pronoun})
			}
			continue
		}

		j := i - 1
		for j >= 0 && skipBeforeVerb[ws[j].lower] {
			j--
		}
		if j < 0 || passiveAux[ws[j].lower] || negations[ws[j].lower] {
			continue
		}
		if actor, pronoun := actorBefore(ws, j); actor != "" {
			out = append(out, attribution{action: action, actor: actor, pronoun: pronoun})
		}
	}
	return out
}

// actorAt reads an actor starting at index i (after "by")
func actorAt(ws []word, i int) (string, bool) {
	if i >= len(ws) {
		return "", false
	}
	w := ws[i]
	if determiners[w.lower] && i+1 < len(ws) && !textutil.IsStopword(ws[i+1].lower) {
		return textutil.Stem(ws[i+1].lower), false
	}
	if p, ok := pronouns[w.lower]; ok {
		return p, true
	}
	if capitalized(w.text) && !sentenceWords[w.lower] {
		name := []string{w.lower}
		for k := i + 1; k < len(ws) && k < i+3 && capitalized(ws[k].text); k++ {
			name = append(name, ws[k].lower)
		}
		return strings.Join(name, " "), false
	}
	return "", false
}

// actorBefore reads the actor ending at index j (before the verb)
func actorBefore(ws []word, j int) (string, bool) {
	w := ws[j]
	if p, ok := pronouns[w.lower]; ok {
		return p, true
	}
	if capitalized(w.text) && !sentenceWords[w.lower] {
		start := j
		for start > 0 && j-start < 2 && capitalized(ws[start-1].text) && !sentenceWords[ws[start-1].lower] {
			start--
		}
		name := make([]string, 0, j-start+1)
		for k := start; k <= j; k++ {
			name = append(name, ws[k].lower)
		}
		return strings.Join(name, " "), false
	}
	if j > 0 && determiners[ws[j-1].lower] && !textutil.IsStopword(w.lower) {
		return textutil.Stem(w.lower), false
	}
	return "", false
}

// detectAttribution fires when the same action is attributed to disjoint actors
func detectAttribution(a, b string) *finding {
	xa, xb := extractAttributions(a), extractAttributions(b)
	if len(xa) == 0 || len(xb) == 0 {
		return nil
	}

	actorsA, actorsB := actorsByAction(xa), actorsByAction(xb)
	actions := make([]string, 0, len(actorsA))
	for act := range actorsA {
		if _, ok := actorsB[act]; ok {
			actions = append(actions, act)
		}
	}
	sort.Strings(actions)

	for _, act := range actions {
		setA, setB := actorsA[act], actorsB[act]
		if overlaps(setA, setB) {
			continue
		}

		status := model.StatusLikely
		if hasPronoun(xa, act) || hasPronoun(xb, act) {
			status = model.StatusSuspicious
		}
		listA, listB := sortedKeys(setA), sortedKeys(setB)
		return &finding{
			status:      status,
			explanation: fmt.Sprintf("Claim A attributes %q to %s, claim B to %s.", act, strings.Join(listA, ", "), strings.Join(listB, ", ")),
			metadata: map[string]any{
				"action":      act,
				"action_past": actionPast[act],
				"actors_a":    listA,
				"actors_b":    listB,
				"person_a":    listA[0],
				"person_b":    listB[0],
			},
		}
	}
	return nil
}

func actorsByAction(xs []attribution) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, x := range xs {
		if out[x.action] == nil {
			out[x.action] = make(map[string]bool)
		}
		out[x.action][x.actor] = true
	}
	return out
}

func hasPronoun(xs []attribution, action string) bool {
	for _, x := range xs {
		if x.action == action && x.pronoun {
			return true
		}
	}
	return false
}

func overlaps(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
