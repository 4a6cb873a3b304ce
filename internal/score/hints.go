package score

import (
	"fmt"

	"github.com/ppiankov/contradicta/internal/model"
)

// evasions lists the replies a witness typically reaches for, per conflict type
var evasions = map[model.ConflictType][]string{
	model.ConflictTemporal: {
		"I don't remember the exact date",
		"It was around that time",
		"I was mistaken about the date in my statement",
	},
	model.ConflictQuantity: {
		"I was only giving an estimate",
		"The number depends on how you count",
		"I didn't include everything in the first figure",
	},
	model.ConflictAttribution: {
		"We did it together",
		"I meant that it was done on his behalf",
		"I don't know who physically did it",
	},
	model.ConflictPresence: {
		"I was there only for part of it",
		"I came at the end",
		"I may be confusing it with another meeting",
	},
	model.ConflictExistence: {
		"I never saw the final version",
		"I thought it was a draft",
		"I don't know what happened to it",
	},
	model.ConflictIdentity: {
		"It was a typing error",
		"I was referring to someone else",
		"I don't remember the number by heart",
	},
}

// prerequisites lists what must be in hand before the contradiction is put to the witness
func prerequisites(c model.DetectedContradiction, qa, qb float64) []string {
	var out []string
	if qa < 0.7 {
		out = append(out, fmt.Sprintf("Locate the exact page and line of claim A (%s)", claimRef(c.Claim1)))
	}
	if qb < 0.7 {
		out = append(out, fmt.Sprintf("Locate the exact page and line of claim B (%s)", claimRef(c.Claim2)))
	}

	switch c.Type {
	case model.ConflictExistence:
		doc := c.MetaString("document")
		if doc == "" {
			doc = "document"
		}
		out = append(out, fmt.Sprintf("Obtain a copy of the %s, or proof of its delivery", doc))
	case model.ConflictIdentity:
		if c.Status != model.StatusVerified {
			out = append(out, "Confirm the identity from an official record")
		}
	case model.ConflictTemporal, model.ConflictQuantity, model.ConflictAttribution, model.ConflictPresence:
	}

	if c.Category.Explainable() && c.AmbiguityExplanation != "" {
		out = append(out, "Rule out the reconciling reading: "+c.AmbiguityExplanation)
	}
	return out
}

func expectedEvasions(c model.DetectedContradiction) []string {
	return append([]string(nil), evasions[c.Type]...)
}

// counterQuestions returns the follow-ups that close the expected evasions, in the same order
func counterQuestions(c model.DetectedContradiction) []string {
	switch c.Type {
	case model.ConflictTemporal:
		a, b := orElse(c.MetaString("date_a"), "the first date"), orElse(c.MetaString("date_b"), "the second date")
		return []string{
			fmt.Sprintf("When you gave %s, did you check any document?", a),
			fmt.Sprintf("Which is correct, %s or %s?", a, b),
			fmt.Sprintf("When did you first realise that %s was wrong?", a),
		}
	case model.ConflictQuantity:
		a, b := orElse(c.MetaString("amount_a"), "the first figure"), orElse(c.MetaString("amount_b"), "the second figure")
		return []string{
			fmt.Sprintf("You did not say %s was an estimate, did you?", a),
			fmt.Sprintf("Counting the same way both times, is it %s or %s?", a, b),
			fmt.Sprintf("What exactly is missing from %s?", a),
		}
	case model.ConflictAttribution:
		a, b := orElse(c.MetaString("person_a"), "the first person"), orElse(c.MetaString("person_b"), "the second person")
		return []string{
			fmt.Sprintf("Your statement names only %s, correct?", a),
			fmt.Sprintf("So it was not %s alone?", b),
			fmt.Sprintf("Then why did you say it was %s?", b),
		}
	case model.ConflictPresence:
		event := orElse(c.MetaString("event"), "the event")
		return []string{
			fmt.Sprintf("For which part of the %s were you present?", event),
			fmt.Sprintf("Who else saw you at the %s?", event),
			fmt.Sprintf("Which other %s could you be thinking of?", event),
		}
	case model.ConflictExistence:
		doc := orElse(c.MetaString("document"), "document")
		return []string{
			fmt.Sprintf("But you relied on the %s in your statement?", doc),
			fmt.Sprintf("Who gave you the %s?", doc),
			fmt.Sprintf("When did you last have the %s?", doc),
		}
	case model.ConflictIdentity:
		a, b := orElse(c.MetaString("value_a"), "the first value"), orElse(c.MetaString("value_b"), "the second value")
		return []string{
			fmt.Sprintf("You copied %s from a document, didn't you?", a),
			fmt.Sprintf("Is %s the same person or record as %s?", a, b),
			fmt.Sprintf("Where did %s come from?", b),
		}
	}
	return []string{"Which of your two statements is true?"}
}

func claimRef(c model.Claim) string {
	if c.ID != "" {
		return c.ID
	}
	return "unidentified claim"
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
