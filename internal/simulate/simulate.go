// Package simulate rehearses a cross-examination plan against a scripted witness.
// Its output is illustrative only and never evidentiary content.
package simulate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
)

// Warning texts attached to turns
const (
	WarnDoNotAsk  = "Marked do-not-ask: asking this risks an uncontrolled answer"
	WarnNoAnchor  = "No anchor: the witness can deny the statement was ever made"
	WarnExplosion = "Explosion step: expect resistance and keep to the branches"
)

var replies = map[model.Persona]map[model.StepType]string{
	model.PersonaCooperative: {
		model.StepLockIn:                "Yes, that is what I said.",
		model.StepTimelineCommitment:    "Yes, I am sure of it.",
		model.StepExplosion:             "I see the difference. I may have been wrong in one of them.",
		model.StepDocumentConfrontation: "Yes, that is my statement.",
		model.StepClose:                 "I accept that they do not match.",
		model.StepDoNotAsk:              "(not asked)",
	},
	model.PersonaEvasive: {
		model.StepLockIn:                "I think so, more or less.",
		model.StepTimelineCommitment:    "I can't be completely certain.",
		model.StepExplosion:             "I don't remember exactly what I said then.",
		model.StepDocumentConfrontation: "I would have to read it again.",
		model.StepClose:                 "I wouldn't put it that way.",
		model.StepDoNotAsk:              "(not asked)",
	},
	model.PersonaHostile: {
		model.StepLockIn:                "You are twisting my words.",
		model.StepTimelineCommitment:    "I already answered that.",
		model.StepExplosion:             "That's not what I said, and you know it.",
		model.StepDocumentConfrontation: "I don't recognise that document.",
		model.StepClose:                 "No.",
		model.StepDoNotAsk:              "(not asked)",
	},
}

var defaultReplies = map[model.Persona]string{
	model.PersonaCooperative: "Yes.",
	model.PersonaEvasive:     "I'm not sure.",
	model.PersonaHostile:     "I won't answer that.",
}

// preferred lists, per persona, trigger fragments tried in order before the first branch
var preferred = map[model.Persona][]string{
	model.PersonaCooperative: nil,
	model.PersonaEvasive:     {"don't remember", "do not remember", "remember", "not sure"},
	model.PersonaHostile:     {"not what i said", "refuse", "won't", "didn't understand", "mistake"},
}

// Simulate produces one scripted reply per plan step
func Simulate(plan model.CrossExamPlan, persona model.Persona) (model.Simulation, error) {
	if !persona.Valid() {
		return model.Simulation{}, fmt.Errorf("unknown persona %q", persona)
	}

	sim := model.Simulation{Persona: persona, Turns: []model.Turn{}}
	for _, stage := range plan.Stages {
		for _, step := range stage.Steps {
			turn := model.Turn{
				StepID:   step.ID,
				StepType: step.StepType,
				Question: step.Question,
				Reply:    reply(persona, step.StepType),
				Warnings: warnings(step),
			}
			if b := chooseBranch(persona, step.Branches); b != nil {
				turn.TriggeredBranch = b
				turn.FollowUpQuestions = append([]string(nil), b.FollowUpQuestions...)
			}
			sim.Turns = append(sim.Turns, turn)
		}
	}
	return sim, nil
}

func reply(persona model.Persona, st model.StepType) string {
	if r, ok := replies[persona][st]; ok {
		return r
	}
	return defaultReplies[persona]
}

func chooseBranch(persona model.Persona, branches []model.Branch) *model.Branch {
	if len(branches) == 0 {
		return nil
	}
	for _, frag := range preferred[persona] {
		for i := range branches {
			if strings.Contains(strings.ToLower(branches[i].Trigger), frag) {
				b := branches[i]
				return &b
			}
		}
	}
	b := branches[0]
	return &b
}

func warnings(step model.Step) []string {
	var out []string
	if step.DoNotAskFlag {
		out = append(out, WarnDoNotAsk)
	}
	if len(step.Anchors) == 0 {
		out = append(out, WarnNoAnchor)
	}
	if step.StepType == model.StepExplosion {
		out = append(out, WarnExplosion)
	}
	return out
}
