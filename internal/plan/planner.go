// Package plan builds staged, branching cross-examination plans from scored
// contradictions and a playbook library.
package plan

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/playbook"
)

// DefaultSequence is used when a playbook entry has none; explosion sits at index 2
var DefaultSequence = []model.StepType{
	model.StepLockIn,
	model.StepTimelineCommitment,
	model.StepExplosion,
	model.StepDocumentConfrontation,
	model.StepClose,
}

// DefaultEvasions are branch triggers attached to every explosion step
var DefaultEvasions = []string{
	"I don't remember",
	"I made a mistake",
	"I didn't understand the question",
	"That's not what I said",
}

// GenericCounter is the follow-up when an insight has no counter-questions
const GenericCounter = "Which of your two statements is true?"

var fallbackQuestions = map[model.StepType]string{
	model.StepLockIn:                "In {doc_a} you stated: \"{quote_a}\". Is that correct?",
	model.StepTimelineCommitment:    "And you are certain of that account?",
	model.StepExplosion:             "But in {doc_b} you stated: \"{quote_b}\". Both cannot be true, can they?",
	model.StepDocumentConfrontation: "Please look at {doc_b}. Those are your words?",
	model.StepClose:                 "So one of your two statements is not true.",
}

const softenedExplosion = "In {doc_b} you stated: \"{quote_b}\". Can you help us understand how that fits with what you said in {doc_a}?"

var stepTitles = map[model.StepType]string{
	model.StepLockIn:                "Lock in the first account",
	model.StepTimelineCommitment:    "Commit to the details",
	model.StepExplosion:             "Confront with the second account",
	model.StepDocumentConfrontation: "Put the document to the witness",
	model.StepClose:                 "Close",
	model.StepDoNotAsk:              "Do not ask",
}

// Planner turns contradictions and their insights into a CrossExamPlan
type Planner struct {
	lib           *playbook.Library
	quoteMaxChars int
	maxQuestions  int
}

// NewPlanner creates a planner over an immutable playbook library
func NewPlanner(lib *playbook.Library, cfg model.PlanConfig) *Planner {
	if cfg.QuoteMaxChars <= 0 {
		cfg.QuoteMaxChars = 120
	}
	if cfg.MaxQuestions <= 0 || cfg.MaxQuestions > len(DefaultSequence) {
		cfg.MaxQuestions = len(DefaultSequence)
	}
	return &Planner{lib: lib, quoteMaxChars: cfg.QuoteMaxChars, maxQuestions: cfg.MaxQuestions}
}

// group is the steps planned for one contradiction
type group struct {
	impact float64
	steps  []model.Step
}

// Plan builds a three-stage plan. Contradictions with no resolvable anchor on
// either side are left out. The plan is a pure function of its inputs.
func (p *Planner) Plan(cs []model.DetectedContradiction, insights []model.ContradictionInsight) model.CrossExamPlan {
	byID := make(map[string]model.ContradictionInsight, len(insights))
	for _, in := range insights {
		byID[in.ContradictionID] = in
	}

	buckets := make(map[model.Stage][]group)
	var ids []string
	for _, c := range cs {
		if len(c.Anchors()) == 0 {
			continue
		}
		insight, ok := byID[c.ID]
		if !ok {
			insight = model.ContradictionInsight{ContradictionID: c.ID, StageRecommendation: model.StageMid}
		}
		stage := stageFor(insight)

		var steps []model.Step
		if insight.DoNotAsk {
			steps = []model.Step{p.doNotAskStep(c, insight, stage)}
		} else {
			steps = p.questionSteps(c, insight, stage)
		}
		buckets[stage] = append(buckets[stage], group{impact: insight.Impact, steps: steps})
		ids = append(ids, c.ID)
	}

	plan := model.CrossExamPlan{ID: model.StableID("plan", ids...)}
	for _, stage := range model.Stages() {
		groups := buckets[stage]
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].impact > groups[j].impact
		})
		ps := model.PlanStage{Stage: stage, Steps: []model.Step{}}
		for _, g := range groups {
			ps.Steps = append(ps.Steps, g.steps...)
		}
		plan.Stages = append(plan.Stages, ps)
	}
	return plan
}

// stageFor applies the stage recommendation; early with open prerequisites becomes mid
func stageFor(in model.ContradictionInsight) model.Stage {
	switch in.StageRecommendation {
	case model.StageEarly:
		if len(in.Prerequisites) > 0 {
			return model.StageMid
		}
		return model.StageEarly
	case model.StageLate:
		return model.StageLate
	default:
		return model.StageMid
	}
}

func (p *Planner) doNotAskStep(c model.DetectedContradiction, in model.ContradictionInsight, stage model.Stage) model.Step {
	reason := in.DoNotAskReason
	if reason == "" {
		reason = "The answer cannot be controlled."
	}
	return model.Step{
		ID:              model.StableID("step", c.ID, string(model.StepDoNotAsk)),
		ContradictionID: c.ID,
		Stage:           stage,
		StepType:        model.StepDoNotAsk,
		Title:           fmt.Sprintf("%s: %s", c.Type.Label(), stepTitles[model.StepDoNotAsk]),
		Question:        "Do not put this contradiction to the witness. " + reason,
		Anchors:         c.Anchors(),
		Badge:           c.Badge,
		DoNotAskFlag:    true,
		DoNotAskReason:  reason,
	}
}

func (p *Planner) questionSteps(c model.DetectedContradiction, in model.ContradictionInsight, stage model.Stage) []model.Step {
	entry := p.lib.Lookup(c.Type)
	seq := entry.CrossExamination.Sequence
	if len(seq) == 0 {
		seq = DefaultSequence
	}
	if len(seq) > p.maxQuestions {
		seq = seq[:p.maxQuestions]
	}

	vars := Variables(c, p.quoteMaxChars)
	explainable := c.Badge == model.BadgeExplainable || c.Category.Explainable()
	anchors := c.Anchors()

	steps := make([]model.Step, 0, len(seq))
	for i, st := range seq {
		text := fallbackQuestions[st]
		if i < len(entry.CrossExamination.QuestionSet) {
			text = entry.CrossExamination.QuestionSet[i]
		}
		if st == model.StepExplosion && explainable {
			text = softenedExplosion
		}
		question, missing := ParseTemplate(text).Render(vars)

		step := model.Step{
			ID:              model.StableID("step", c.ID, string(st), strconv.Itoa(i)),
			ContradictionID: c.ID,
			Stage:           stage,
			StepType:        st,
			Title:           fmt.Sprintf("%s: %s", c.Type.Label(), stepTitles[st]),
			Question:        question,
			Anchors:         anchors,
			Badge:           c.Badge,
			MissingVars:     missing,
		}
		if st == model.StepExplosion {
			step.Branches = branches(entry.CrossExamination.TrapBranches, in.BestCounterQuestions)
		}
		steps = append(steps, step)
	}
	return steps
}

// branches maps each trigger (playbook traps, then default evasions, deduplicated
// by exact text) to one counter-question, cycling through counters
func branches(traps, counters []string) []model.Branch {
	seen := make(map[string]bool)
	var out []model.Branch
	for _, trigger := range append(append([]string(nil), traps...), DefaultEvasions...) {
		if trigger == "" || seen[trigger] {
			continue
		}
		seen[trigger] = true

		follow := GenericCounter
		if len(counters) > 0 {
			follow = counters[len(out)%len(counters)]
		}
		out = append(out, model.Branch{Trigger: trigger, FollowUpQuestions: []string{follow}})
	}
	return out
}
