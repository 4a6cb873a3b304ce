package plan

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/playbook"
)

func library(t *testing.T) *playbook.Library {
	t.Helper()
	lib, err := playbook.Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	return lib
}

func anchoredClaim(id, doc, text string) model.Claim {
	return model.Claim{
		ID:     id,
		Text:   text,
		Source: doc + ".txt",
		Locator: model.Locator{
			DocID:     doc,
			CharStart: model.IntPtr(0),
			CharEnd:   model.IntPtr(len(text)),
		},
	}
}

func signingContradiction() model.DetectedContradiction {
	a := anchoredClaim("a-c0001", "a", "the agreement was signed on 15.3.2020")
	b := anchoredClaim("b-c0001", "b", "the agreement was signed on 20.5.2021")
	return model.DetectedContradiction{
		ID:       "c-sign",
		Type:     model.ConflictTemporal,
		Severity: model.SeverityCritical,
		Status:   model.StatusVerified,
		Category: model.CategoryHard,
		Quote1:   a.Text,
		Quote2:   b.Text,
		Claim1:   a,
		Claim2:   b,
		Metadata: map[string]any{"date_a": "15.3.2020", "date_b": "20.5.2021"},
	}
}

func TestPlan_HardContradictionEarly(t *testing.T) {
	c := signingContradiction()
	in := model.ContradictionInsight{
		ContradictionID:      c.ID,
		Impact:               1,
		StageRecommendation:  model.StageEarly,
		BestCounterQuestions: []string{"first counter", "second counter"},
	}

	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, []model.ContradictionInsight{in})
	if len(plan.Stages) != 3 {
		t.Fatalf("got %d stages", len(plan.Stages))
	}
	for i, stage := range model.Stages() {
		if plan.Stages[i].Stage != stage {
			t.Errorf("stage %d = %s, want %s", i, plan.Stages[i].Stage, stage)
		}
	}

	steps := plan.Stages[0].Steps
	if len(steps) != 5 {
		t.Fatalf("early has %d steps, want 5", len(steps))
	}
	for i, want := range DefaultSequence {
		if steps[i].StepType != want {
			t.Errorf("step %d = %s, want %s", i, steps[i].StepType, want)
		}
		if len(steps[i].Anchors) != 2 {
			t.Errorf("step %d has %d anchors", i, len(steps[i].Anchors))
		}
		if len(steps[i].MissingVars) != 0 {
			t.Errorf("step %d missing %v", i, steps[i].MissingVars)
		}
		if i != 2 && len(steps[i].Branches) != 0 {
			t.Errorf("branches on non-explosion step %d", i)
		}
	}

	explosion := steps[2]
	if !strings.Contains(explosion.Question, "15.3.2020") || !strings.Contains(explosion.Question, "20.5.2021") {
		t.Errorf("explosion question = %q", explosion.Question)
	}
	if len(explosion.Branches) != 6 {
		t.Fatalf("got %d branches, want 6", len(explosion.Branches))
	}
	if explosion.Branches[0].FollowUpQuestions[0] != "first counter" || explosion.Branches[1].FollowUpQuestions[0] != "second counter" {
		t.Errorf("counters not assigned in order: %+v", explosion.Branches[:2])
	}
	if got := explosion.Branches[5].Trigger; got != "That's not what I said" {
		t.Errorf("last trigger = %q", got)
	}
}

func TestPlan_DoNotAsk(t *testing.T) {
	c := signingContradiction()
	in := model.ContradictionInsight{
		ContradictionID:     c.ID,
		StageRecommendation: model.StageLate,
		DoNotAsk:            true,
		DoNotAskReason:      "too risky",
	}
	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, []model.ContradictionInsight{in})

	late := plan.Stages[2].Steps
	if len(late) != 1 {
		t.Fatalf("late has %d steps, want 1", len(late))
	}
	if late[0].StepType != model.StepDoNotAsk || !late[0].DoNotAskFlag || late[0].DoNotAskReason != "too risky" {
		t.Errorf("step = %+v", late[0])
	}
	if plan.StepCount() != 1 {
		t.Errorf("step count = %d", plan.StepCount())
	}
}

func TestPlan_SkipsUnanchored(t *testing.T) {
	c := signingContradiction()
	c.Claim1.Locator = model.Locator{}
	c.Claim2.Locator = model.Locator{}

	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, nil)
	if plan.StepCount() != 0 {
		t.Errorf("unanchored contradiction planned: %+v", plan)
	}
	if len(plan.Stages) != 3 {
		t.Errorf("got %d stages", len(plan.Stages))
	}
}

func TestPlan_OneSideAnchoredIsPlanned(t *testing.T) {
	c := signingContradiction()
	c.Claim2.Locator = model.Locator{}

	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, nil)
	if plan.StepCount() != 5 {
		t.Fatalf("step count = %d, want 5", plan.StepCount())
	}
	if len(plan.Stages[1].Steps[0].Anchors) != 1 {
		t.Errorf("anchors = %+v", plan.Stages[1].Steps[0].Anchors)
	}
}

func TestPlan_EarlyWithPrerequisitesMovesToMid(t *testing.T) {
	c := signingContradiction()
	in := model.ContradictionInsight{
		ContradictionID:     c.ID,
		StageRecommendation: model.StageEarly,
		Prerequisites:       []string{"Obtain the contract"},
	}
	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, []model.ContradictionInsight{in})
	if len(plan.Stages[0].Steps) != 0 || len(plan.Stages[1].Steps) != 5 {
		t.Errorf("early %d, mid %d steps", len(plan.Stages[0].Steps), len(plan.Stages[1].Steps))
	}
	if plan.Stages[1].Steps[0].Stage != model.StageMid {
		t.Errorf("step stage = %s", plan.Stages[1].Steps[0].Stage)
	}
}

func TestPlan_SoftensExplainable(t *testing.T) {
	c := signingContradiction()
	c.Type = model.ConflictQuantity
	c.Category = model.CategoryAmbiguity
	c.Badge = model.BadgeExplainable

	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, nil)
	steps := plan.Stages[1].Steps
	if !strings.Contains(steps[2].Question, "help us understand") {
		t.Errorf("explosion not softened: %q", steps[2].Question)
	}
	if steps[2].Badge != model.BadgeExplainable {
		t.Errorf("badge = %q", steps[2].Badge)
	}
}

func TestPlan_MissingVariables(t *testing.T) {
	c := signingContradiction()
	c.Type = model.ConflictQuantity
	c.Metadata = map[string]any{}

	plan := NewPlanner(library(t), model.PlanConfig{}).Plan([]model.DetectedContradiction{c}, nil)
	lockIn := plan.Stages[1].Steps[0]
	if !strings.Contains(lockIn.Question, Missing) {
		t.Errorf("question = %q", lockIn.Question)
	}
	if !reflect.DeepEqual(lockIn.MissingVars, []string{"amount_a"}) {
		t.Errorf("missing = %v", lockIn.MissingVars)
	}
}

func TestPlan_OrdersByImpactWithinStage(t *testing.T) {
	low := signingContradiction()
	low.ID = "low"
	high := signingContradiction()
	high.ID = "high"
	mid := signingContradiction()
	mid.ID = "mid"

	insights := []model.ContradictionInsight{
		{ContradictionID: "low", Impact: 0.3, StageRecommendation: model.StageMid},
		{ContradictionID: "high", Impact: 0.9, StageRecommendation: model.StageMid},
		{ContradictionID: "mid", Impact: 0.3, StageRecommendation: model.StageMid},
	}
	plan := NewPlanner(library(t), model.PlanConfig{MaxQuestions: 1}).Plan(
		[]model.DetectedContradiction{low, high, mid}, insights)

	var order []string
	for _, s := range plan.Stages[1].Steps {
		order = append(order, s.ContradictionID)
	}
	if want := []string{"high", "low", "mid"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestPlan_PlaybookSequenceAndDedupedTriggers(t *testing.T) {
	lib, err := playbook.Parse([]byte(`
factual:
  name: Generic
  cross_examination:
    question_set: ["Lock {quote_a}", "Boom {quote_b}"]
    trap_branches: ["I don't remember", "Custom trap", "Custom trap"]
    sequence: [lock_in, explosion]
`), "test", nil)
	if err != nil {
		t.Fatal(err)
	}

	plan := NewPlanner(lib, model.PlanConfig{}).Plan([]model.DetectedContradiction{signingContradiction()}, nil)
	steps := plan.Stages[1].Steps
	if len(steps) != 2 || steps[1].StepType != model.StepExplosion {
		t.Fatalf("steps = %+v", steps)
	}
	var triggers []string
	for _, b := range steps[1].Branches {
		triggers = append(triggers, b.Trigger)
		if b.FollowUpQuestions[0] != GenericCounter {
			t.Errorf("follow-up = %q, want generic", b.FollowUpQuestions[0])
		}
	}
	want := []string{"I don't remember", "Custom trap", "I made a mistake", "I didn't understand the question", "That's not what I said"}
	if !reflect.DeepEqual(triggers, want) {
		t.Errorf("triggers = %v", triggers)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	cs := []model.DetectedContradiction{signingContradiction()}
	p := NewPlanner(library(t), model.PlanConfig{})
	first := p.Plan(cs, nil)
	second := p.Plan(cs, nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("plans differ between runs")
	}
	if first.ID == "" || first.Stages[1].Steps[0].ID == "" {
		t.Error("plan or step id missing")
	}
}

func TestTemplate(t *testing.T) {
	tpl := ParseTemplate("On {date_a} and {date_b}, again {date_a}")
	if !reflect.DeepEqual(tpl.Vars(), []string{"date_a", "date_b"}) {
		t.Errorf("vars = %v", tpl.Vars())
	}
	got, missing := tpl.Render(map[string]string{"date_a": "1.2.2020"})
	if got != "On 1.2.2020 and [not available], again 1.2.2020" {
		t.Errorf("render = %q", got)
	}
	if !reflect.DeepEqual(missing, []string{"date_b"}) {
		t.Errorf("missing = %v", missing)
	}
}

func TestVariables_TruncatesQuotes(t *testing.T) {
	c := signingContradiction()
	c.Quote1 = strings.Repeat("word ", 60)
	vars := Variables(c, 40)
	if n := len([]rune(vars["quote_a"])); n > 41 {
		t.Errorf("quote_a has %d runes", n)
	}
	if vars["doc_a"] != "a.txt" {
		t.Errorf("doc_a = %q", vars["doc_a"])
	}
	if _, ok := vars["amount_a"]; ok {
		t.Error("empty value kept")
	}
}

func TestVariables_AttributionNames(t *testing.T) {
	c := signingContradiction()
	c.Type = model.ConflictAttribution
	c.Metadata = map[string]any{
		"action":      "sign",
		"action_past": "signed",
		"person_a":    "david",
		"person_b":    "moshe",
	}
	vars := Variables(c, 80)

	got, missing := ParseTemplate("Was it {person_a} or {person_b}?").Render(vars)
	if got != "Was it david or moshe?" || len(missing) != 0 {
		t.Errorf("render = %q, missing %v", got, missing)
	}
	got, _ = ParseTemplate("It was {actor_a} who {action}?").Render(vars)
	if got != "It was david who signed?" {
		t.Errorf("render = %q", got)
	}

	delete(c.Metadata, "action_past")
	if v := Variables(c, 80)["action"]; v != "sign" {
		t.Errorf("action without past tense = %q", v)
	}
}
