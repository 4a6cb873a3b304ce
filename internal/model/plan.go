package model

// StepType is the tactical role of a plan step
type StepType string

const (
	StepLockIn                StepType = "lock_in"
	StepTimelineCommitment    StepType = "timeline_commitment"
	StepDocumentConfrontation StepType = "document_confrontation"
	StepExplosion             StepType = "explosion"
	StepClose                 StepType = "close"
	StepDoNotAsk              StepType = "do_not_ask"
)

// Valid reports whether t is a known step type
func (t StepType) Valid() bool {
	switch t {
	case StepLockIn, StepTimelineCommitment, StepDocumentConfrontation,
		StepExplosion, StepClose, StepDoNotAsk:
		return true
	}
	return false
}

// CrossExamPlan is a staged, branching question script
type CrossExamPlan struct {
	ID     string      `json:"id,omitempty"`
	Stages []PlanStage `json:"stages"`
}

// PlanStage holds the ordered steps of one stage
type PlanStage struct {
	Stage Stage  `json:"stage"`
	Steps []Step `json:"steps"`
}

// Step is a single question (or do-not-ask warning) in a plan
type Step struct {
	ID              string    `json:"id"`
	ContradictionID string    `json:"contradiction_id"`
	Stage           Stage     `json:"stage"`
	StepType        StepType  `json:"step_type"`
	Title           string    `json:"title"`
	Question        string    `json:"question"`
	Anchors         []Locator `json:"anchors"`
	Branches        []Branch  `json:"branches,omitempty"`
	Badge           string    `json:"badge,omitempty"`
	MissingVars     []string  `json:"missing_vars,omitempty"`
	DoNotAskFlag    bool      `json:"do_not_ask_flag"`
	DoNotAskReason  string    `json:"do_not_ask_reason,omitempty"`
}

// Branch maps an anticipated reply to follow-up questions
type Branch struct {
	Trigger           string   `json:"trigger"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// StepCount returns the number of steps across all stages
func (p CrossExamPlan) StepCount() int {
	n := 0
	for _, s := range p.Stages {
		n += len(s.Steps)
	}
	return n
}

// Persona is the simulated witness disposition
type Persona string

const (
	PersonaCooperative Persona = "cooperative"
	PersonaEvasive     Persona = "evasive"
	PersonaHostile     Persona = "hostile"
)

// Valid reports whether p is a known persona
func (p Persona) Valid() bool {
	switch p {
	case PersonaCooperative, PersonaEvasive, PersonaHostile:
		return true
	}
	return false
}

// Simulation is rehearsal output; it is never evidentiary content
type Simulation struct {
	Persona Persona `json:"persona"`
	Turns   []Turn  `json:"turns"`
}

// Turn is one simulated exchange
type Turn struct {
	StepID            string   `json:"step_id"`
	StepType          StepType `json:"step_type"`
	Question          string   `json:"question"`
	Reply             string   `json:"reply"`
	TriggeredBranch   *Branch  `json:"triggered_branch,omitempty"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	Warnings          []string `json:"warnings,omitempty"`
}
