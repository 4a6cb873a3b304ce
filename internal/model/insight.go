package model

// Stage is a cross-examination phase
type Stage string

const (
	StageEarly Stage = "early"
	StageMid   Stage = "mid"
	StageLate  Stage = "late"
)

// Stages returns the plan stages in execution order
func Stages() []Stage {
	return []Stage{StageEarly, StageMid, StageLate}
}

// ContradictionInsight holds deterministic scores and planning hints for one contradiction
type ContradictionInsight struct {
	ContradictionID      string   `json:"contradiction_id"`
	Impact               float64  `json:"impact"`
	Risk                 float64  `json:"risk"`
	Verifiability        float64  `json:"verifiability"`
	AnchorQualityA       float64  `json:"anchor_quality_a"`
	AnchorQualityB       float64  `json:"anchor_quality_b"`
	StageRecommendation  Stage    `json:"stage_recommendation"`
	Prerequisites        []string `json:"prerequisites,omitempty"`
	ExpectedEvasions     []string `json:"expected_evasions,omitempty"`
	BestCounterQuestions []string `json:"best_counter_questions,omitempty"`
	DoNotAsk             bool     `json:"do_not_ask"`
	DoNotAskReason       string   `json:"do_not_ask_reason,omitempty"`
	Signals              []Signal `json:"signals,omitempty"`
}

// Signal is a transparent scoring breakdown entry
type Signal struct {
	Name        string         `json:"name"`
	Value       float64        `json:"value"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"` // Formula and inputs
}
