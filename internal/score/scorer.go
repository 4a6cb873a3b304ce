package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
)

// Thresholds for stage recommendation and the do-not-ask flag
const (
	EarlyMinVerifiability = 0.75
	EarlyMinImpact        = 0.7
	EarlyMaxRisk          = 0.5
	LateMinRisk           = 0.7
	LateMaxVerifiability  = 0.45
	DoNotAskMinRisk       = 0.7
	DoNotAskMaxVerifiable = 0.4
)

var severityBase = map[model.Severity]float64{
	model.SeverityCritical: 0.9,
	model.SeverityHigh:     0.7,
	model.SeverityMedium:   0.5,
	model.SeverityLow:      0.3,
}

var typeBonus = map[model.ConflictType]float64{
	model.ConflictTemporal:    0.1,
	model.ConflictQuantity:    0.1,
	model.ConflictExistence:   0.1,
	model.ConflictIdentity:    0.05,
	model.ConflictAttribution: 0.05,
	model.ConflictPresence:    0,
}

var statusBase = map[model.Status]float64{
	model.StatusVerified:   1.0,
	model.StatusLikely:     0.75,
	model.StatusSuspicious: 0.45,
}

// Scorer derives insights from contradictions. It holds no state; the same
// contradiction always yields an identical insight.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score calculates impact, risk and verifiability and the planning hints for c
func (s *Scorer) Score(c model.DetectedContradiction) model.ContradictionInsight {
	var signals []model.Signal

	// 1. Impact
	impact, impactSignal := s.calculateImpact(c)
	signals = append(signals, impactSignal)

	// 2. Anchor quality per side
	qa, qb := c.Claim1.Locator.Quality(), c.Claim2.Locator.Quality()
	signals = append(signals, model.Signal{
		Name:        "anchor_quality",
		Value:       round4((qa + qb) / 2),
		Description: fmt.Sprintf("Anchor quality: claim A %.1f, claim B %.1f", qa, qb),
		Data: map[string]any{
			"quality_a": qa,
			"quality_b": qb,
			"formula":   "1.0 doc+span, 0.7 doc+block, 0.5 doc only, 0.2 none",
		},
	})

	// 3. Verifiability
	verifiability, verifySignal := s.calculateVerifiability(c, qa, qb)
	signals = append(signals, verifySignal)

	// 4. Risk
	risk, riskSignal := s.calculateRisk(c, verifiability, math.Min(qa, qb))
	signals = append(signals, riskSignal)

	insight := model.ContradictionInsight{
		ContradictionID:      c.ID,
		Impact:               impact,
		Risk:                 risk,
		Verifiability:        verifiability,
		AnchorQualityA:       qa,
		AnchorQualityB:       qb,
		StageRecommendation:  recommendStage(impact, risk, verifiability),
		Prerequisites:        prerequisites(c, qa, qb),
		ExpectedEvasions:     expectedEvasions(c),
		BestCounterQuestions: counterQuestions(c),
		Signals:              signals,
	}

	if risk >= DoNotAskMinRisk && verifiability < DoNotAskMaxVerifiable {
		insight.DoNotAsk = true
		insight.DoNotAskReason = doNotAskReason(c, risk, verifiability)
	}
	return insight
}

// ScoreAll returns one insight per contradiction, in order
func (s *Scorer) ScoreAll(cs []model.DetectedContradiction) []model.ContradictionInsight {
	out := make([]model.ContradictionInsight, len(cs))
	for i, c := range cs {
		out[i] = s.Score(c)
	}
	return out
}

// calculateImpact: clamp(severity base + type bonus)
func (s *Scorer) calculateImpact(c model.DetectedContradiction) (float64, model.Signal) {
	base := severityBase[c.Severity]
	bonus := typeBonus[c.Type]
	impact := round4(clamp(base + bonus))

	return impact, model.Signal{
		Name:        "impact",
		Value:       impact,
		Description: fmt.Sprintf("Impact %.2f (%s severity, %s)", impact, c.Severity, c.Type.Label()),
		Data: map[string]any{
			"severity_base": base,
			"type_bonus":    bonus,
			"formula":       "clamp(severity_base + type_bonus, 0, 1)",
		},
	}
}

// calculateVerifiability: clamp(status base * mean anchor quality)
func (s *Scorer) calculateVerifiability(c model.DetectedContradiction, qa, qb float64) (float64, model.Signal) {
	base := statusBase[c.Status]
	v := round4(clamp(base * (qa + qb) / 2))

	return v, model.Signal{
		Name:        "verifiability",
		Value:       v,
		Description: fmt.Sprintf("Verifiability %.2f (%s)", v, c.Status),
		Data: map[string]any{
			"status_base":    base,
			"anchor_quality": round4((qa + qb) / 2),
			"formula":        "clamp(status_base * avg(anchor_quality_a, anchor_quality_b), 0, 1)",
		},
	}
}

// calculateRisk starts at 0.3 and adds the penalties that make a question dangerous to ask
func (s *Scorer) calculateRisk(c model.DetectedContradiction, verifiability, minQuality float64) (float64, model.Signal) {
	risk := 0.3
	var factors []string

	if c.Category.Explainable() {
		risk += 0.35
		factors = append(factors, "explainable category +0.35")
	}
	switch c.Status {
	case model.StatusSuspicious:
		risk += 0.2
		factors = append(factors, "suspicious status +0.2")
	case model.StatusVerified:
		risk -= 0.1
		factors = append(factors, "verified status -0.1")
	case model.StatusLikely:
	}
	if verifiability < 0.45 {
		risk += 0.1
		factors = append(factors, "low verifiability +0.1")
	}
	if minQuality < 0.5 {
		risk += 0.05
		factors = append(factors, "weak anchor +0.05")
	}
	risk = round4(clamp(risk))

	description := fmt.Sprintf("Risk %.2f", risk)
	if len(factors) > 0 {
		description += " (" + strings.Join(factors, ", ") + ")"
	}
	return risk, model.Signal{
		Name:        "risk",
		Value:       risk,
		Description: description,
		Data: map[string]any{
			"base":    0.3,
			"factors": factors,
			"formula": "clamp(0.3 + penalties, 0, 1)",
		},
	}
}

func recommendStage(impact, risk, verifiability float64) model.Stage {
	switch {
	case verifiability >= EarlyMinVerifiability && impact >= EarlyMinImpact && risk <= EarlyMaxRisk:
		return model.StageEarly
	case risk >= LateMinRisk || verifiability < LateMaxVerifiability:
		return model.StageLate
	default:
		return model.StageMid
	}
}

func doNotAskReason(c model.DetectedContradiction, risk, verifiability float64) string {
	var why []string
	if c.Category.Explainable() {
		why = append(why, "the witness has a plausible explanation")
	}
	if c.Status == model.StatusSuspicious {
		why = append(why, "the conflict is pattern-matched only")
	}
	if len(c.Anchors()) < 2 {
		why = append(why, "the claims cannot be pinned to the record")
	}
	if len(why) == 0 {
		why = append(why, "the answer cannot be controlled")
	}
	return fmt.Sprintf("Risk %.2f with verifiability %.2f: %s.", risk, verifiability, strings.Join(why, "; "))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// round4 fixes scores to four decimals so reruns serialize identically
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
