package model

import "time"

// Report represents the complete analysis of one case
type Report struct {
	Subject     string    `json:"subject"`      // Case or file set that was analyzed
	GeneratedAt time.Time `json:"generated_at"` // When the analysis ran

	Documents      []DocumentInfo          `json:"documents"`
	Claims         []Claim                 `json:"claims"`
	Contradictions []DetectedContradiction `json:"contradictions"`
	Insights       []ContradictionInsight  `json:"insights"`
	Plan           CrossExamPlan           `json:"plan"`
	Stats          Stats                   `json:"stats"`
	Principles     Principles              `json:"principles"`

	SecondaryOpinion *SecondaryOpinionInfo `json:"secondary_opinion,omitempty"` // Optional, never creates detections
}

// DocumentInfo summarizes one analyzed document
type DocumentInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Chars    int    `json:"chars"`
	Claims   int    `json:"claims"`
	Removed  int    `json:"sanitized_chars_removed"`
}

// Stats is the run breakdown
type Stats struct {
	Claims           int            `json:"claims"`
	ClaimsMerged     int            `json:"claims_merged"`
	PairsCompared    int            `json:"pairs_compared"`
	UsedRetrieval    bool           `json:"used_retrieval"`
	Detections       int            `json:"detections"`
	Merged           int            `json:"contradictions_merged"`
	ByType           map[string]int `json:"by_type,omitempty"`
	ByStatus         map[string]int `json:"by_status,omitempty"`
	ByCategory       map[string]int `json:"by_category,omitempty"`
	PlanSteps        int            `json:"plan_steps"`
	ExcludedNoAnchor int            `json:"excluded_no_anchor"`
}

// Principles documents the guarantees the analysis applies
type Principles struct {
	NonNormative  bool `json:"non_normative"` // Flags conflicts, never decides which statement is true
	Transparent   bool `json:"transparent"`   // Every score carries its formula and inputs
	Deterministic bool `json:"deterministic"` // Same input, same output
}

// DefaultPrinciples returns the standard principles
func DefaultPrinciples() Principles {
	return Principles{
		NonNormative:  true,
		Transparent:   true,
		Deterministic: true,
	}
}

// SecondaryOpinionInfo describes the optional model check for a run
// It may adjust status tiers, never detections themselves
type SecondaryOpinionInfo struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Calls     int      `json:"calls"`
	CacheHits int      `json:"cache_hits"`
	Promoted  int      `json:"promoted"`
	Demoted   int      `json:"demoted"`
	Warnings  []string `json:"warnings,omitempty"`
}
