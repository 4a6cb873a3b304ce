package model

// ConflictType classifies which factual dimension two claims disagree on
type ConflictType string

const (
	ConflictTemporal    ConflictType = "temporal_date"          // Different dates for the same event
	ConflictQuantity    ConflictType = "quant_amount"           // Different amounts or counts
	ConflictAttribution ConflictType = "actor_attribution"      // Same action, different actors
	ConflictPresence    ConflictType = "presence_participation" // Present vs absent at the same event
	ConflictExistence   ConflictType = "document_existence"     // Document exists vs does not exist
	ConflictIdentity    ConflictType = "identity_basic"         // Different identifying numbers or names
)

// AllConflictTypes returns every conflict type in detection order
func AllConflictTypes() []ConflictType {
	return []ConflictType{
		ConflictTemporal,
		ConflictQuantity,
		ConflictAttribution,
		ConflictPresence,
		ConflictExistence,
		ConflictIdentity,
	}
}

// Valid reports whether t is a known conflict type
func (t ConflictType) Valid() bool {
	switch t {
	case ConflictTemporal, ConflictQuantity, ConflictAttribution,
		ConflictPresence, ConflictExistence, ConflictIdentity:
		return true
	}
	return false
}

// Order returns the position of t in detection order (unknown types sort last)
func (t ConflictType) Order() int {
	for i, ct := range AllConflictTypes() {
		if ct == t {
			return i
		}
	}
	return len(AllConflictTypes())
}

// Label returns a short human-readable label
func (t ConflictType) Label() string {
	switch t {
	case ConflictTemporal:
		return "Date conflict"
	case ConflictQuantity:
		return "Amount conflict"
	case ConflictAttribution:
		return "Attribution conflict"
	case ConflictPresence:
		return "Presence conflict"
	case ConflictExistence:
		return "Document existence conflict"
	case ConflictIdentity:
		return "Identity conflict"
	default:
		return "Factual conflict"
	}
}

// Severity indicates how damaging a contradiction is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Escalate returns the next severity level up (critical stays critical)
func (s Severity) Escalate() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// CapAt returns s lowered to max when s is more severe than max
func (s Severity) CapAt(max Severity) Severity {
	if s.rank() > max.rank() {
		return max
	}
	return s
}

// Status is the confidence provenance of a detection, not a probability
type Status string

const (
	StatusVerified   Status = "VERIFIED"   // Both values normalized to canonical forms that differ
	StatusLikely     Status = "LIKELY"     // Pattern matched, partial normalization
	StatusSuspicious Status = "SUSPICIOUS" // Pattern matched only
)

// Promote returns the next tier up, never reaching VERIFIED.
// VERIFIED requires canonical values, which an opinion cannot supply.
func (s Status) Promote() Status {
	if s == StatusSuspicious {
		return StatusLikely
	}
	return s
}

// Demote returns the next tier down; VERIFIED is rule-proven and is not demoted
func (s Status) Demote() Status {
	if s == StatusLikely {
		return StatusSuspicious
	}
	return s
}

// Category is the semantic classification of a detected conflict
type Category string

const (
	CategoryHard       Category = "hard_contradiction"
	CategoryLogical    Category = "logical_inconsistency"
	CategoryAmbiguity  Category = "narrative_ambiguity"
	CategoryRhetorical Category = "rhetorical_shift"
)

// Explainable reports whether the category admits a reconciling reading
func (c Category) Explainable() bool {
	return c == CategoryAmbiguity || c == CategoryRhetorical
}

// BadgeExplainable marks contradictions whose questions must be softened
const BadgeExplainable = "explainable"

// DetectedContradiction pairs two claims found to conflict
type DetectedContradiction struct {
	ID                   string         `json:"id"`
	Type                 ConflictType   `json:"type"`
	Severity             Severity       `json:"severity"`
	Status               Status         `json:"status"`
	Category             Category       `json:"category"`
	Badge                string         `json:"badge,omitempty"`
	Quote1               string         `json:"quote1"`
	Quote2               string         `json:"quote2"`
	Claim1               Claim          `json:"claim1"`
	Claim2               Claim          `json:"claim2"`
	Explanation          string         `json:"explanation"`
	AmbiguityExplanation string         `json:"ambiguity_explanation,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	Locations            []Locator      `json:"locations,omitempty"` // Extra anchors merged from duplicates
	History              []FieldChange  `json:"history,omitempty"`
}

// FieldChange records one provenance step applied to a contradiction
type FieldChange struct {
	Stage  string `json:"stage"`
	Field  string `json:"field"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Clone returns a deep copy safe to modify without touching c
func (c DetectedContradiction) Clone() DetectedContradiction {
	out := c
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Locations = append([]Locator(nil), c.Locations...)
	out.History = append([]FieldChange(nil), c.History...)
	out.Claim1.Merged = append([]Locator(nil), c.Claim1.Merged...)
	out.Claim2.Merged = append([]Locator(nil), c.Claim2.Merged...)
	return out
}

// Anchors returns every resolvable locator backing the contradiction
func (c DetectedContradiction) Anchors() []Locator {
	var anchors []Locator
	for _, l := range append([]Locator{c.Claim1.Locator, c.Claim2.Locator}, c.Locations...) {
		if l.Resolvable() {
			anchors = append(anchors, l)
		}
	}
	return anchors
}

// MetaString returns a metadata value as a string ("" when absent)
func (c DetectedContradiction) MetaString(key string) string {
	if v, ok := c.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Opinion is the contract returned by an optional secondary-opinion service
type Opinion struct {
	SameFact      bool    `json:"same_fact"`
	Contradiction bool    `json:"contradiction"`
	Type          string  `json:"type,omitempty"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason,omitempty"`
}
