// Package detect finds factual conflicts between pairs of claims with
// deterministic extractors, one per conflict type.
package detect

import (
	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/retrieve"
	"github.com/ppiankov/contradicta/internal/textutil"
)

// finding is the raw output of one extractor for one pair
type finding struct {
	status      model.Status
	explanation string
	metadata    map[string]any
}

// extractor inspects two claim texts; nil means it did not fire
type extractor func(a, b string) *finding

// Detector runs every extractor over related claim pairs
type Detector struct {
	cfg model.DetectConfig
}

// NewDetector creates a new detector
func NewDetector(cfg model.DetectConfig) *Detector {
	if cfg.MinSharedTokens <= 0 {
		cfg.MinSharedTokens = 1
	}
	return &Detector{cfg: cfg}
}

// extractorFor returns the extractor of a conflict type
func extractorFor(t model.ConflictType) extractor {
	switch t {
	case model.ConflictTemporal:
		return detectTemporal
	case model.ConflictQuantity:
		return detectQuantity
	case model.ConflictAttribution:
		return detectAttribution
	case model.ConflictPresence:
		return detectPresence
	case model.ConflictExistence:
		return detectExistence
	case model.ConflictIdentity:
		return detectIdentity
	}
	return nil
}

// defaultSeverity is the severity of a detection before status escalation
func defaultSeverity(t model.ConflictType) model.Severity {
	switch t {
	case model.ConflictTemporal, model.ConflictQuantity, model.ConflictExistence, model.ConflictIdentity:
		return model.SeverityHigh
	case model.ConflictAttribution, model.ConflictPresence:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// Detect runs the detector over the given pairs of claims. Output is ordered by
// (first claim, second claim, conflict type) following pair order.
func (d *Detector) Detect(claims []model.Claim, pairs []retrieve.Pair) []model.DetectedContradiction {
	var out []model.DetectedContradiction
	for _, p := range pairs {
		if p.I < 0 || p.J < 0 || p.I >= len(claims) || p.J >= len(claims) || p.I == p.J {
			continue
		}
		i, j := p.I, p.J
		if j < i {
			i, j = j, i
		}
		out = append(out, d.DetectPair(claims[i], claims[j])...)
	}
	return out
}

// DetectPair returns every conflict found between a and b, in conflict-type order
func (d *Detector) DetectPair(a, b model.Claim) []model.DetectedContradiction {
	shared, ok := d.related(a.Text, b.Text)
	if !ok {
		return nil
	}

	var out []model.DetectedContradiction
	for _, t := range model.AllConflictTypes() {
		f := run(extractorFor(t), a.Text, b.Text)
		if f == nil {
			continue
		}
		out = append(out, build(t, f, a, b, shared))
	}
	return out
}

// related is the lexical gate: claims must share enough non-numeric content
// before any extractor runs
func (d *Detector) related(a, b string) ([]string, bool) {
	setA := textutil.ContentSet(a, false)
	setB := textutil.ContentSet(b, false)
	shared, coef := textutil.Overlap(setA, setB)
	if shared < d.cfg.MinSharedTokens || coef < d.cfg.MinOverlap {
		return nil, false
	}
	return textutil.Shared(setA, setB), true
}

// run calls an extractor; a panicking extractor counts as not firing
func run(fn extractor, a, b string) (f *finding) {
	if fn == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			f = nil
		}
	}()
	return fn(a, b)
}

func build(t model.ConflictType, f *finding, a, b model.Claim, shared []string) model.DetectedContradiction {
	severity := defaultSeverity(t)
	if f.status == model.StatusVerified {
		severity = severity.Escalate()
	}

	meta := make(map[string]any, len(f.metadata)+1)
	for k, v := range f.metadata {
		meta[k] = v
	}
	meta["shared_terms"] = shared

	return model.DetectedContradiction{
		ID:          model.StableID("contradiction", a.ID, b.ID, string(t)),
		Type:        t,
		Severity:    severity,
		Status:      f.status,
		Category:    model.CategoryLogical,
		Quote1:      a.Text,
		Quote2:      b.Text,
		Claim1:      a,
		Claim2:      b,
		Explanation: f.explanation,
		Metadata:    meta,
		History: []model.FieldChange{{
			Stage:  "detector",
			Field:  "status",
			To:     string(f.status),
			Reason: f.explanation,
		}},
	}
}
