package model

// Claim represents an atomic assertion extracted from a source document
type Claim struct {
	ID       string    `json:"id"`                  // Stable identifier (<doc_id>-cNNNN)
	Text     string    `json:"text"`                // Literal claim text
	Speaker  string    `json:"speaker,omitempty"`   // Optional speaker label
	Source   string    `json:"source,omitempty"`    // Optional source label (e.g., "affidavit")
	Strategy string    `json:"strategy,omitempty"`  // Segmentation strategy that produced it
	Locator  Locator   `json:"locator"`             // Primary evidentiary anchor
	Merged   []Locator `json:"locations,omitempty"` // Anchors of near-duplicates folded into this claim
}

// Locator is the canonical evidentiary pointer shared by claims, contradictions and plan steps.
// Offsets are byte offsets into the normalized document text.
type Locator struct {
	DocID          string   `json:"doc_id"`
	PageNo         *int     `json:"page_no,omitempty"`
	BlockIndex     *int     `json:"block_index,omitempty"`
	ParagraphIndex *int     `json:"paragraph_index,omitempty"`
	CharStart      *int     `json:"char_start,omitempty"`
	CharEnd        *int     `json:"char_end,omitempty"`
	Snippet        string   `json:"snippet,omitempty"`
	BBox           *BBox    `json:"bbox,omitempty"`       // Image-derived text only
	Confidence     *float64 `json:"confidence,omitempty"` // Extraction confidence, when known
}

// BBox is a bounding box on a rendered page
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// HasSpan reports whether the locator carries a usable character range
func (l Locator) HasSpan() bool {
	return l.CharStart != nil && l.CharEnd != nil && *l.CharEnd > *l.CharStart
}

// HasBlock reports whether the locator carries a block or paragraph index
func (l Locator) HasBlock() bool {
	return l.BlockIndex != nil || l.ParagraphIndex != nil
}

// Resolvable reports whether the locator points at a document at all
func (l Locator) Resolvable() bool {
	return l.DocID != ""
}

// Quality grades how precisely the locator pins down its source:
// 1.0 doc + full char span, 0.7 doc + block/paragraph, 0.5 doc only, 0.2 nothing.
func (l Locator) Quality() float64 {
	switch {
	case l.DocID == "":
		return 0.2
	case l.HasSpan():
		return 1.0
	case l.HasBlock():
		return 0.7
	default:
		return 0.5
	}
}

// ClaimRecord is a pre-segmented claim supplied by an external ingestion step
type ClaimRecord struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Source  string `json:"source,omitempty"`
	Page    *int   `json:"page,omitempty"`
	Speaker string `json:"speaker,omitempty"`
}

// Document is normalized source text with an identifier
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"-"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
