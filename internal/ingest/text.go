package ingest

import (
	"context"
	"strings"
)

// TextImporter handles plain text files
type TextImporter struct{}

// Name returns the format name
func (t *TextImporter) Name() string { return "text" }

// CanHandle returns true for .txt files and files without an extension
func (t *TextImporter) CanHandle(path string) bool {
	return hasExt(path, ".txt", ".text", "")
}

// Import keeps the text as is; normalization happens in the pipeline
func (t *TextImporter) Import(ctx context.Context, path string, data []byte) (Source, error) {
	return Source{Document: documentWithText(strings.ToValidUTF8(string(data), "\uFFFD"))}, nil
}
