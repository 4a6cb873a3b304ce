package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/contradicta/internal/model"
)

// JSONImporter handles .json files of pre-segmented claim records:
// either an array of records or an object {"id", "title", "speaker", "claims": [...]}
type JSONImporter struct{}

type recordFile struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Speaker string              `json:"speaker"`
	Claims  []model.ClaimRecord `json:"claims"`
}

// Name returns the format name
func (j *JSONImporter) Name() string { return "json" }

// CanHandle returns true for JSON file extensions
func (j *JSONImporter) CanHandle(path string) bool {
	return hasExt(path, ".json")
}

// Import parses claim records. Records without a speaker inherit the file's.
func (j *JSONImporter) Import(ctx context.Context, path string, data []byte) (Source, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Source{Records: []model.ClaimRecord{}}, nil
	}

	var file recordFile
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &file.Claims); err != nil {
			return Source{}, fmt.Errorf("invalid claim records: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &file); err != nil {
		return Source{}, fmt.Errorf("invalid claim records: %w", err)
	}

	records := make([]model.ClaimRecord, 0, len(file.Claims))
	for _, r := range file.Claims {
		if r.Speaker == "" {
			r.Speaker = file.Speaker
		}
		records = append(records, r)
	}

	return Source{
		Document: model.Document{ID: file.ID, Title: file.Title, Speaker: file.Speaker},
		Records:  records,
	}, nil
}
