package ingest

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/contradicta/internal/model"
)

// MarkdownImporter handles .md and .markdown files.
// Optional YAML front matter may name the document's id, title and speaker.
type MarkdownImporter struct{}

// frontMatter is the recognized subset of Markdown front matter
type frontMatter struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Speaker string `yaml:"speaker"`
}

// Name returns the format name
func (m *MarkdownImporter) Name() string { return "markdown" }

// CanHandle returns true for Markdown file extensions
func (m *MarkdownImporter) CanHandle(path string) bool {
	return hasExt(path, ".md", ".markdown")
}

// Import strips front matter; the body stays Markdown so headings remain visible to the sanitizer
func (m *MarkdownImporter) Import(ctx context.Context, path string, data []byte) (Source, error) {
	fm, body, err := splitFrontMatter(string(data))
	if err != nil {
		return Source{}, err
	}

	doc := documentWithText(body)
	doc.ID = fm.ID
	doc.Title = fm.Title
	doc.Speaker = fm.Speaker
	return Source{Document: doc}, nil
}

func splitFrontMatter(content string) (frontMatter, string, error) {
	var fm frontMatter
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return fm, content, nil
	}
	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, content, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", fmt.Errorf("front matter: %w", err)
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}

func documentWithText(text string) model.Document {
	return model.Document{Text: text}
}
