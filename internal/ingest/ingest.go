// Package ingest reads case files into documents or pre-segmented claim records.
//
// Each supported format (plain text, Markdown, HTML, JSON claim records) has its
// own importer. The engine picks one by file extension.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/contradicta/internal/model"
)

// DefaultMaxFileSize is 10MB
const DefaultMaxFileSize = 10 * 1024 * 1024

// ErrUnsupported means no importer handles the file
var ErrUnsupported = errors.New("unsupported input format")

// Source is one imported file. Narrative inputs fill Document.Text;
// JSON inputs fill Records and leave the text empty.
type Source struct {
	Path     string
	Format   string
	Document model.Document
	Records  []model.ClaimRecord
}

// IsRecords reports whether the source carries pre-segmented claims
func (s Source) IsRecords() bool {
	return s.Format == "json"
}

// Importer handles a specific file format
type Importer interface {
	// Name returns the format name
	Name() string

	// CanHandle returns true if this importer supports the given file path
	CanHandle(path string) bool

	// Import parses file content. Document.ID is assigned by the engine.
	Import(ctx context.Context, path string, data []byte) (Source, error)
}

// Engine dispatches files to importers
type Engine struct {
	importers   []Importer
	maxFileSize int64
}

// NewEngine creates an engine with the built-in importers
func NewEngine() *Engine {
	return &Engine{
		importers: []Importer{
			&JSONImporter{},
			&HTMLImporter{},
			&MarkdownImporter{},
			&TextImporter{},
		},
		maxFileSize: DefaultMaxFileSize,
	}
}

// Supported reports whether some importer handles path
func (e *Engine) Supported(path string) bool {
	return e.importerFor(path) != nil
}

func (e *Engine) importerFor(path string) Importer {
	for _, imp := range e.importers {
		if imp.CanHandle(path) {
			return imp
		}
	}
	return nil
}

// ImportFile reads one file
func (e *Engine) ImportFile(ctx context.Context, path string) (Source, error) {
	imp := e.importerFor(path)
	if imp == nil {
		return Source{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if info.Size() > e.maxFileSize {
		return Source{}, fmt.Errorf("%s: file too large (%d bytes, max %d)", path, info.Size(), e.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", path, err)
	}

	src, err := imp.Import(ctx, path, data)
	if err != nil {
		return Source{}, fmt.Errorf("import %s: %w", path, err)
	}
	src.Path = path
	src.Format = imp.Name()
	if src.Document.ID == "" {
		src.Document.ID = DocumentID(path)
	}
	if src.Document.Title == "" {
		src.Document.Title = filepath.Base(path)
	}
	return src, nil
}

// ImportCase reads a case: a single file, or every supported file directly inside a
// directory in name order. Hidden and unsupported files are skipped. Document IDs
// are made unique within the case.
func (e *Engine) ImportCase(ctx context.Context, path string) ([]Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		src, err := e.ImportFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return []Source{src}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read case directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if e.Supported(name) {
			files = append(files, filepath.Join(path, name))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no supported files", path)
	}

	sources := make([]Source, 0, len(files))
	seen := make(map[string]int)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := e.ImportFile(ctx, f)
		if err != nil {
			return nil, err
		}
		id := src.Document.ID
		seen[id]++
		if n := seen[id]; n > 1 {
			src.Document.ID = fmt.Sprintf("%s-%d", id, n)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// DocumentID derives a document identifier from a file name:
// lower-case letters and digits, other runs collapsed to "-"
func DocumentID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		return "doc"
	}
	return id
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
