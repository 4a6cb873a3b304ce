package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
)

// CaseAnalyzer analyzes one case: a directory of documents or a single file
type CaseAnalyzer interface {
	AnalyzeCase(ctx context.Context, path string) (*model.Report, error)
}

// CaseJob represents one case analysis
type CaseJob struct {
	Path     string
	Analyzer CaseAnalyzer
}

// Execute executes the case job
func (j *CaseJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeCase(ctx, j.Path)
	return &CaseResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// CaseResult represents the result of a case job
type CaseResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes independent cases concurrently
type BatchProcessor struct {
	analyzer    CaseAnalyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer CaseAnalyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessCases analyzes every case; results keep the order of paths
func (b *BatchProcessor) ProcessCases(ctx context.Context, paths []string) []*CaseResult {
	if len(paths) == 0 {
		return []*CaseResult{}
	}

	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = &CaseJob{Path: p, Analyzer: b.analyzer}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs)

	caseResults := make([]*CaseResult, len(results))
	for i, result := range results {
		if cr, ok := result.(*CaseResult); ok {
			caseResults[i] = cr
			continue
		}
		caseResults[i] = &CaseResult{Path: paths[i], Error: result.GetError()}
	}

	return caseResults
}

// ProcessFile reads case paths from a list file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaseResult, error) {
	paths, err := ReadCaseList(filePath)
	if err != nil {
		return nil, fmt.Errorf("read case list: %w", err)
	}

	return b.ProcessCases(ctx, paths), nil
}

// ReadCaseList reads case paths from a file (one per line, relative to the file)
func ReadCaseList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ListCases returns the cases under dir: each sub-directory and each regular
// file, skipping hidden entries, sorted by name
func ListCases(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read case directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() || e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
