package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/contradicta/internal/model"
)

// mockAnalyzer implements CaseAnalyzer
type mockAnalyzer struct {
	failOn string
}

func (m *mockAnalyzer) AnalyzeCase(ctx context.Context, path string) (*model.Report, error) {
	time.Sleep(2 * time.Millisecond) // Simulate work
	if m.failOn != "" && strings.HasSuffix(path, m.failOn) {
		return nil, errors.New("analysis error")
	}
	return &model.Report{Subject: filepath.Base(path)}, nil
}

func TestBatchProcessor_ProcessCases(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{failOn: "case-b"}, 2)

	paths := []string{"/cases/case-a", "/cases/case-b", "/cases/case-c"}
	results := processor.ProcessCases(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d path = %s, want %s", i, res.Path, paths[i])
		}
	}
	if results[0].Error != nil || results[0].Report.Subject != "case-a" {
		t.Errorf("case-a: %+v", results[0])
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Errorf("case-b should fail: %+v", results[1])
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)
	if got := processor.ProcessCases(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchProcessor(&mockAnalyzer{}, 2).ProcessCases(ctx, []string{"/x", "/y"})
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("%s: error = %v", r.Path, r.Error)
		}
	}
}

func TestReadCaseList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "cases.txt")
	content := "# cases\ncase-a\n\n/abs/case-b\ncase-a\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCaseList(list)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "case-a"), "/abs/case-b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ReadCaseList(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "cases.txt")
	if err := os.WriteFile(list, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := NewBatchProcessor(&mockAnalyzer{}, 4).ProcessFile(context.Background(), list)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[1].Report.Subject != "two" {
		t.Errorf("results = %+v", results)
	}
}

func TestListCases(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"b-case", ".hidden"} {
		if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "a-case.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ListCases(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a-case.txt"), filepath.Join(dir, "b-case")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
