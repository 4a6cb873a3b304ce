package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDocumentID(t *testing.T) {
	tests := map[string]string{
		"/case/Affidavit of Witness A.txt": "affidavit-of-witness-a",
		"testimony_2021-03.md":             "testimony-2021-03",
		"--.txt":                           "doc",
		"Éclat.html":                       "éclat",
	}
	for path, want := range tests {
		if got := DocumentID(path); got != want {
			t.Errorf("DocumentID(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestImportFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Affidavit.txt", "I signed the lease in March 2021.\n")

	src, err := NewEngine().ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Format != "text" || src.IsRecords() {
		t.Errorf("unexpected format %q", src.Format)
	}
	if src.Document.ID != "affidavit" || src.Document.Title != "Affidavit.txt" {
		t.Errorf("unexpected document: %+v", src.Document)
	}
	if src.Document.Text != "I signed the lease in March 2021.\n" {
		t.Errorf("unexpected text %q", src.Document.Text)
	}
}

func TestImportFile_MarkdownFrontMatter(t *testing.T) {
	dir := t.TempDir()
	content := "---\nid: hearing-1\ntitle: First hearing\nspeaker: Witness A\n---\n# Testimony\n\nI was at the meeting.\n"
	path := writeFile(t, dir, "hearing.md", content)

	src, err := NewEngine().ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	doc := src.Document
	if doc.ID != "hearing-1" || doc.Title != "First hearing" || doc.Speaker != "Witness A" {
		t.Errorf("front matter not applied: %+v", doc)
	}
	if doc.Text != "# Testimony\n\nI was at the meeting.\n" {
		t.Errorf("unexpected body %q", doc.Text)
	}
}

func TestImportFile_MarkdownWithoutFrontMatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", "I was not present.\n")

	src, err := NewEngine().ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Document.ID != "notes" || src.Document.Text != "I was not present.\n" {
		t.Errorf("unexpected document: %+v", src.Document)
	}
}

func TestImportFile_HTMLVisibleText(t *testing.T) {
	dir := t.TempDir()
	content := `<html><head><title>Protocol
	of hearing</title><style>p { color: red }</style></head>
<body><h1>Hearing</h1><p>I paid <b>500</b> shekels.</p>
<script>var x = "hidden";</script><div>I never saw the contract.</div></body></html>`
	path := writeFile(t, dir, "protocol.html", content)

	src, err := NewEngine().ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Document.Title != "Protocol of hearing" {
		t.Errorf("unexpected title %q", src.Document.Title)
	}
	want := "Hearing\n\nI paid 500 shekels.\n\nI never saw the contract."
	if src.Document.Text != want {
		t.Errorf("text = %q, want %q", src.Document.Text, want)
	}
}

func TestImportFile_JSONRecords(t *testing.T) {
	dir := t.TempDir()
	obj := writeFile(t, dir, "statements.json",
		`{"id": "police", "speaker": "Witness B", "claims": [{"id": "p1", "text": "I left at noon.", "page": 3}, {"text": "My brother Dan drove.", "speaker": "Witness C"}]}`)
	arr := writeFile(t, dir, "list.json", `[{"text": "I signed it."}]`)

	e := NewEngine()
	src, err := e.ImportFile(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if !src.IsRecords() || src.Document.ID != "police" || len(src.Records) != 2 {
		t.Fatalf("unexpected source: %+v", src)
	}
	if src.Records[0].Speaker != "Witness B" || src.Records[1].Speaker != "Witness C" {
		t.Errorf("speaker inheritance failed: %+v", src.Records)
	}
	if src.Records[0].Page == nil || *src.Records[0].Page != 3 {
		t.Errorf("page not parsed: %+v", src.Records[0])
	}

	src, err = e.ImportFile(context.Background(), arr)
	if err != nil {
		t.Fatal(err)
	}
	if src.Document.ID != "list" || len(src.Records) != 1 {
		t.Errorf("unexpected array source: %+v", src)
	}
}

func TestImportFile_Errors(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine()

	if _, err := e.ImportFile(context.Background(), writeFile(t, dir, "scan.pdf", "%PDF")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := e.ImportFile(context.Background(), writeFile(t, dir, "bad.json", `{"claims": [`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := e.ImportFile(context.Background(), writeFile(t, dir, "bad.md", "---\n: [\n---\nbody")); err == nil {
		t.Error("expected error for invalid front matter")
	}
	if _, err := e.ImportFile(context.Background(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportCase_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "Second statement.")
	writeFile(t, dir, "a.md", "First statement.")
	writeFile(t, dir, "a.txt", "Same name, other format.")
	writeFile(t, dir, ".hidden.txt", "skip")
	writeFile(t, dir, "scan.pdf", "skip")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	sources, err := NewEngine().ImportCase(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, s := range sources {
		ids = append(ids, s.Document.ID)
	}
	if got := strings.Join(ids, ","); got != "a,a-2,b" {
		t.Errorf("ids = %s, want a,a-2,b", got)
	}
}

func TestImportCase_SingleFileAndEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.txt", "Statement.")

	sources, err := NewEngine().ImportCase(context.Background(), path)
	if err != nil || len(sources) != 1 {
		t.Fatalf("single file case: %v, %d sources", err, len(sources))
	}

	empty := t.TempDir()
	if _, err := NewEngine().ImportCase(context.Background(), empty); err == nil {
		t.Error("expected error for a directory without supported files")
	}
}
