package etl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"erp-assistant-backend/models"
)

func TestCleanRSTDropsTocTrees(t *testing.T) {
	text := "Sales\n=====\n\n.. toctree::\n   sales/invoicing\n   sales/products\n"
	if got := CleanRST(text); got != "" {
		t.Fatalf("toctree page should clean to empty, got %q", got)
	}
}

func TestCleanRSTStripsMarkup(t *testing.T) {
	text := "Confirm a quotation\n===================\n\n" +
		"Click :guilabel:`Confirm` to turn a quotation into a sales order.\n\n" +
		".. image:: media/confirm.png\n\n" +
		"See the `sales guide <https://example.com/sales>`_ for details.\n"

	got := CleanRST(text)

	for _, leftovers := range []string{":guilabel:", ".. image::", "<https://", "====="} {
		if strings.Contains(got, leftovers) {
			t.Errorf("cleaned text still contains %q:\n%s", leftovers, got)
		}
	}
	if !strings.Contains(got, "Confirm") || !strings.Contains(got, "sales guide") {
		t.Errorf("cleaned text lost real content:\n%s", got)
	}
}

func TestCleanRSTDropsBarePathLines(t *testing.T) {
	text := "Some intro paragraph about invoicing and payments in general.\n\nsales/invoicing/overview\n\nMore actual prose here."
	got := CleanRST(text)
	if strings.Contains(got, "sales/invoicing/overview") {
		t.Errorf("bare path line survived cleanup:\n%s", got)
	}
}

func TestExtractorQualityGate(t *testing.T) {
	dir := t.TempDir()
	docsDir := filepath.Join(dir, "sales")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	long := strings.Repeat("A sentence about confirming sales orders in the backend. ", 10)
	writeFile(t, filepath.Join(docsDir, "confirm.rst"), long)
	writeFile(t, filepath.Join(docsDir, "stub.rst"), "Too short.")
	writeFile(t, filepath.Join(docsDir, "notes.txt"), long) // wrong extension

	rawPath := filepath.Join(dir, "raw_docs.json")
	ex := NewExtractor(dir, 200, rawPath)
	if err := ex.Run(); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	var docs []models.Document
	if err := readJSON(rawPath, &docs); err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 surviving document, got %d", len(docs))
	}
	if docs[0].SourceFile != "confirm.rst" {
		t.Errorf("unexpected source file %q", docs[0].SourceFile)
	}
	if docs[0].Category != "sales" {
		t.Errorf("category should come from the parent directory, got %q", docs[0].Category)
	}
}

func TestExtractorMissingRoot(t *testing.T) {
	ex := NewExtractor(filepath.Join(t.TempDir(), "nope"), 200, filepath.Join(t.TempDir(), "out.json"))
	if err := ex.Run(); err == nil {
		t.Fatal("expected error for missing documentation root")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
