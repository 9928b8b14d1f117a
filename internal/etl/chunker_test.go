package etl

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"erp-assistant-backend/models"
)

func buildText(paragraphs int) string {
	var sb strings.Builder
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "Paragraph %d talks about sales order confirmation, delivery steps and invoice creation in some detail. ", i)
		fmt.Fprintf(&sb, "Sentence %d keeps going so splitting has sentence boundaries to work with.\n\n", i)
	}
	return strings.TrimSpace(sb.String())
}

// reassemble undoes the overlap: each chunk's longest prefix that is a
// suffix of the accumulated text is duplicated overlap material.
func reassemble(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	out := chunks[0]
	for _, chunk := range chunks[1:] {
		max := len(chunk)
		if len(out) < max {
			max = len(out)
		}
		skip := 0
		for n := max; n > 0; n-- {
			if strings.HasSuffix(out, chunk[:n]) {
				skip = n
				break
			}
		}
		out += chunk[skip:]
	}
	return out
}

func TestSplitterRoundTrip(t *testing.T) {
	text := buildText(20)
	splitter := NewSplitter(300, 60)

	chunks := splitter.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk) > 300 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk))
		}
	}

	if got := reassemble(chunks); got != text {
		t.Fatalf("round trip lost content:\nwant %d chars\ngot  %d chars", len(text), len(got))
	}
}

func TestSplitterSeparatorFallback(t *testing.T) {
	// No paragraph or line breaks: must fall through to sentences, then words
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	text := strings.Join(words, " ")

	chunks := NewSplitter(100, 20).Split(text)
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk))
		}
	}
	if got := reassemble(chunks); got != text {
		t.Fatal("word-level fallback lost content")
	}
}

func TestSplitterHardCut(t *testing.T) {
	// A single unbreakable token longer than the chunk size
	text := strings.Repeat("x", 250)
	chunks := NewSplitter(100, 0).Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 hard-cut chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("hard cut lost content")
	}
}

func TestSplitterShortInput(t *testing.T) {
	chunks := NewSplitter(1000, 200).Split("short text")
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("short input should come back as one chunk, got %v", chunks)
	}
	if got := NewSplitter(1000, 200).Split(""); got != nil {
		t.Fatalf("empty input should produce no chunks, got %v", got)
	}
}

func TestChunkerIDsAndIndices(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.json")
	chunksPath := filepath.Join(dir, "chunks.json")

	docs := []models.Document{
		{SourceFile: "sales.rst", Category: "sales", FullPath: "/docs/sales.rst", Content: buildText(15)},
		{SourceFile: "stock.rst", Category: "inventory", FullPath: "/docs/stock.rst", Content: buildText(10)},
		{SourceFile: "empty.rst", Category: "misc", FullPath: "/docs/empty.rst", Content: ""},
	}
	if err := writeJSON(rawPath, docs); err != nil {
		t.Fatal(err)
	}

	chunker := NewChunker(rawPath, chunksPath, 300, 60)
	if err := chunker.Run(); err != nil {
		t.Fatalf("chunking failed: %v", err)
	}

	var chunks []models.Chunk
	if err := readJSON(chunksPath, &chunks); err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	seen := map[string]bool{}
	nextIndex := map[string]int{}
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			t.Errorf("duplicate chunk ID %q", chunk.ID)
		}
		seen[chunk.ID] = true

		if want := fmt.Sprintf("%s_%d", chunk.Source, chunk.ChunkIndex); chunk.ID != want {
			t.Errorf("chunk ID %q does not match source and index (want %q)", chunk.ID, want)
		}
		if chunk.ChunkIndex != nextIndex[chunk.Source] {
			t.Errorf("source %s: index %d out of order, want %d",
				chunk.Source, chunk.ChunkIndex, nextIndex[chunk.Source])
		}
		nextIndex[chunk.Source]++
	}

	if nextIndex["empty.rst"] != 0 {
		t.Error("empty document should produce no chunks")
	}
}
