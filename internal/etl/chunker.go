package etl

import (
	"fmt"
	"strings"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// defaultSeparators is the preference ladder: paragraph, line, sentence,
// word, then raw characters as the last resort.
var defaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// Splitter cuts text into chunks of at most ChunkSize characters with
// ChunkOverlap characters carried over between consecutive chunks, trying
// the gentlest separator first.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the chunks for one text. Concatenating the pieces produced
// before overlap-merging reconstructs the text exactly; overlap only
// duplicates content between neighbors, it never drops any.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.merge(s.decompose(text, s.separators))
}

// decompose cuts text into in-order pieces, each at most ChunkSize long,
// whose concatenation equals the input. Separators stay attached to the end
// of the piece they close.
func (s *Splitter) decompose(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	for i, sep := range separators {
		if sep == "" {
			break
		}
		if !strings.Contains(text, sep) {
			continue
		}
		parts := strings.SplitAfter(text, sep)
		var pieces []string
		for _, part := range parts {
			if part == "" {
				continue
			}
			if len(part) > s.ChunkSize {
				pieces = append(pieces, s.decompose(part, separators[i+1:])...)
			} else {
				pieces = append(pieces, part)
			}
		}
		return pieces
	}

	// No separator left: hard character cut
	var pieces []string
	for start := 0; start < len(text); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		pieces = append(pieces, text[start:end])
	}
	return pieces
}

// merge greedily packs pieces into chunks up to ChunkSize, seeding each new
// chunk with the trailing pieces of the previous one up to ChunkOverlap.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	windowLen := 0

	for _, piece := range pieces {
		if windowLen+len(piece) > s.ChunkSize && windowLen > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			// Shrink until the carried overlap fits the budget and leaves
			// room for the incoming piece.
			for len(window) > 0 && (windowLen > s.ChunkOverlap || windowLen+len(piece) > s.ChunkSize) {
				windowLen -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		windowLen += len(piece)
	}
	if windowLen > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// Chunker turns the extracted document set into identified chunks.
type Chunker struct {
	RawDocsPath string
	ChunksPath  string
	splitter    *Splitter
}

func NewChunker(rawDocsPath, chunksPath string, chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		RawDocsPath: rawDocsPath,
		ChunksPath:  chunksPath,
		splitter:    NewSplitter(chunkSize, chunkOverlap),
	}
}

// Run reads the extracted documents, splits each one, and writes the chunk
// set. Chunk IDs are "<source>_<index>" with a zero-based contiguous index
// per source.
func (c *Chunker) Run() error {
	var documents []models.Document
	if err := readJSON(c.RawDocsPath, &documents); err != nil {
		return fmt.Errorf("reading extracted documents (run extraction first): %w", err)
	}

	var chunks []models.Chunk
	for _, doc := range documents {
		if doc.Content == "" {
			continue
		}
		for i, text := range c.splitter.Split(doc.Content) {
			chunks = append(chunks, models.Chunk{
				ID:         fmt.Sprintf("%s_%d", doc.SourceFile, i),
				Text:       text,
				Source:     doc.SourceFile,
				Category:   doc.Category,
				FullPath:   doc.FullPath,
				ChunkIndex: i,
			})
		}
	}

	logger.Info("Chunking finished",
		"documents", len(documents), "chunks", len(chunks),
		"chunk_size", c.splitter.ChunkSize, "overlap", c.splitter.ChunkOverlap)

	return writeJSON(c.ChunksPath, chunks)
}
