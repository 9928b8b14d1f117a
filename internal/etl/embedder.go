package etl

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"erp-assistant-backend/internal/database"
	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// EmbedFunc is the embedding capability consumed by the indexer.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

var viewerExtensions = strings.NewReplacer(".rst", ".html", ".md", ".html")

// Embedder computes one embedding per chunk and persists the resulting
// knowledge records. It is the only component that touches the privileged
// database role.
type Embedder struct {
	ChunksPath string
	DocBaseURL string
	Embed      EmbedFunc
	Pool       *pgxpool.Pool
}

func NewEmbedder(chunksPath, docBaseURL string, embed EmbedFunc, adminPool *pgxpool.Pool) *Embedder {
	return &Embedder{
		ChunksPath: chunksPath,
		DocBaseURL: docBaseURL,
		Embed:      embed,
		Pool:       adminPool,
	}
}

// RecordURL derives the citation URL for a source file: extension remapped
// to the rendered viewer format and appended to the documentation base URL.
func (e *Embedder) RecordURL(sourceFile string) string {
	return e.DocBaseURL + viewerExtensions.Replace(sourceFile)
}

// Run embeds every chunk and inserts the records one at a time. A failed
// chunk is rolled back to its savepoint, logged and skipped; the run keeps
// going and the final commit persists everything that made it through.
// Coverage over correctness: a partially indexed document beats an aborted
// run, and recovery from a bad run is full re-extraction.
func (e *Embedder) Run(ctx context.Context) error {
	var chunks []models.Chunk
	if err := readJSON(e.ChunksPath, &chunks); err != nil {
		return fmt.Errorf("reading chunks (run chunking first): %w", err)
	}

	tx, err := e.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("opening indexing transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted, failed := 0, 0
	for i, chunk := range chunks {
		vector, err := e.Embed(ctx, chunk.Text)
		if err != nil {
			logger.Warn("Embedding failed, skipping chunk", "chunk_id", chunk.ID, "error", err)
			failed++
			continue
		}

		// Nested Begin opens a savepoint: a bad row rolls back alone.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("opening savepoint: %w", err)
		}
		record := models.KnowledgeRecord{
			SourceFile: chunk.Source,
			Category:   chunk.Category,
			Content:    chunk.Text,
			Embedding:  vector,
			URL:        e.RecordURL(chunk.Source),
		}
		if err := database.InsertKnowledge(ctx, sp, record); err != nil {
			logger.Warn("Insert failed, skipping chunk", "chunk_id", chunk.ID, "error", err)
			sp.Rollback(ctx)
			failed++
			continue
		}
		if err := sp.Commit(ctx); err != nil {
			logger.Warn("Savepoint release failed, skipping chunk", "chunk_id", chunk.ID, "error", err)
			failed++
			continue
		}
		inserted++

		if i > 0 && i%50 == 0 {
			logger.Info("Indexing progress", "done", i, "total", len(chunks))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("final commit failed: %w", err)
	}

	logger.Info("Indexing finished", "inserted", inserted, "failed", failed, "total", len(chunks))
	return nil
}
