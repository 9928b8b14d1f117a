package etl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"erp-assistant-backend/internal/logger"
)

// Pipeline chains the three offline stages. Strictly sequential: a stage
// only runs if the previous one succeeded. There is no partial resumption;
// re-running a stage by hand (cmd/pipeline) is the recovery path.
type Pipeline struct {
	Extractor *Extractor
	Chunker   *Chunker
	Embedder  *Embedder
}

func NewPipeline(extractor *Extractor, chunker *Chunker, embedder *Embedder) *Pipeline {
	return &Pipeline{Extractor: extractor, Chunker: chunker, Embedder: embedder}
}

// Run executes extract, chunk and embed in order.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()
	logger.Info("Pipeline starting", "run_id", runID)

	if err := p.Extractor.Run(); err != nil {
		logger.Error("Pipeline aborted at extraction", "run_id", runID, "error", err)
		return err
	}

	if err := p.Chunker.Run(); err != nil {
		logger.Error("Pipeline aborted at chunking", "run_id", runID, "error", err)
		return err
	}

	if err := p.Embedder.Run(ctx); err != nil {
		logger.Error("Pipeline aborted at indexing", "run_id", runID, "error", err)
		return err
	}

	logger.Info("Pipeline finished", "run_id", runID, "duration", time.Since(start).String())
	return nil
}
