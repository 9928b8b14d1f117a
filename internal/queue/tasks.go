package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"erp-assistant-backend/internal/etl"
	"erp-assistant-backend/internal/logger"
)

const (
	TaskReindexDocs = "etl:reindex"
)

type ReindexPayload struct {
	TriggeredBy string `json:"triggered_by"`
}

// NewReindexTask builds a full documentation reindex task. Reindexing
// walks the whole pipeline and can take a long time, so it gets a
// generous timeout and no retries: a failed run is rerun deliberately,
// not replayed by the queue.
func NewReindexTask(triggeredBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReindexPayload{TriggeredBy: triggeredBy})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskReindexDocs,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Hour),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor handles background tasks for the worker process.
type TaskProcessor struct {
	pipeline *etl.Pipeline
}

func NewTaskProcessor(pipeline *etl.Pipeline) *TaskProcessor {
	return &TaskProcessor{pipeline: pipeline}
}

func (p *TaskProcessor) HandleReindex(ctx context.Context, t *asynq.Task) error {
	var payload ReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Reindex task started", "triggered_by", payload.TriggeredBy)

	start := time.Now()
	if err := p.pipeline.Run(ctx); err != nil {
		logger.Error("Reindex task failed", "error", err)
		return err
	}

	logger.Info("Reindex task completed", "duration", time.Since(start).String())
	return nil
}
