package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"erp-assistant-backend/internal/ai"
	"erp-assistant-backend/internal/config"
	"erp-assistant-backend/internal/database"
	"erp-assistant-backend/internal/etl"
	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/internal/queue"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	// The worker is the only process allowed to write the knowledge
	// store, so it connects with the admin DSN.
	adminPool, err := config.ConnectAdmin(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer adminPool.Close()

	if err := database.EnsureKnowledgeTable(ctx, adminPool, cfg.EmbeddingDimensions); err != nil {
		log.Fatal("Failed to ensure knowledge table:", err)
	}

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer aiClient.Close()

	extractor := etl.NewExtractor(cfg.DocsRoot, cfg.MinDocLength, cfg.RawDocsPath)
	chunker := etl.NewChunker(cfg.RawDocsPath, cfg.ChunksPath, cfg.ChunkSize, cfg.ChunkOverlap)
	embedder := etl.NewEmbedder(cfg.ChunksPath, cfg.DocBaseURL, aiClient.Embed, adminPool)
	pipeline := etl.NewPipeline(extractor, chunker, embedder)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Reindexing is heavy and serial; one task at a time is enough.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(pipeline)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskReindexDocs, processor.HandleReindex)

	// Nightly reindex keeps the knowledge store aligned with the
	// documentation tree.
	if cfg.SchedulerEnabled {
		queueClient := asynq.NewClient(redisOpt)
		defer queueClient.Close()

		scheduler := etl.NewScheduler()
		err := scheduler.ScheduleCron("nightly-reindex", "0 2 * * *", func() error {
			task, err := queue.NewReindexTask("scheduler")
			if err != nil {
				return err
			}
			_, err = queueClient.Enqueue(task)
			return err
		})
		if err != nil {
			log.Fatal("Failed to schedule reindex job:", err)
		}

		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("Starting worker", "redis", cfg.RedisURL, "scheduler", cfg.SchedulerEnabled)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
