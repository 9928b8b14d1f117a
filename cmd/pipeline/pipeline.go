package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"erp-assistant-backend/internal/ai"
	"erp-assistant-backend/internal/config"
	"erp-assistant-backend/internal/database"
	"erp-assistant-backend/internal/etl"
	"erp-assistant-backend/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/pipeline/pipeline.go <command>")
		fmt.Println("Commands:")
		fmt.Println("  extract  - Walk the local documentation tree into raw_docs.json")
		fmt.Println("  scrape   - Crawl the online documentation into raw_docs.json")
		fmt.Println("  chunk    - Split raw_docs.json into chunks.json")
		fmt.Println("  embed    - Embed chunks.json into the knowledge store")
		fmt.Println("  all      - extract, chunk and embed in sequence")
		os.Exit(1)
	}

	command := os.Args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	switch command {
	case "extract":
		extractor := etl.NewExtractor(cfg.DocsRoot, cfg.MinDocLength, cfg.RawDocsPath)
		if err := extractor.Run(); err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		fmt.Println("Extraction completed successfully!")

	case "scrape":
		scraper := etl.NewScraper(cfg.ScrapeBaseURL, cfg.ScrapeMaxPages, cfg.ScrapeDelay, cfg.MinDocLength, cfg.RawDocsPath)
		if err := scraper.Run(); err != nil {
			log.Fatalf("Scraping failed: %v", err)
		}
		fmt.Println("Scraping completed successfully!")

	case "chunk":
		chunker := etl.NewChunker(cfg.RawDocsPath, cfg.ChunksPath, cfg.ChunkSize, cfg.ChunkOverlap)
		if err := chunker.Run(); err != nil {
			log.Fatalf("Chunking failed: %v", err)
		}
		fmt.Println("Chunking completed successfully!")

	case "embed":
		pool, aiClient := mustConnect(ctx, cfg)
		defer pool.Close()
		defer aiClient.Close()

		embedder := etl.NewEmbedder(cfg.ChunksPath, cfg.DocBaseURL, aiClient.Embed, pool)
		if err := embedder.Run(ctx); err != nil {
			log.Fatalf("Embedding failed: %v", err)
		}
		fmt.Println("Embedding completed successfully!")

	case "all":
		pool, aiClient := mustConnect(ctx, cfg)
		defer pool.Close()
		defer aiClient.Close()

		pipeline := etl.NewPipeline(
			etl.NewExtractor(cfg.DocsRoot, cfg.MinDocLength, cfg.RawDocsPath),
			etl.NewChunker(cfg.RawDocsPath, cfg.ChunksPath, cfg.ChunkSize, cfg.ChunkOverlap),
			etl.NewEmbedder(cfg.ChunksPath, cfg.DocBaseURL, aiClient.Embed, pool),
		)
		if err := pipeline.Run(ctx); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		fmt.Println("Pipeline completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func mustConnect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, *ai.Client) {
	pool, err := config.ConnectAdmin(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	if err := database.EnsureKnowledgeTable(ctx, pool, cfg.EmbeddingDimensions); err != nil {
		log.Fatalf("Failed to ensure knowledge table: %v", err)
	}

	aiClient, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	return pool, aiClient
}
