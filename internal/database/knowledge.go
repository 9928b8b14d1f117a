package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"erp-assistant-backend/models"
)

const knowledgeTable = "odoo_knowledge"

// KnowledgeStore reads the vector knowledge base. It only ever needs the
// read-only pool; writes go through InsertKnowledge on an explicit
// transaction held by the indexer.
type KnowledgeStore struct {
	pool *pgxpool.Pool
}

func NewKnowledgeStore(pool *pgxpool.Pool) *KnowledgeStore {
	return &KnowledgeStore{pool: pool}
}

// SearchNearest returns the limit closest records by cosine distance,
// closest first. The <=> operator matches the geometry of the embedding
// model; results are raw, contamination filtering happens in the retriever.
func (s *KnowledgeStore) SearchNearest(ctx context.Context, vector []float32, limit int) ([]models.RetrievalResult, error) {
	sql := fmt.Sprintf(`
		SELECT content, COALESCE(url, ''), source_file
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, knowledgeTable)

	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []models.RetrievalResult
	for rows.Next() {
		var r models.RetrievalResult
		if err := rows.Scan(&r.Content, &r.URL, &r.Source); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// InsertKnowledge adds one record inside the caller's transaction. The
// indexer wraps each call in a savepoint so a bad row can be rolled back
// without losing the rest of the run.
func InsertKnowledge(ctx context.Context, tx pgx.Tx, rec models.KnowledgeRecord) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (source_file, category, content, embedding, url)
		VALUES ($1, $2, $3, $4, $5)`, knowledgeTable)

	_, err := tx.Exec(ctx, sql,
		rec.SourceFile, rec.Category, rec.Content, pgvector.NewVector(rec.Embedding), rec.URL)
	return err
}

// EnsureKnowledgeTable creates the store if missing. Requires the admin pool;
// the embedding dimension must match the configured embedding model.
func EnsureKnowledgeTable(ctx context.Context, pool *pgxpool.Pool, dimensions int) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("pgvector extension unavailable: %w", err)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          BIGSERIAL PRIMARY KEY,
			source_file TEXT NOT NULL,
			category    TEXT,
			content     TEXT NOT NULL,
			embedding   VECTOR(%d) NOT NULL,
			url         TEXT
		)`, knowledgeTable, dimensions)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("knowledge table creation failed: %w", err)
	}
	return nil
}
