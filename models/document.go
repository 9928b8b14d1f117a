package models

// Document is a cleaned documentation page produced by the extraction stage.
// It only lives inside the ETL pipeline; the persisted unit is KnowledgeRecord.
type Document struct {
	SourceFile string `json:"source_file"`
	Category   string `json:"category"`
	FullPath   string `json:"full_path"`
	Content    string `json:"content"`
}

// Chunk is one overlapping segment of a Document.
// ID is "<source_file>_<chunk_index>" and unique across the corpus;
// ChunkIndex is zero-based and contiguous within a source.
type Chunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	Category   string `json:"category"`
	FullPath   string `json:"full_path"`
	ChunkIndex int    `json:"chunk_index"`
}

// KnowledgeRecord is one row of the vector knowledge store.
type KnowledgeRecord struct {
	SourceFile string    `json:"source_file"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	URL        string    `json:"url"`
}
