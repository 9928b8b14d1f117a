package models

// Intent is the routing decision for a question.
type Intent string

const (
	// IntentData routes to SQL generation against the live ERP database.
	IntentData Intent = "SQL"
	// IntentDocs routes to semantic retrieval over the documentation index.
	IntentDocs Intent = "RAG"
)

// RetrievalResult is one candidate chunk returned by vector search,
// after contamination filtering.
type RetrievalResult struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// AnswerEnvelope is the final response unit for a question.
// Sources holds the de-duplicated citation URLs; it is empty for
// data answers and fallback answers.
type AnswerEnvelope struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

// QueryResult holds the raw output of an executed generated query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// AskRequest is the payload of POST /ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskResponse wraps an AnswerEnvelope with the routing decision.
type AskResponse struct {
	Intent  Intent   `json:"intent"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
	Cached  bool     `json:"cached,omitempty"`
}
