package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// overfetchFactor is how many raw candidates are requested per clean result
// wanted, to leave headroom for contamination filtering.
const overfetchFactor = 5

// noDocsAnswer is returned when retrieval comes back empty; no generation
// call is made in that case.
const noDocsAnswer = "Je n'ai trouvé aucune information pertinente dans la documentation."

// defaultLocalityTokens is the closed list of locality markers that flag a
// document as jurisdiction-specific. Odoo ships one fiscal-localization page
// per country; those pages rank high on generic questions and drag the
// answer toward the wrong jurisdiction.
var defaultLocalityTokens = []string{
	"l10n", "localization",
	"afghanistan", "albania", "algeria", "andorra", "angola", "argentina", "armenia",
	"australia", "austria", "azerbaijan", "bahrain", "bangladesh", "belarus", "belgium",
	"bolivia", "bosnia", "brazil", "bulgaria", "cambodia", "cameroon", "canada",
	"chile", "china", "colombia", "costa rica", "croatia", "cyprus", "czech",
	"denmark", "dominican republic", "ecuador", "egypt", "estonia", "ethiopia",
	"finland", "france", "georgia", "germany", "ghana", "greece", "guatemala",
	"hong kong", "hungary", "iceland", "india", "indonesia", "iran", "iraq",
	"ireland", "israel", "italy", "jamaica", "japan", "jordan", "kazakhstan",
	"kenya", "kuwait", "latvia", "lebanon", "lithuania", "luxembourg", "malaysia",
	"malta", "mexico", "mongolia", "morocco", "myanmar", "nepal", "netherlands",
	"new zealand", "nigeria", "norway", "oman", "pakistan", "panama", "paraguay",
	"peru", "philippines", "poland", "portugal", "qatar", "romania", "russia",
	"saudi arabia", "serbia", "singapore", "slovakia", "slovenia", "south africa",
	"south korea", "spain", "sri lanka", "sweden", "switzerland", "taiwan",
	"tanzania", "thailand", "tunisia", "turkey", "uganda", "ukraine",
	"united arab emirates", "united kingdom", "united states", "uruguay",
	"uzbekistan", "venezuela", "vietnam", "zambia", "zimbabwe",
}

// ContaminationFilter detects locality tokens in candidate URLs with a
// single combined pattern, so matching cost stays flat as the token list
// grows.
type ContaminationFilter struct {
	pattern *regexp.Regexp
}

// NewContaminationFilter compiles the token list; nil or empty falls back to
// the default list.
func NewContaminationFilter(tokens []string) *ContaminationFilter {
	if len(tokens) == 0 {
		tokens = defaultLocalityTokens
	}
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(strings.TrimSpace(token))
	}
	pattern := regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	return &ContaminationFilter{pattern: pattern}
}

// Match returns the first locality token found in the URL, lowercased.
func (f *ContaminationFilter) Match(url string) (string, bool) {
	token := f.pattern.FindString(url)
	if token == "" {
		return "", false
	}
	return strings.ToLower(token), true
}

// VectorSearcher is the nearest-neighbor capability of the knowledge store.
type VectorSearcher interface {
	SearchNearest(ctx context.Context, vector []float32, limit int) ([]models.RetrievalResult, error)
}

// RAGEngine answers documentation questions from the vector knowledge store.
type RAGEngine struct {
	embedder Embedder
	store    VectorSearcher
	llm      Generator
	model    string
	limit    int
	filter   *ContaminationFilter
}

func NewRAGEngine(embedder Embedder, store VectorSearcher, llm Generator, model string, limit int, filter *ContaminationFilter) *RAGEngine {
	if filter == nil {
		filter = NewContaminationFilter(nil)
	}
	return &RAGEngine{
		embedder: embedder,
		store:    store,
		llm:      llm,
		model:    model,
		limit:    limit,
		filter:   filter,
	}
}

// Search embeds the question, over-fetches nearest neighbors and filters out
// polluted candidates, preserving distance order. A candidate is polluted
// when its URL names a locality the question does not mention; a candidate
// without a URL cannot be cited and is dropped outright. If filtering
// removes everything, the single closest raw candidate comes back instead of
// an empty set: a degraded answer beats no answer.
func (e *RAGEngine) Search(ctx context.Context, question string, limit int) ([]models.RetrievalResult, error) {
	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	raw, err := e.store.SearchNearest(ctx, vector, limit*overfetchFactor)
	if err != nil {
		return nil, err
	}

	questionLower := strings.ToLower(question)
	var clean []models.RetrievalResult
	for _, candidate := range raw {
		if candidate.URL == "" {
			continue
		}
		if token, found := e.filter.Match(candidate.URL); found && !strings.Contains(questionLower, token) {
			continue
		}
		clean = append(clean, candidate)
		if len(clean) >= limit {
			break
		}
	}

	if len(clean) == 0 && len(raw) > 0 {
		logger.Warn("Contamination filter removed all candidates, falling back to closest raw result",
			"question", question)
		clean = raw[:1]
	}

	return clean, nil
}

const ragPromptTemplate = `You are a technical expert on the Odoo ERP.
Use ONLY the context below to answer the user's question.

Strict rules:
- If the context covers country-specific procedures (Mexico, Uruguay, ...) but the question is generic, IGNORE those countries and give the standard procedure.
- If the answer is not in the context, say "Je ne trouve pas l'information dans la documentation officielle".
- Never invent features.
- Be clear, concise and pedagogical.
- Answer in French.

CONTEXT:
%s

USER QUESTION:
%s`

// Answer retrieves context for the question and generates a sourced answer.
// Citations are the de-duplicated URLs of the consumed chunks.
func (e *RAGEngine) Answer(ctx context.Context, question string) (models.AnswerEnvelope, error) {
	results, err := e.Search(ctx, question, e.limit)
	if err != nil {
		return models.AnswerEnvelope{}, err
	}
	if len(results) == 0 {
		return models.AnswerEnvelope{Text: noDocsAnswer}, nil
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	prompt := fmt.Sprintf(ragPromptTemplate, strings.Join(contents, "\n\n---\n\n"), question)

	text, err := e.llm.Generate(ctx, e.model, prompt)
	if err != nil {
		return models.AnswerEnvelope{}, fmt.Errorf("answer generation failed: %w", err)
	}

	seen := make(map[string]bool)
	var sources []string
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		sources = append(sources, r.URL)
	}

	return models.AnswerEnvelope{Text: text, Sources: sources}, nil
}
