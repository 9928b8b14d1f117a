package services

import (
	"context"
	"fmt"
	"strings"

	"erp-assistant-backend/models"
)

// Generator is the text-generation capability consumed by the services
// layer. internal/ai.Client satisfies it; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// Embedder is the embedding capability used at query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IntentRouter decides whether a question needs live data (SQL) or
// documentation (RAG).
type IntentRouter struct {
	llm   Generator
	model string
}

func NewIntentRouter(llm Generator, model string) *IntentRouter {
	return &IntentRouter{llm: llm, model: model}
}

const routerPromptTemplate = `You are a classification system. Analyse the following question.

Question: "%s"

Rules:
1. If the question asks for dynamic data (how many, list, who, what amount, statistics) -> Answer "SQL".
2. If the question asks for a definition, a procedure or help (how do I, what is, explain) -> Answer "RAG".

Answer ONLY with the word "SQL" or the word "RAG". Nothing else.`

// Classify makes a single classification call. The parse is defensive: the
// SQL token anywhere in the (case-normalized) response selects the data
// path, anything else falls back to documentation. An ambiguous or chatty
// model response must never be read as permission to run generated SQL.
func (r *IntentRouter) Classify(ctx context.Context, question string) (models.Intent, error) {
	prompt := fmt.Sprintf(routerPromptTemplate, question)

	response, err := r.llm.Generate(ctx, r.model, prompt)
	if err != nil {
		return "", fmt.Errorf("intent classification failed: %w", err)
	}

	if strings.Contains(strings.ToUpper(response), string(models.IntentData)) {
		return models.IntentData, nil
	}
	return models.IntentDocs, nil
}
