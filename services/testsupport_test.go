package services

import (
	"context"
	"errors"

	"erp-assistant-backend/models"
)

// fakeGenerator scripts the generation capability per call.
type fakeGenerator struct {
	fn    func(modelID, prompt string) (string, error)
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, modelID, prompt string) (string, error) {
	g.calls++
	if g.fn == nil {
		return "", errors.New("no response scripted")
	}
	return g.fn(modelID, prompt)
}

// fixedGenerator always answers the same text.
func fixedGenerator(text string) *fakeGenerator {
	return &fakeGenerator{fn: func(string, string) (string, error) { return text, nil }}
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.vector == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return e.vector, nil
}

// fakeStore returns scripted nearest-neighbor results, capped at limit.
type fakeStore struct {
	results   []models.RetrievalResult
	err       error
	lastLimit int
}

func (s *fakeStore) SearchNearest(_ context.Context, _ []float32, limit int) ([]models.RetrievalResult, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) > limit {
		return s.results[:limit], nil
	}
	return s.results, nil
}

type fakeSchema struct {
	description string
	err         error
}

func (s *fakeSchema) Description(context.Context) (string, error) {
	return s.description, s.err
}

type fakeExecutor struct {
	result  models.QueryResult
	err     error
	lastSQL string
	calls   int
}

func (e *fakeExecutor) RunQuery(_ context.Context, sql string) (models.QueryResult, error) {
	e.calls++
	e.lastSQL = sql
	if e.err != nil {
		return models.QueryResult{}, e.err
	}
	return e.result, nil
}
