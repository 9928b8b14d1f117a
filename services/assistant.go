package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// Classifier is the routing capability.
type Classifier interface {
	Classify(ctx context.Context, question string) (models.Intent, error)
}

// Answerer is shared by both engines: a question in, an envelope out.
type Answerer interface {
	Answer(ctx context.Context, question string) (models.AnswerEnvelope, error)
}

// Assistant is the thin composition over the pipeline: classify the
// question, hand it to the selected engine, return the envelope. Questions
// are independent of each other; all shared state behind the engines is
// read-only.
type Assistant struct {
	router Classifier
	docs   Answerer
	data   Answerer

	// Optional answer cache; nil disables caching.
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewAssistant(router Classifier, docs, data Answerer, cache *redis.Client, cacheTTL time.Duration) *Assistant {
	return &Assistant{
		router:   router,
		docs:     docs,
		data:     data,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Ask answers one question end to end.
func (a *Assistant) Ask(ctx context.Context, question string) (models.AskResponse, error) {
	if cached, ok := a.cachedAnswer(ctx, question); ok {
		cached.Cached = true
		return cached, nil
	}

	intent, err := a.router.Classify(ctx, question)
	if err != nil {
		return models.AskResponse{}, err
	}

	var envelope models.AnswerEnvelope
	switch intent {
	case models.IntentData:
		envelope, err = a.data.Answer(ctx, question)
	default:
		envelope, err = a.docs.Answer(ctx, question)
	}
	if err != nil {
		return models.AskResponse{}, err
	}

	response := models.AskResponse{
		Intent:  intent,
		Answer:  envelope.Text,
		Sources: envelope.Sources,
	}
	a.storeAnswer(ctx, question, response)
	return response, nil
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return "answer:" + hex.EncodeToString(sum[:])
}

// Cache failures are never allowed to break a question; they only cost a
// recomputation.
func (a *Assistant) cachedAnswer(ctx context.Context, question string) (models.AskResponse, bool) {
	var response models.AskResponse
	if a.cache == nil {
		return response, false
	}
	data, err := a.cache.Get(ctx, cacheKey(question)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("Answer cache read failed", "error", err)
		}
		return response, false
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return models.AskResponse{}, false
	}
	return response, true
}

func (a *Assistant) storeAnswer(ctx context.Context, question string, response models.AskResponse) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, cacheKey(question), data, a.cacheTTL).Err(); err != nil {
		logger.Debug("Answer cache write failed", "error", err)
	}
}
