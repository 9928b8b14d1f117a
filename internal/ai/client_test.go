package ai

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sony/gobreaker"
)

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	breaker := newGeminiBreaker()

	// The state-change hook fires on the trip; it must not depend on the
	// process logger being initialized.
	for i := 0; i < 5; i++ {
		breaker.Execute(func() (interface{}, error) {
			return nil, errors.New("upstream unavailable")
		})
	}

	if breaker.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker after repeated failures, got %v", breaker.State())
	}

	if _, err := breaker.Execute(func() (interface{}, error) {
		t.Fatal("open breaker must not run the call")
		return nil, nil
	}); err == nil {
		t.Fatal("expected error from open breaker")
	}
}

func TestGenerateAndEmbed(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	client, err := NewClient(context.Background(), apiKey, "text-embedding-004")
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}
	defer client.Close()

	text, err := client.Generate(context.Background(), "gemini-2.0-flash", "Reply with the single word: pong")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if text == "" {
		t.Fatalf("empty generation")
	}

	vec, err := client.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vec) == 0 {
		t.Fatalf("empty embedding")
	}
}
