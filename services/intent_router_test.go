package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"erp-assistant-backend/models"
)

func TestClassifyParsesDefensively(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.Intent
	}{
		{"clean data token", "SQL", models.IntentData},
		{"lowercase token", "sql", models.IntentData},
		{"token buried in prose", "Sure, this one needs SQL against the database.", models.IntentData},
		{"clean docs token", "RAG", models.IntentDocs},
		{"verbose docs answer", "This looks like a documentation question to me.", models.IntentDocs},
		{"ambiguous rambling", "It could be either, hard to say.", models.IntentDocs},
		{"empty response", "", models.IntentDocs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewIntentRouter(fixedGenerator(tt.response), "test-model")
			got, err := router.Classify(context.Background(), "Combien de clients j'ai ?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("response %q routed to %s, want %s", tt.response, got, tt.want)
			}
		})
	}
}

func TestClassifyPropagatesGenerationFailure(t *testing.T) {
	router := NewIntentRouter(&fakeGenerator{fn: func(string, string) (string, error) {
		return "", errors.New("capability unavailable")
	}}, "test-model")

	if _, err := router.Classify(context.Background(), "Combien de clients ?"); err == nil {
		t.Fatal("expected error to propagate")
	}
}

// wellBehavedClassifier mimics a model that follows the routing prompt:
// cardinality cues mean data, everything else documentation.
func wellBehavedClassifier() *fakeGenerator {
	return &fakeGenerator{fn: func(_, prompt string) (string, error) {
		lower := strings.ToLower(prompt)
		for _, cue := range []string{"how many", "count of", "combien"} {
			if strings.Contains(lower, cue) {
				return "SQL", nil
			}
		}
		return "RAG", nil
	}}
}

func TestClassifyCardinalityQuestions(t *testing.T) {
	router := NewIntentRouter(wellBehavedClassifier(), "test-model")

	for _, question := range []string{
		"How many sale orders were confirmed this month?",
		"Give me the count of open deliveries",
		"Combien de clients j'ai ?",
	} {
		intent, err := router.Classify(context.Background(), question)
		if err != nil {
			t.Fatalf("%q: %v", question, err)
		}
		if intent != models.IntentData {
			t.Errorf("%q routed to %s, want %s", question, intent, models.IntentData)
		}
	}
}

func TestClassifyProcedureQuestionsDefaultToDocs(t *testing.T) {
	// Even with a model that rambles, procedure questions must land on docs
	router := NewIntentRouter(fixedGenerator("honestly this could go either way"), "test-model")

	for _, question := range []string{
		"How do I confirm a sales order?",
		"What is a delivery slip?",
		"Comment confirmer une vente ?",
	} {
		intent, err := router.Classify(context.Background(), question)
		if err != nil {
			t.Fatalf("%q: %v", question, err)
		}
		if intent != models.IntentDocs {
			t.Errorf("%q routed to %s, want %s", question, intent, models.IntentDocs)
		}
	}
}
