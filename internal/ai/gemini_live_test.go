package ai

import (
	"context"
	"os"
	"testing"
)

func TestGeminiEmbedder_Live(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	e, err := NewGeminiEmbedder(context.Background(), key, "text-embedding-004")
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	defer e.Close()

	vecs, err := e.EmbedBatch(context.Background(), []string{"hello world", "goodbye moon"})
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) == 0 {
		t.Fatalf("unexpected embeddings: %d vectors", len(vecs))
	}
}

func TestGeminiClient_Live(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	c, err := NewGeminiClient(context.Background(), key, "")
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	defer c.Close()

	out, err := c.Complete(context.Background(), CompletionRequest{Prompt: "Reply with the word ok.", Temperature: 0.1})
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if out.Text == "" {
		t.Fatalf("empty completion")
	}
}
