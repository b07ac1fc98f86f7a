package services

import (
	"context"
	"fmt"
	"strings"

	"pdf-rag-chatbot/internal/ai"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultTopK = 5

// Retriever finds the chunks nearest to a question and joins them into a
// context block for the answer prompt.
type Retriever struct {
	embedder ai.Embedder
	topK     int
}

func NewRetriever(embedder ai.Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, topK: topK}
}

// Retrieve embeds query, searches index for the top-k chunks and joins their
// text with blank lines, best match first.
func (r *Retriever) Retrieve(ctx context.Context, query string, chunks []string, index *VectorIndex) (string, error) {
	if index == nil || len(chunks) == 0 {
		return "", ErrNotReady
	}

	ctx, span := otel.Tracer("retriever").Start(ctx, "rag.retrieve")
	defer span.End()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("embed query: %w", err)
	}

	hits, err := index.Search(vec, r.topK)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("search index: %w", err)
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(chunks) {
			continue
		}
		parts = append(parts, chunks[h.Position])
	}

	span.SetAttributes(
		attribute.Int("rag.top_k", r.topK),
		attribute.Int("rag.hits", len(parts)),
	)
	return strings.Join(parts, "\n\n"), nil
}
