package services

import (
	"context"
	"fmt"
	"strings"

	"pdf-rag-chatbot/internal/ai"
	"pdf-rag-chatbot/internal/logger"
)

const (
	SystemInstruction  = "You are a helpful assistant that only answers using the given context."
	DefaultTemperature = 0.1

	completionErrorPrefix = "An error occurred with the AI model: "
)

// BuildPrompt renders the grounded question prompt.
func BuildPrompt(contextText, query string) string {
	return fmt.Sprintf(`Answer the question using ONLY the context below.
If the answer is not in the context, clearly state that you don't have enough information.

Context:
%s

Question: %s
Answer:`, contextText, query)
}

// AnswerGenerator asks the completion provider to answer from a context block.
type AnswerGenerator struct {
	completer   ai.Completer
	temperature float64
}

func NewAnswerGenerator(completer ai.Completer, temperature float64) *AnswerGenerator {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &AnswerGenerator{completer: completer, temperature: temperature}
}

// Generate never fails: provider errors come back as a readable message.
func (g *AnswerGenerator) Generate(ctx context.Context, query, contextText string) string {
	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      BuildPrompt(contextText, query),
		Temperature: g.temperature,
	})
	if err != nil {
		logger.ErrorContext(ctx, "completion failed", "model", g.completer.Model(), "error", err)
		return completionErrorPrefix + err.Error()
	}
	return strings.TrimSpace(resp.Text)
}
